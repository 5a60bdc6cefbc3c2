// Package extract recovers structured JSON payloads from free-text model
// replies.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
)

// ErrNotFound is returned when no strategy yields a well-formed JSON object.
var ErrNotFound = errors.New("no structured content found")

var (
	jsonFence = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")
	anyFence  = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*\\s*(.*?)\\s*```")
)

// JSON returns the first JSON object it can recover from text.
// Strategies, first success wins:
//  1. first '{' to last '}'
//  2. a ```json fenced block
//  3. any fenced block
//  4. a balanced-brace scan from the first '{'
//
// Candidates that fail strict parsing get a second chance with comments
// and trailing commas stripped.
func JSON(text string) ([]byte, error) {
	if text == "" {
		return nil, ErrNotFound
	}

	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			if b, ok := accept(text[start : end+1]); ok {
				return b, nil
			}
		}
	}

	if m := jsonFence.FindStringSubmatch(text); m != nil {
		if b, ok := accept(m[1]); ok {
			return b, nil
		}
	}

	if m := anyFence.FindStringSubmatch(text); m != nil {
		if b, ok := accept(m[1]); ok {
			return b, nil
		}
	}

	if span, ok := balancedSpan(text); ok {
		if b, ok := accept(span); ok {
			return b, nil
		}
	}

	return nil, ErrNotFound
}

// Decode recovers a JSON object from text and unmarshals it into v.
func Decode(text string, v any) error {
	b, err := JSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode extracted json: %w", err)
	}
	return nil
}

// accept reports whether candidate is a well-formed JSON object, returning
// the bytes that parsed.
func accept(candidate string) ([]byte, bool) {
	candidate = strings.TrimSpace(candidate)
	if !strings.HasPrefix(candidate, "{") {
		return nil, false
	}
	b := []byte(candidate)
	if json.Valid(b) {
		return b, true
	}
	lenient := jsonc.ToJSON(b)
	if json.Valid(lenient) {
		return lenient, true
	}
	return nil, false
}

// balancedSpan walks forward from the first '{' tracking nesting depth and
// returns the span that closes it. Braces inside string literals are
// ignored.
func balancedSpan(text string) (string, bool) {
	start := strings.Index(text, "{")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
