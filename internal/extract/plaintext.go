package extract

import (
	"regexp"
	"strings"
)

// DefaultMaxRunes is the excerpt length used when callers pass zero.
const DefaultMaxRunes = 1000

var (
	fencedBlock  = regexp.MustCompile("(?s)```.*?```")
	markdownLink = regexp.MustCompile(`\[.*?\]\(.*?\)`)
	headingMark  = regexp.MustCompile(`#+\s`)
)

// PlainText strips fenced blocks, markdown links, heading markers and
// emphasis from text and truncates the result to maxRunes characters.
// The result is empty only when text is empty.
func PlainText(text string, maxRunes int) string {
	if text == "" {
		return ""
	}
	if maxRunes <= 0 {
		maxRunes = DefaultMaxRunes
	}

	clean := fencedBlock.ReplaceAllString(text, "")
	clean = markdownLink.ReplaceAllString(clean, "")
	clean = headingMark.ReplaceAllString(clean, "")
	clean = strings.ReplaceAll(clean, "**", "")
	clean = strings.ReplaceAll(clean, "*", "")
	clean = strings.TrimSpace(clean)

	// Stripping can consume everything (e.g. a reply that is one code block).
	if clean == "" {
		clean = strings.TrimSpace(text)
	}
	if clean == "" {
		clean = text
	}

	return truncate(clean, maxRunes)
}

func truncate(s string, maxRunes int) string {
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}
