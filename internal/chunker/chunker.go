// Package chunker splits free-text character descriptions into ordered
// sections, such as the stages of a character's evolution.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Sizes are measured in runes.
const (
	DefaultTargetSize = 160
	DefaultMinSize    = 12
	DefaultMaxSize    = 240
)

// Options configures chunking behavior.
type Options struct {
	TargetSize int
	MinSize    int
	MaxSize    int
}

// DefaultOptions returns default chunking options.
func DefaultOptions() Options {
	return Options{
		TargetSize: DefaultTargetSize,
		MinSize:    DefaultMinSize,
		MaxSize:    DefaultMaxSize,
	}
}

// Section is one piece of text with its line span in the source.
type Section struct {
	Text      string
	StartLine int
	EndLine   int
}

// itemStart matches lines that open a new stage: numbered items in Arabic
// or Chinese numerals, parenthesised numbers, and bullets.
var itemStart = regexp.MustCompile(`^(\d+[.、．)]|[一二三四五六七八九十]+[、.．]|[(（]\d+[)）]|[-*•])\s*`)

// Chunk splits text into sections on headings, numbered items and blank
// lines. Sections shorter than MinSize are merged into the previous one and
// sections longer than MaxSize are split on sentence boundaries.
func Chunk(text string, opts Options) []Section {
	if opts.TargetSize == 0 {
		opts = DefaultOptions()
	}

	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return nil
	}

	blocks := splitBlocks(text)
	return mergeBlocks(blocks, opts)
}

// Texts returns only the text of each section.
func Texts(sections []Section) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.Text)
	}
	return out
}

// splitBlocks splits text on heading lines, item lines and blank lines.
func splitBlocks(text string) []Section {
	lines := strings.Split(text, "\n")
	var blocks []Section
	var current []string
	startLine := 1

	flush := func(endLine int) {
		if len(current) == 0 {
			return
		}
		t := strings.TrimSpace(strings.Join(current, "\n"))
		if t != "" {
			blocks = append(blocks, Section{Text: t, StartLine: startLine, EndLine: endLine})
		}
		current = nil
		startLine = endLine + 1
	}

	for i, line := range lines {
		lineNum := i + 1
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			flush(lineNum - 1)
			startLine = lineNum + 1
			continue
		}
		if (strings.HasPrefix(trimmed, "#") || itemStart.MatchString(trimmed)) && len(current) > 0 {
			flush(lineNum - 1)
		}
		if len(current) == 0 {
			startLine = lineNum
		}
		current = append(current, line)
	}
	flush(len(lines))

	return blocks
}

// mergeBlocks folds short blocks into their predecessor and splits
// oversized ones.
func mergeBlocks(blocks []Section, opts Options) []Section {
	var results []Section

	for _, b := range blocks {
		n := utf8.RuneCountInString(b.Text)
		if n < opts.MinSize && len(results) > 0 && !isHeading(b.Text) {
			last := &results[len(results)-1]
			if utf8.RuneCountInString(last.Text)+n <= opts.MaxSize {
				last.Text += "\n" + b.Text
				last.EndLine = b.EndLine
				continue
			}
		}
		if n > opts.MaxSize {
			results = append(results, hardSplit(b, opts)...)
			continue
		}
		results = append(results, b)
	}

	return results
}

// hardSplit breaks a section that exceeds MaxSize after sentence-ending
// punctuation, packing sentences up to TargetSize.
func hardSplit(b Section, opts Options) []Section {
	var results []Section
	var current strings.Builder
	curLen := 0

	for _, sentence := range sentences(b.Text) {
		n := utf8.RuneCountInString(sentence)
		if curLen+n > opts.TargetSize && curLen > 0 {
			results = append(results, Section{Text: strings.TrimSpace(current.String()), StartLine: b.StartLine, EndLine: b.EndLine})
			current.Reset()
			curLen = 0
		}
		current.WriteString(sentence)
		curLen += n
	}
	if t := strings.TrimSpace(current.String()); t != "" {
		results = append(results, Section{Text: t, StartLine: b.StartLine, EndLine: b.EndLine})
	}

	return results
}

// sentences splits text after 。！？!? and newlines, keeping the
// terminators.
func sentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		switch r {
		case '。', '！', '？', '!', '?', '\n':
			end := i + utf8.RuneLen(r)
			out = append(out, text[start:end])
			start = end
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func isHeading(s string) bool {
	return strings.HasPrefix(s, "#")
}
