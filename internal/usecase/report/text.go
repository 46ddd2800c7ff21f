package report

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is the chat message ceiling in runes
const MaxMessageLength = 4000

var thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>\s*`)

// Clean removes reasoning blocks and surrounding whitespace
func Clean(text string) string {
	return strings.TrimSpace(thinkRe.ReplaceAllString(text, ""))
}

// SplitChunks cuts text on line boundaries into chunks of at most limit runes.
// A single line longer than limit becomes its own chunk. Concatenating the
// chunks yields the input.
func SplitChunks(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	var (
		chunks  []string
		current strings.Builder
		size    int
	)
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		n := utf8.RuneCountInString(line)
		if size+n > limit && size > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			size = 0
		}
		current.WriteString(line)
		size += n
	}
	if size > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
