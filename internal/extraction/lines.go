package extraction

import (
	"regexp"
	"strings"
)

var (
	crlfRe       = regexp.MustCompile(`\r\n?`)
	multiSpaceRe = regexp.MustCompile(`[ \t]+`)
)

// SplitLines breaks recognized text into trimmed, non-blank lines.
// Runs of spaces and tabs collapse to a single space.
func SplitLines(text string) []string {
	text = crlfRe.ReplaceAllString(text, "\n")

	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(multiSpaceRe.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
