// Package format turns stored message text into display markup and
// humanizes message timestamps. Stored text is never modified.
package format

import (
	"regexp"
	"strings"
)

const lineBreak = "<br>"

var (
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)
)

var headings = []struct {
	prefix string
	tag    string
}{
	{"### ", "h3"},
	{"## ", "h2"},
	{"# ", "h1"},
}

// Message converts the lightweight markdown used in replies into HTML. The
// content is trusted and not escaped. Steps run in a fixed order: newlines,
// bold, italic, then headings. Heading lines are delimited by the <br> tokens
// the first step inserted, and the <br> ending a heading is consumed.
func Message(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "\n", lineBreak)
	text = boldPattern.ReplaceAllString(text, "<strong>$1</strong>")
	text = italicPattern.ReplaceAllString(text, "<em>$1</em>")

	return applyHeadings(text)
}

func applyHeadings(text string) string {
	lines := strings.Split(text, lineBreak)

	var b strings.Builder
	b.Grow(len(text) + 16)
	for i, line := range lines {
		if tag, body, ok := heading(line); ok {
			b.WriteString("<" + tag + ">" + body + "</" + tag + ">")
			continue
		}
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteString(lineBreak)
		}
	}
	return b.String()
}

func heading(line string) (tag, body string, ok bool) {
	for _, h := range headings {
		if strings.HasPrefix(line, h.prefix) {
			return h.tag, line[len(h.prefix):], true
		}
	}
	return "", "", false
}
