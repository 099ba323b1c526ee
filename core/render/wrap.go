package render

import "strings"

// wrap soft-wraps prose lines at word boundaries. Code fences, tables,
// headings, block quotes, and list items are left untouched so their
// Markdown structure survives.
func wrap(md string, width int) string {
	lines := strings.Split(md, "\n")
	var out []string
	inFence := false

	for _, line := range lines {
		if isFenceLine(line) {
			inFence = !inFence
			out = append(out, line)
			continue
		}
		if inFence || len(line) <= width || !isProseLine(line) {
			out = append(out, line)
			continue
		}
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

// isProseLine reports whether a line is plain paragraph text.
func isProseLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	switch trimmed[0] {
	case '#', '>', '|', '-', '*', '+':
		return false
	}
	// Ordered list item: "1. ..." etc.
	if i := strings.IndexByte(trimmed, '.'); i > 0 && i < 4 {
		digits := true
		for _, ch := range trimmed[:i] {
			if ch < '0' || ch > '9' {
				digits = false
				break
			}
		}
		if digits && i+1 < len(trimmed) && trimmed[i+1] == ' ' {
			return false
		}
	}
	return true
}

// wrapLine greedily packs words up to width characters per line. Words
// longer than the width get a line of their own.
func wrapLine(line string, width int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{line}
	}

	var out []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			out = append(out, current)
			current = word
			continue
		}
		current += " " + word
	}
	return append(out, current)
}
