package chunker

import "strings"

// section is a structural region of a document: a heading (depth <= 3) and
// everything up to the next such heading.
type section struct {
	// heading is the nearest enclosing heading text, empty for content
	// before the first heading.
	heading string

	// start and end are byte offsets into the document text.
	start int
	end   int
}

// parseSections splits markdown-ish text at headings of depth 1-3.
// Deeper headings stay inside their parent section, and fenced code blocks
// are opaque: a "#" line inside a fence is content, not a boundary.
func parseSections(text string) []section {
	var sections []section
	var current section

	inFence := false
	offset := 0
	for offset < len(text) {
		lineEnd := strings.IndexByte(text[offset:], '\n')
		var next int
		if lineEnd < 0 {
			lineEnd = len(text)
			next = len(text)
		} else {
			lineEnd += offset
			next = lineEnd + 1
		}
		line := text[offset:lineEnd]

		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
		}

		if !inFence {
			if heading, ok := headingText(line); ok {
				if offset > current.start {
					current.end = offset
					sections = append(sections, current)
				}
				current = section{heading: heading, start: offset}
			}
		}
		offset = next
	}

	if len(text) > current.start {
		current.end = len(text)
		sections = append(sections, current)
	}
	return sections
}

// headingText extracts the text of an ATX heading of depth 1-3.
func headingText(line string) (string, bool) {
	depth := 0
	for depth < len(line) && line[depth] == '#' {
		depth++
	}
	if depth == 0 || depth > 3 {
		return "", false
	}
	rest := line[depth:]
	if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return "", false
	}
	return strings.TrimSpace(strings.TrimRight(rest, "# \t")), true
}
