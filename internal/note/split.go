package note

import "strings"

// Delimiter bounds the frontmatter block at the top of a note.
const Delimiter = "---"

// Regions is the structural decomposition of a note document, in fixed
// order: frontmatter (single-colon fields between delimiter lines),
// structured fields (double-colon fields), then user content from the
// first heading line to end of document.
type Regions struct {
	HasFrontmatter bool
	Frontmatter    []string
	Structured     []string
	Content        []string
}

// Split scans a document into its regions. It is the only place raw
// text is inspected; everything downstream works on the line slices.
//
// Without a frontmatter block the whole document is user-owned: content
// starts at the first heading, or spans the entire text when no heading
// exists.
func Split(text string) Regions {
	lines := strings.Split(text, "\n")
	var r Regions

	rest := lines
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == Delimiter {
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == Delimiter {
				r.HasFrontmatter = true
				r.Frontmatter = lines[1:i]
				rest = lines[i+1:]
				break
			}
		}
	}

	if !r.HasFrontmatter {
		if i := firstHeading(lines); i >= 0 {
			r.Content = lines[i:]
		} else {
			r.Content = lines
		}
		return r
	}

	if i := firstHeading(rest); i >= 0 {
		r.Structured = rest[:i]
		r.Content = rest[i:]
	} else {
		r.Structured = rest
	}
	return r
}

func firstHeading(lines []string) int {
	for i, line := range lines {
		if isHeading(line) {
			return i
		}
	}
	return -1
}

func isHeading(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}
