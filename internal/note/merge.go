package note

import (
	"slices"
	"strings"
)

// Merge folds a freshly materialized template into an existing note.
// Machine-owned fields are brought up to date; everything the human
// wrote survives: custom frontmatter fields keep their place and
// spacing, unknown structured fields are retained, and the content
// region from the first heading onward is copied through byte for byte.
func Merge(existing, fresh string) string {
	ex := Split(existing)
	fr := Split(fresh)

	if !ex.HasFrontmatter {
		// Legacy or hand-made note: synthesize the machine regions from
		// the template and prepend them to the user content.
		return assemble(fr.Frontmatter, fr.Structured, ex.Content)
	}

	front := mergeFrontmatter(ex.Frontmatter, fr.Frontmatter)
	structured := mergeStructured(ex.Structured, fr.Structured)
	return assemble(front, structured, ex.Content)
}

// MarkCancelled appends a "cancelled: true" frontmatter field unless
// one is already present (matched by key prefix). It never rewrites any
// other part of the document.
func MarkCancelled(existing string) string {
	r := Split(existing)
	if !r.HasFrontmatter {
		return existing
	}
	for _, line := range r.Frontmatter {
		if strings.HasPrefix(strings.TrimSpace(line), "cancelled:") {
			return existing
		}
	}
	front := append(slices.Clone(r.Frontmatter), "cancelled: true")
	return assemble(front, r.Structured, r.Content)
}

func assemble(front, structured, content []string) string {
	out := make([]string, 0, len(front)+len(structured)+len(content)+2)
	out = append(out, Delimiter)
	out = append(out, front...)
	out = append(out, Delimiter)
	out = append(out, structured...)
	out = append(out, content...)
	return strings.Join(out, "\n")
}

// parseFrontLine splits a single-colon frontmatter field line into key,
// separator (the colon plus its original whitespace) and value. Lines
// that are indented, list items, or double-colon fields are not
// frontmatter fields.
func parseFrontLine(line string) (key, sep, value string, ok bool) {
	if line == "" || line[0] == ' ' || line[0] == '\t' || line[0] == '-' {
		return "", "", "", false
	}
	i := strings.Index(line, ":")
	if i <= 0 {
		return "", "", "", false
	}
	if i+1 < len(line) && line[i+1] == ':' {
		return "", "", "", false
	}
	key = line[:i]
	rest := line[i+1:]
	ws := len(rest) - len(strings.TrimLeft(rest, " "))
	return key, ":" + rest[:ws], rest[ws:], true
}

type frontField struct {
	key   string
	value string
	lines []string // field line plus any continuation lines
}

func parseFrontFields(lines []string) []frontField {
	var fields []frontField
	for _, line := range lines {
		if key, _, value, ok := parseFrontLine(line); ok {
			fields = append(fields, frontField{key: key, value: value, lines: []string{line}})
			continue
		}
		if len(fields) > 0 {
			last := &fields[len(fields)-1]
			last.lines = append(last.lines, line)
		}
	}
	return fields
}

// mergeFrontmatter walks the existing frontmatter line by line. Fields
// also present in the template get the template value, keeping the
// original colon spacing; everything else passes through in place.
// Template fields with no existing counterpart are appended at the end.
func mergeFrontmatter(existing, fresh []string) []string {
	freshFields := parseFrontFields(fresh)
	byKey := make(map[string]frontField, len(freshFields))
	for _, f := range freshFields {
		byKey[f.key] = f
	}

	used := make(map[string]bool)
	out := make([]string, 0, len(existing)+len(fresh))
	for _, line := range existing {
		if key, sep, _, ok := parseFrontLine(line); ok {
			if f, hit := byKey[key]; hit {
				out = append(out, key+sep+f.value)
				used[key] = true
				continue
			}
		}
		out = append(out, line)
	}
	for _, f := range freshFields {
		if !used[f.key] {
			out = append(out, f.lines...)
		}
	}
	return out
}

type structBlock struct {
	key   string // "" for passthrough and blank separator lines
	lines []string
}

// structKey recognizes a "key:: value" structured field line.
func structKey(line string) (string, bool) {
	if line == "" || line[0] == ' ' || line[0] == '\t' || line[0] == '-' {
		return "", false
	}
	i := strings.Index(line, "::")
	if i <= 0 {
		return "", false
	}
	key := strings.TrimSpace(line[:i])
	if key == "" || strings.Contains(key, ":") {
		return "", false
	}
	return key, true
}

// parseStructBlocks groups the structured-field region into blocks: a
// field line with its continuation lines (non-empty, non-heading lines
// that do not start a field of their own), or a single passthrough
// line.
func parseStructBlocks(lines []string) []structBlock {
	var blocks []structBlock
	for i := 0; i < len(lines); {
		line := lines[i]
		key, ok := structKey(line)
		if !ok {
			blocks = append(blocks, structBlock{lines: []string{line}})
			i++
			continue
		}
		b := structBlock{key: key, lines: []string{line}}
		for i++; i < len(lines); i++ {
			next := lines[i]
			if strings.TrimSpace(next) == "" || isHeading(next) {
				break
			}
			if _, field := structKey(next); field {
				break
			}
			b.lines = append(b.lines, next)
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// empty reports a field block with no value and no continuation lines.
// An empty template block never replaces an existing one: fields like
// oppy:: are rendered blank by the template and owned by the human once
// filled in.
func (b structBlock) empty() bool {
	if len(b.lines) > 1 {
		return false
	}
	i := strings.Index(b.lines[0], "::")
	return strings.TrimSpace(b.lines[0][i+2:]) == ""
}

// mergeStructured replaces each existing field block found in the
// template with the template's block in full, keeps unknown fields and
// blank separators where they are, and appends template fields the
// existing region lacks.
func mergeStructured(existing, fresh []string) []string {
	exBlocks := parseStructBlocks(existing)
	frBlocks := parseStructBlocks(fresh)

	byKey := make(map[string]structBlock)
	var order []string
	for _, b := range frBlocks {
		if b.key == "" {
			continue
		}
		if _, dup := byKey[b.key]; !dup {
			byKey[b.key] = b
			order = append(order, b.key)
		}
	}

	used := make(map[string]bool)
	var out []string
	for _, b := range exBlocks {
		if b.key != "" {
			if f, hit := byKey[b.key]; hit {
				used[b.key] = true
				if f.empty() {
					out = append(out, b.lines...)
				} else {
					out = append(out, f.lines...)
				}
				continue
			}
		}
		out = append(out, b.lines...)
	}

	for _, key := range order {
		if used[key] {
			continue
		}
		out = appendBlock(out, byKey[key].lines)
	}
	return out
}

// appendBlock adds a field block to the end of the structured region,
// slotting it before a trailing blank line so the heading that follows
// keeps its separator.
func appendBlock(out []string, block []string) []string {
	if n := len(out); n > 0 && strings.TrimSpace(out[n-1]) == "" {
		res := make([]string, 0, len(out)+len(block)+1)
		res = append(res, out[:n-1]...)
		if n > 1 && strings.TrimSpace(out[n-2]) != "" {
			res = append(res, "")
		}
		res = append(res, block...)
		res = append(res, out[n-1])
		return res
	}
	if len(out) > 0 {
		out = append(out, "")
	}
	return append(out, block...)
}
