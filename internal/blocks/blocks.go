// Package blocks slices a component source into its script, template and
// style regions.
package blocks

import (
	"strings"
	"unicode"
)

// Name identifies one of the three component regions.
type Name string

// Region names.
const (
	Script   Name = "script"
	Template Name = "template"
	Style    Name = "style"
)

// Blocks holds the trimmed text of each region. Absent regions are empty.
type Blocks struct {
	Script   string
	Template string
	Style    string
}

// Extract returns the trimmed text between the first <name ...> opening tag
// and the first following </name>. It returns "" when the opening tag is
// absent. An opening tag without a closing tag extends to the end of input.
func Extract(source string, name Name) string {
	start, end, ok := Locate(source, name)
	if !ok {
		return ""
	}
	return source[start:end]
}

// Locate returns the byte range of the trimmed body that Extract returns
// for name. ok is false when the opening tag is absent.
func Locate(source string, name Name) (start, end int, ok bool) {
	open := "<" + string(name)
	closing := "</" + string(name) + ">"

	tag := findOpenTag(source, open)
	if tag < 0 {
		return 0, 0, false
	}

	gt := strings.IndexByte(source[tag:], '>')
	if gt < 0 {
		return 0, 0, false
	}
	start = tag + gt + 1

	end = len(source)
	if idx := strings.Index(source[start:], closing); idx >= 0 {
		end = start + idx
	}
	body := source[start:end]
	trimmed := strings.TrimLeftFunc(body, unicode.IsSpace)
	start += len(body) - len(trimmed)
	end = start + len(strings.TrimRightFunc(trimmed, unicode.IsSpace))
	return start, end, true
}

// findOpenTag finds "<name" followed by '>' or whitespace, so that <style>
// does not match <styles>.
func findOpenTag(source, open string) int {
	offset := 0
	for {
		idx := strings.Index(source[offset:], open)
		if idx < 0 {
			return -1
		}
		pos := offset + idx
		next := pos + len(open)
		if next >= len(source) {
			return -1
		}
		switch source[next] {
		case '>', ' ', '\t', '\n', '\r':
			return pos
		}
		offset = next
	}
}

// Attributes returns the raw attribute text of the first <name ...> tag,
// e.g. "scoped" for <style scoped>. Returns "" if the tag is absent.
func Attributes(source string, name Name) string {
	open := "<" + string(name)
	start := findOpenTag(source, open)
	if start < 0 {
		return ""
	}
	gt := strings.IndexByte(source[start:], '>')
	if gt < 0 {
		return ""
	}
	return strings.TrimSpace(source[start+len(open) : start+gt])
}

// Split extracts all three regions.
func Split(source string) Blocks {
	return Blocks{
		Script:   Extract(source, Script),
		Template: Extract(source, Template),
		Style:    Extract(source, Style),
	}
}

// Join renders blocks back into component source, omitting empty regions.
// Split(Join(b)) == b for blocks that do not themselves contain the closing
// tag of their region.
func Join(b Blocks) string {
	var sb strings.Builder
	write := func(name Name, body string) {
		if body == "" {
			return
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("<" + string(name) + ">\n")
		sb.WriteString(body)
		sb.WriteString("\n</" + string(name) + ">")
	}
	write(Script, b.Script)
	write(Template, b.Template)
	write(Style, b.Style)
	sb.WriteString("\n")
	return sb.String()
}
