package token

import "strconv"

// Position is a location in component source. Line and Column are
// 1-based; Offset is the byte offset from the start of the source.
type Position struct {
	Line   int
	Column int
	Offset int
}

// String formats the position as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Span is the half-open byte range [Start.Offset, End.Offset).
type Span struct {
	Start Position
	End   Position
}

// Contains reports whether offset falls inside the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start.Offset && offset < s.End.Offset
}

// Text returns the slice of source covered by the span, clamped to the
// source bounds.
func (s Span) Text(source string) string {
	start, end := max(s.Start.Offset, 0), min(s.End.Offset, len(source))
	if start >= end {
		return ""
	}
	return source[start:end]
}
