package token

import "strings"

// CommentKind distinguishes line vs block comments.
type CommentKind int

// Comment kinds.
const (
	LineComment  CommentKind = iota // // comment
	BlockComment                    // /* comment */
)

// CommentKindOf classifies a COMMENT token literal.
func CommentKindOf(literal string) CommentKind {
	if strings.HasPrefix(literal, "/*") {
		return BlockComment
	}
	return LineComment
}
