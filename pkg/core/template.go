package core

import "github.com/acklang/ack/pkg/token"

// TemplateBlock is the <template> region of a component.
type TemplateBlock struct {
	Content string
	// AST is the root of the parsed template. It is always non-nil after
	// parsing: an ElementNode with an empty tag holding the top-level nodes.
	AST *ElementNode
	// UsedVariables is the deduplicated, first-seen ordered set of
	// identifiers referenced by interpolations and attribute values
	UsedVariables []string
	Events        []EventBinding
}

// TemplateNode is a node of the template tree.
// Implementations are *ElementNode, *TextNode and *InterpolationNode.
type TemplateNode interface {
	Pos() token.Position
	templateNode() // marker method to restrict implementation
}

// nodeBase provides common Position handling for all nodes.
type nodeBase struct {
	Position token.Position
}

// Pos returns the position of the node's first character.
func (n *nodeBase) Pos() token.Position { return n.Position }
func (n *nodeBase) templateNode()       {}

// ElementNode represents <tag attr="...">children</tag>.
type ElementNode struct {
	nodeBase
	Tag        string
	Attributes []TemplateAttribute
	Children   []TemplateNode
}

// NewElementNode creates an element node at pos.
func NewElementNode(pos token.Position, tag string) *ElementNode {
	return &ElementNode{nodeBase: nodeBase{Position: pos}, Tag: tag}
}

// Attribute returns the attribute with the given name.
func (e *ElementNode) Attribute(name string) (TemplateAttribute, bool) {
	for _, a := range e.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return TemplateAttribute{}, false
}

// TextNode represents literal text between tags.
type TextNode struct {
	nodeBase
	Content string
}

// NewTextNode creates a text node at pos.
func NewTextNode(pos token.Position, content string) *TextNode {
	return &TextNode{nodeBase: nodeBase{Position: pos}, Content: content}
}

// InterpolationNode represents a {expression}.
// Expression holds the source between the braces, trimmed.
type InterpolationNode struct {
	nodeBase
	Expression string
}

// NewInterpolationNode creates an interpolation node at pos.
func NewInterpolationNode(pos token.Position, expr string) *InterpolationNode {
	return &InterpolationNode{nodeBase: nodeBase{Position: pos}, Expression: expr}
}

// SelfClosingTags never carry children.
var SelfClosingTags = map[string]bool{
	"br":    true,
	"img":   true,
	"input": true,
}

// TemplateAttribute is one attribute of an element.
type TemplateAttribute struct {
	Name  string
	Value string
	// IsEventBinding is set for @event attributes
	IsEventBinding bool
	// IsInterpolation is set when Value was written as {expression}
	IsInterpolation bool
}

// EventBinding records an @event attribute.
type EventBinding struct {
	ElementTag        string
	EventName         string // without the leading "@"
	HandlerExpression string
	SourceLine        int
}

// WalkTemplate calls fn for node and every descendant in document order.
// Returning false from fn skips the node's children.
func WalkTemplate(node TemplateNode, fn func(TemplateNode) bool) {
	if node == nil || !fn(node) {
		return
	}
	if el, ok := node.(*ElementNode); ok {
		for _, child := range el.Children {
			WalkTemplate(child, fn)
		}
	}
}
