package core

// StyleBlock is the <style> region of a component.
type StyleBlock struct {
	Content string
	Scoped  bool
	// ScopeID is the attribute appended to every selector when Scoped,
	// e.g. "ack-k3j9x0a2b"
	ScopeID string
	Rules   []StyleRule
}

// StyleRule is one selector { declarations } rule.
type StyleRule struct {
	// Selector is already scoped when the block is scoped
	Selector string
	// Declarations is the raw text between the braces
	Declarations string
	Properties   []CSSProperty
}

// CSSProperty is a single name: value declaration.
type CSSProperty struct {
	Name  string
	Value string
}
