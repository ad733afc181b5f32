package core

import "github.com/acklang/ack/pkg/token"

// DeclarationKind is the keyword a reactive variable was declared with.
type DeclarationKind string

// Declaration kinds tracked for reactivity. const bindings are not reactive.
const (
	DeclarationLet DeclarationKind = "let"
	DeclarationVar DeclarationKind = "var"
)

// ComponentModel is the parsed form of one .ack source unit.
// It is created once per compile and owned by that compile.
type ComponentModel struct {
	// Name is the component (factory function) name, e.g. "Counter"
	Name string
	// Script is the parsed <script> region
	Script ScriptBlock
	// Template is the parsed <template> region
	Template TemplateBlock
	// Style is the parsed <style> region
	Style StyleBlock
	// Source is the complete component source
	Source string
	// FilePath is the path the source was read from
	FilePath string
}

// HasStyles reports whether the component declares any style rules.
func (c *ComponentModel) HasStyles() bool {
	return c.Style.Content != ""
}

// ScriptBlock is the <script> region of a component.
type ScriptBlock struct {
	Content string
	// Offset is the byte offset of Content in the component source
	Offset            int
	ReactiveVariables []ReactiveVariable
	Imports           []ImportStatement
}

// VariableNames returns the names of all reactive variables in declaration order.
func (s *ScriptBlock) VariableNames() []string {
	names := make([]string, 0, len(s.ReactiveVariables))
	for _, v := range s.ReactiveVariables {
		names = append(names, v.Name)
	}
	return names
}

// Variable looks up a reactive variable by name.
func (s *ScriptBlock) Variable(name string) (*ReactiveVariable, bool) {
	for i := range s.ReactiveVariables {
		if s.ReactiveVariables[i].Name == name {
			return &s.ReactiveVariables[i], true
		}
	}
	return nil, false
}

// ReactiveVariable is a let/var declaration tracked for change propagation.
type ReactiveVariable struct {
	// Name is unique within a component
	Name string
	// Kind is the declaring keyword
	Kind DeclarationKind
	// InitialValue is the initializer expression text, "undefined" when absent
	InitialValue string
	// UsedInTemplate is set when the variable is referenced
	UsedInTemplate bool
	// Dependencies names other reactive variables read by InitialValue
	Dependencies []string
	// DeclarationLine is the 1-based line of the declaration within the script
	DeclarationLine int
	// Span covers the whole declaration statement in the script content.
	// Variables declared together share a span.
	Span token.Span
	// NameOffset is the byte offset of the declared name inside Span.
	NameOffset int
}

// DeclaresAt reports whether offset is the position of v's declared name.
func (v ReactiveVariable) DeclaresAt(offset int) bool {
	return v.Span.Contains(v.NameOffset) && offset == v.NameOffset
}

// ImportKind distinguishes default from named import specifiers.
type ImportKind string

// Import specifier kinds.
const (
	ImportDefault ImportKind = "default"
	ImportNamed   ImportKind = "named"
)

// ImportStatement is one import declaration from the script block.
type ImportStatement struct {
	Source     string
	Specifiers []ImportSpecifier
	// Span covers the statement in the script content
	Span token.Span
}

// ImportSpecifier binds one imported name to a local name.
type ImportSpecifier struct {
	Local    string
	Imported string
	Kind     ImportKind
}
