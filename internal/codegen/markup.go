package codegen

import (
	"fmt"
	"strings"

	"github.com/acklang/ack/pkg/core"
	"github.com/acklang/ack/pkg/lexer"
	"github.com/acklang/ack/pkg/token"
)

// Marker attributes placed on rendered elements.
const (
	idAttr      = "data-ack-id"
	eventPrefix = "data-ack-on-"
)

// BindingKind is the DOM operation a binding performs.
type BindingKind string

// Binding kinds.
const (
	BindText      BindingKind = "textContent"
	BindAttribute BindingKind = "attribute"
)

// Binding ties a template expression to a marked DOM node.
type Binding struct {
	ID         int
	Kind       BindingKind
	Attribute  string
	Expression string
	// Variables lists the reactive variables the expression reads
	Variables []string
}

// Listener is an event handler attached to a marked element. Listeners
// are numbered in template order, matching TemplateBlock.Events.
type Listener struct {
	Index   int
	Event   string
	Handler string
}

// Markup is the rendered template of a component.
type Markup struct {
	// HTML is the body of a JavaScript template literal
	HTML      string
	Bindings  []Binding
	Listeners []Listener
}

// BindingsFor returns the bindings that read name.
func (m *Markup) BindingsFor(name string) []Binding {
	var out []Binding
	for _, b := range m.Bindings {
		for _, v := range b.Variables {
			if v == name {
				out = append(out, b)
				break
			}
		}
	}
	return out
}

type markupBuilder struct {
	sb        strings.Builder
	scopeAttr string
	names     map[string]bool
	markup    Markup
	nextID    int
}

// RenderMarkup renders the template of model. Interpolations become
// marked <span> elements and event attributes become marker attributes.
func RenderMarkup(model *core.ComponentModel) *Markup {
	b := &markupBuilder{
		scopeAttr: scopeAttribute(model),
		names:     variableSet(model.Script.ReactiveVariables),
	}
	if model.Template.AST != nil {
		for _, child := range model.Template.AST.Children {
			b.node(child)
		}
	}
	b.markup.HTML = b.sb.String()
	return &b.markup
}

// scopeAttribute returns the attribute added to every element for scoped
// styles, or "" when styles are unscoped or absent.
func scopeAttribute(model *core.ComponentModel) string {
	if model.HasStyles() && model.Style.Scoped {
		return model.Style.ScopeID
	}
	return ""
}

func (b *markupBuilder) node(n core.TemplateNode) {
	switch n := n.(type) {
	case *core.TextNode:
		b.sb.WriteString(templateLiteralText(n.Content))
	case *core.InterpolationNode:
		id := b.bind(BindText, "", n.Expression)
		scope := ""
		if b.scopeAttr != "" {
			scope = " " + b.scopeAttr
		}
		fmt.Fprintf(&b.sb, `<span%s %s="%d">${__escape(%s)}</span>`, scope, idAttr, id, expression(n.Expression))
	case *core.ElementNode:
		b.element(n)
	}
}

func (b *markupBuilder) element(el *core.ElementNode) {
	var attrs strings.Builder
	id := -1

	if b.scopeAttr != "" {
		attrs.WriteString(" " + b.scopeAttr)
	}

	for _, attr := range el.Attributes {
		switch {
		case attr.IsEventBinding:
			idx := len(b.markup.Listeners)
			b.markup.Listeners = append(b.markup.Listeners, Listener{
				Index:   idx,
				Event:   strings.TrimPrefix(attr.Name, "@"),
				Handler: attr.Value,
			})
			fmt.Fprintf(&attrs, " %s%d", eventPrefix, idx)
		case attr.IsInterpolation:
			if id < 0 {
				id = b.bind(BindAttribute, attr.Name, attr.Value)
			} else {
				b.bindTo(id, BindAttribute, attr.Name, attr.Value)
			}
			fmt.Fprintf(&attrs, ` %s="${__escape(%s)}"`, attr.Name, expression(attr.Value))
		case attr.Value == "":
			attrs.WriteString(" " + attr.Name)
		default:
			value := strings.ReplaceAll(attr.Value, `"`, "&quot;")
			fmt.Fprintf(&attrs, ` %s="%s"`, attr.Name, templateLiteralText(value))
		}
	}
	if id >= 0 {
		fmt.Fprintf(&attrs, ` %s="%d"`, idAttr, id)
	}

	fmt.Fprintf(&b.sb, "<%s%s>", el.Tag, attrs.String())
	if core.SelfClosingTags[el.Tag] {
		return
	}
	for _, child := range el.Children {
		b.node(child)
	}
	fmt.Fprintf(&b.sb, "</%s>", el.Tag)
}

func (b *markupBuilder) bind(kind BindingKind, attr, expr string) int {
	id := b.nextID
	b.nextID++
	b.bindTo(id, kind, attr, expr)
	return id
}

func (b *markupBuilder) bindTo(id int, kind BindingKind, attr, expr string) {
	b.markup.Bindings = append(b.markup.Bindings, Binding{
		ID:         id,
		Kind:       kind,
		Attribute:  attr,
		Expression: expression(expr),
		Variables:  readVariables(expr, b.names),
	})
}

// expression returns expr parenthesized, or undefined when empty.
func expression(expr string) string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "undefined"
	}
	return "(" + expr + ")"
}

// readVariables returns the reactive names read by expr.
func readVariables(expr string, names map[string]bool) []string {
	var out []string
	seen := make(map[string]bool)
	var prev token.Token
	for _, tok := range lexer.New(expr).Tokenize() {
		if tok.Kind == token.IDENT && names[tok.Literal] && !seen[tok.Literal] &&
			prev.Kind != token.DOT && prev.Kind != token.OPTCHAIN {
			seen[tok.Literal] = true
			out = append(out, tok.Literal)
		}
		if tok.Kind != token.COMMENT {
			prev = tok
		}
	}
	return out
}
