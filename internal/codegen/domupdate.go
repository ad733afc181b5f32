package codegen

import (
	"github.com/acklang/ack/internal/dag"
	"github.com/acklang/ack/pkg/core"
)

// GenerateDOMUpdate returns the update handlers of a component, one per
// reactive variable. A handler re-applies every binding that reads its
// variable, then recomputes each affected variable in dependency order
// and re-applies that variable's bindings.
//
// The handlers assign to an "update" object and read marked nodes from a
// "__nodes" map, both declared by the component factory.
func GenerateDOMUpdate(model *core.ComponentModel, graph *dag.Graph) string {
	p := newPrinter()
	writeDOMUpdate(p, model, graph, RenderMarkup(model))
	return p.String()
}

func writeDOMUpdate(p *Printer, model *core.ComponentModel, graph *dag.Graph, markup *Markup) {
	order := graph.GetTopologicalOrder()

	for _, v := range model.Script.ReactiveVariables {
		affected := make(map[string]bool)
		for _, name := range graph.GetAffectedVariables(v.Name) {
			affected[name] = true
		}

		p.open("update[%s] = () => {", quote(v.Name))
		writeBindings(p, markup.BindingsFor(v.Name))
		for _, name := range order {
			if !affected[name] {
				continue
			}
			w, ok := model.Script.Variable(name)
			if !ok || w.InitialValue == "undefined" {
				continue
			}
			p.line("%s = (%s);", w.Name, w.InitialValue)
			writeBindings(p, markup.BindingsFor(w.Name))
		}
		p.close("};")
	}
}

func writeBindings(p *Printer, bindings []Binding) {
	for _, b := range bindings {
		switch b.Kind {
		case BindText:
			p.line("__setText(__nodes.get(%d), %s);", b.ID, b.Expression)
		case BindAttribute:
			p.line("__setAttr(__nodes.get(%d), %s, %s);", b.ID, quote(b.Attribute), b.Expression)
		}
	}
}
