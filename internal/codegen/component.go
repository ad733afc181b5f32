package codegen

import (
	"strings"

	"github.com/acklang/ack/internal/dag"
	"github.com/acklang/ack/internal/style"
	"github.com/acklang/ack/pkg/core"
	"github.com/acklang/ack/pkg/token"
)

// RuntimeModule is the module providing mount and createReactive.
const RuntimeModule = "@ack/runtime"

// GenerateESM returns the component as an ES module whose default export
// is the component factory.
func GenerateESM(model *core.ComponentModel, graph *dag.Graph) string {
	p := newPrinter()
	p.line("import { mount, createReactive } from %s;", quote(RuntimeModule))
	for _, imp := range model.Script.Imports {
		p.line(esmImport(imp))
	}
	p.blank()
	writeHelpers(p, model)
	p.blank()
	writeFactory(p, model, graph, "export default ")
	return p.String()
}

// GenerateCJS returns the component as a CommonJS module exporting the
// component factory.
func GenerateCJS(model *core.ComponentModel, graph *dag.Graph) string {
	p := newPrinter()
	writeCJS(p, model, graph)
	return p.String()
}

func writeCJS(p *Printer, model *core.ComponentModel, graph *dag.Graph) {
	p.line("const { mount, createReactive } = require(%s);", quote(RuntimeModule))
	for _, imp := range model.Script.Imports {
		for _, l := range cjsRequire(imp) {
			p.line(l)
		}
	}
	p.blank()
	writeHelpers(p, model)
	p.blank()
	writeFactory(p, model, graph, "")
	p.blank()
	p.line("module.exports = %s;", Identifier(model.Name))
	p.line("module.exports.default = %s;", Identifier(model.Name))
}

// GenerateBoth returns the ES module followed by the CommonJS module. The
// CommonJS part is guarded by a module check and block scoped, so the
// result still parses as one ES module.
func GenerateBoth(model *core.ComponentModel, graph *dag.Graph) string {
	p := newPrinter()
	p.block(GenerateESM(model, graph))
	p.blank()
	p.line("// --- CommonJS ---")
	p.open("if (typeof module !== 'undefined' && module.exports) {")
	writeCJS(p, model, graph)
	p.close("}")
	return p.String()
}

// GenerateStyles returns the styles constants: the verbatim style source
// and its scoped rendering. It returns "" for components without styles.
func GenerateStyles(model *core.ComponentModel) string {
	if !model.HasStyles() {
		return ""
	}
	p := newPrinter()
	p.line("const styles = %s;", quote(model.Style.Content))
	p.line("const scopedStyles = %s;", quote(style.Render(model.Style)))
	return p.String()
}

func esmImport(imp core.ImportStatement) string {
	var def, namespace string
	var named []string
	for _, s := range imp.Specifiers {
		switch {
		case s.Kind == core.ImportDefault:
			def = s.Local
		case s.Imported == "*":
			namespace = "* as " + s.Local
		case s.Imported == s.Local:
			named = append(named, s.Local)
		default:
			named = append(named, s.Imported+" as "+s.Local)
		}
	}

	var clauses []string
	if def != "" {
		clauses = append(clauses, def)
	}
	if namespace != "" {
		clauses = append(clauses, namespace)
	} else if len(named) > 0 {
		clauses = append(clauses, "{ "+strings.Join(named, ", ")+" }")
	}

	if len(clauses) == 0 {
		return "import " + quote(imp.Source) + ";"
	}
	return "import " + strings.Join(clauses, ", ") + " from " + quote(imp.Source) + ";"
}

func cjsRequire(imp core.ImportStatement) []string {
	req := "require(" + quote(imp.Source) + ")"
	if len(imp.Specifiers) == 0 {
		return []string{req + ";"}
	}

	var lines, named []string
	for _, s := range imp.Specifiers {
		switch {
		case s.Kind == core.ImportDefault:
			lines = append(lines, "const "+s.Local+" = "+req+";")
		case s.Imported == "*":
			lines = append(lines, "const "+s.Local+" = "+req+";")
		case s.Imported == s.Local:
			named = append(named, s.Local)
		default:
			named = append(named, s.Imported+": "+s.Local)
		}
	}
	if len(named) > 0 {
		lines = append(lines, "const { "+strings.Join(named, ", ")+" } = "+req+";")
	}
	return lines
}

// writeHelpers writes the module-level DOM helpers used by the factory.
func writeHelpers(p *Printer, model *core.ComponentModel) {
	p.line("const __escape = (value) => String(value ?? '').replace(/[&<>\"']/g, (c) => `&#${c.charCodeAt(0)};`);")
	p.line("const __setText = (node, value) => { if (node) node.textContent = String(value ?? ''); };")
	p.open("const __setAttr = (node, name, value) => {")
	p.line("if (!node) return;")
	p.line("if (value === false || value == null) node.removeAttribute(name);")
	p.line("else node.setAttribute(name, value === true ? '' : String(value));")
	p.close("};")

	if !model.HasStyles() {
		return
	}
	key := model.Style.ScopeID
	p.open("const __injectStyles = () => {")
	p.line("if (typeof document === 'undefined' || document.querySelector(%s)) return;", quote(`style[data-ack-style="`+key+`"]`))
	p.line("const tag = document.createElement('style');")
	p.line("tag.setAttribute('data-ack-style', %s);", quote(key))
	p.line("tag.textContent = %s;", quote(style.Render(model.Style)))
	p.line("document.head.appendChild(tag);")
	p.close("};")
}

// writeFactory writes the component factory function.
func writeFactory(p *Printer, model *core.ComponentModel, graph *dag.Graph, prefix string) {
	markup := RenderMarkup(model)
	names := variableSet(model.Script.ReactiveVariables)

	p.open("%sfunction %s(options = {}) {", prefix, Identifier(model.Name))
	p.line("const %s = options.initial || {};", initialObj)
	p.line("const update = {};")
	p.line("let element = null;")
	p.open("function %s(name, value) {", invalidateFn)
	p.line("if (element && update[name]) update[name]();")
	p.line("return value;")
	p.close("}")

	if body := strings.TrimSpace(instrumentScript(model.Script)); body != "" {
		p.blank()
		p.verbatim(body)
	}

	p.blank()
	p.open("const state = createReactive({")
	for _, v := range model.Script.ReactiveVariables {
		p.line("get %s() { return %s; },", v.Name, v.Name)
		p.line("set %s(value) { %s(%s, %s = value); },", v.Name, invalidateFn, quote(v.Name), v.Name)
	}
	p.close("});")

	p.blank()
	p.open("const listeners = [")
	for _, l := range markup.Listeners {
		p.line("{ event: %s, handler: %s },", quote(l.Event), handlerFunction(l.Handler, names))
	}
	p.close("];")

	p.blank()
	p.line("element = options.root || document.createElement('div');")
	p.line("const __select = (sel) => (element.matches(sel) ? [element] : []).concat(Array.from(element.querySelectorAll(sel)));")
	p.open("if (!options.root) {")
	if attr := scopeAttribute(model); attr != "" {
		p.line("element.setAttribute(%s, '');", quote(attr))
	}
	p.line("element.innerHTML = `%s`;", markup.HTML)
	p.open("listeners.forEach(({ event, handler }, i) => {")
	p.line("__select(`[%s${i}]`).forEach((node) => node.addEventListener(event, handler));", eventPrefix)
	p.close("});")
	p.close("}")
	p.line("const __nodes = new Map();")
	p.line("__select('[%s]').forEach((node) => __nodes.set(Number(node.getAttribute('%s')), node));", idAttr, idAttr)

	if len(model.Script.ReactiveVariables) > 0 {
		p.blank()
		writeDOMUpdate(p, model, graph, markup)
	}

	p.blank()
	p.open("return {")
	p.line("element,")
	p.line("state,")
	p.line("update,")
	p.line("listeners,")
	p.open("mount(target) {")
	p.line("const parent = typeof target === 'string' ? document.querySelector(target) : target;")
	if model.HasStyles() {
		p.line("__injectStyles();")
	}
	p.line("mount(element, parent);")
	p.line("return this;")
	p.close("},")
	p.open("destroy() {")
	p.line("for (const key of Object.keys(update)) delete update[key];")
	p.line("element.remove();")
	p.close("},")
	p.close("};")
	p.close("}")
}

// handlerFunction turns an event attribute value into a listener. A
// function reference is called with the event; any other expression runs
// as a statement.
func handlerFunction(expr string, names map[string]bool) string {
	expr = strings.TrimSpace(expr)
	switch {
	case expr == "":
		return "() => {}"
	case handlerPath.MatchString(expr):
		return "(event) => { const handler = (" + expr + "); if (typeof handler === 'function') handler(event); }"
	case isFunctionExpression(expr):
		return "(event) => (" + instrumentExpression(expr, names) + ")(event)"
	default:
		return "(event) => { " + instrumentExpression(expr, names) + "; }"
	}
}

func isFunctionExpression(expr string) bool {
	if strings.HasPrefix(expr, "function") || strings.HasPrefix(expr, "async ") {
		return true
	}
	r := newRewriter(expr, nil)
	depth := 0
	for _, tok := range r.toks {
		if depth == 0 && tok.Kind == token.ARROW {
			return true
		}
		depth += depthDelta(tok.Kind)
	}
	return false
}
