package codegen

import (
	"encoding/json"
	"fmt"

	"github.com/acklang/ack/pkg/core"
)

// DefaultHydrationTarget is the selector hydrate() uses when none is given.
const DefaultHydrationTarget = "#app"

// GenerateHydration returns the client hydration code for a component:
// hydrate(target) plus the serializeState and renderToString helpers.
// hydrate reads the JSON state tag written by the server, passes the
// values it finds as initial values (missing ones fall back to their
// initializers in the factory), instantiates the component over the
// existing DOM and re-attaches the template's event listeners.
func GenerateHydration(model *core.ComponentModel, format core.Format) string {
	export := "export "
	if format == core.FormatCJS {
		export = ""
	}

	p := newPrinter()
	p.open("%sfunction serializeState(values) {", export)
	p.line("const json = JSON.stringify(values ?? {}).replace(/</g, '\\\\u003c');")
	p.line("return `<script data-ack-state type=\"application/json\">${json}</script>`;")
	p.close("}")
	p.blank()

	p.open("%sfunction renderToString(markup, values, target = %s) {", export, quote(DefaultHydrationTarget))
	p.line("return `${markup}${serializeState(values)}<script>hydrate(${JSON.stringify(target)})</script>`;")
	p.close("}")
	p.blank()

	p.open("%sfunction hydrate(target = %s) {", export, quote(DefaultHydrationTarget))
	p.line("const root = typeof target === 'string' ? document.querySelector(target) : target;")
	p.line("if (!root) return null;")
	p.line("const stateTag = document.querySelector('script[data-ack-state]');")
	p.line("let serverState = {};")
	p.open("if (stateTag) {")
	p.open("try {")
	p.line("serverState = JSON.parse(stateTag.textContent || '{}');")
	p.dedent()
	p.open("} catch (err) {")
	p.line("serverState = {};")
	p.close("}")
	p.close("}")
	p.line("if (serverState === null || typeof serverState !== 'object') serverState = {};")
	p.line("const initial = {};")
	for _, v := range model.Script.ReactiveVariables {
		key := quote(v.Name)
		p.line("if (%s in serverState) initial[%s] = serverState[%s];", key, key, key)
	}
	p.line("const element = root.firstElementChild || root;")
	p.line("const instance = %s({ initial, root: element });", Identifier(model.Name))
	if len(model.Template.Events) > 0 {
		p.line("const select = (sel) => (element.matches(sel) ? [element] : []).concat(Array.from(element.querySelectorAll(sel)));")
	}
	for i, ev := range model.Template.Events {
		p.line("select('[%s%d]').forEach((node) => node.addEventListener(%s, instance.listeners[%d].handler));",
			eventPrefix, i, quote(ev.EventName), i)
	}
	p.line("return instance;")
	p.close("}")

	switch format {
	case core.FormatCJS:
		p.blank()
		writeCJSExports(p)
	case core.FormatBoth:
		p.blank()
		p.open("if (typeof module !== 'undefined' && module.exports) {")
		writeCJSExports(p)
		p.close("}")
	}
	return p.String()
}

func writeCJSExports(p *Printer) {
	p.line("module.exports.hydrate = hydrate;")
	p.line("module.exports.serializeState = serializeState;")
	p.line("module.exports.renderToString = renderToString;")
}

// StateScript returns the state tag embedding values for hydration.
// Keys are written in sorted order and '<' is escaped so the JSON cannot
// close the script element.
func StateScript(values map[string]any) (string, error) {
	if values == nil {
		values = map[string]any{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to serialize state: %w", err)
	}
	return `<script data-ack-state type="application/json">` + string(data) + `</script>`, nil
}

// RenderSSR assembles a server-rendered page fragment: the component
// markup, its state tag and a bootstrap that hydrates target.
func RenderSSR(markup string, values map[string]any, target string) (string, error) {
	if target == "" {
		target = DefaultHydrationTarget
	}
	state, err := StateScript(values)
	if err != nil {
		return "", err
	}
	return markup + state + "<script>hydrate(" + quote(target) + ")</script>", nil
}
