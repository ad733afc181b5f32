package commands

import (
	"fmt"

	"github.com/acklang/ack/pkg/core"
)

// printDiagnostics writes one line per error and warning of a component.
func printDiagnostics(c *CommandContext, path string, errs []core.CompileError, warnings []core.CompileWarning) {
	display := c.displayPath(path)
	for _, e := range errs {
		c.Renderer.Error(fmt.Sprintf("%s:%d:%d: %s", display, e.Line, e.Column, e.Message))
	}
	for _, w := range warnings {
		c.Renderer.Warning(fmt.Sprintf("%s:%d:%d: %s [%s]", display, w.Line, w.Column, w.Message, w.Code))
	}
}
