// Package parser turns a .ack component source into a core.ComponentModel.
//
// It splits the source into its script, template and style regions and
// runs the matching sub-parser on each. Parsing never fails: missing
// regions become empty blocks and malformed markup yields a partial tree.
package parser

import (
	"log/slog"
	"strings"

	"github.com/acklang/ack/internal/blocks"
	"github.com/acklang/ack/internal/style"
	"github.com/acklang/ack/internal/template"
	"github.com/acklang/ack/pkg/core"
)

// Parser parses component sources. It holds no per-component state and
// may be reused, but every Parse call builds a fresh model.
type Parser struct {
	scopeID style.ScopeIDFunc
	logger  *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithScopeID sets the scope ID generator used for style blocks.
func WithScopeID(fn style.ScopeIDFunc) Option {
	return func(p *Parser) { p.scopeID = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// NewParser creates a new component parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	return p
}

// Parse builds the component model for source. opts supplies the file path
// and component name; defaults are applied to empty fields.
func (p *Parser) Parse(source string, opts core.Options) *core.ComponentModel {
	opts = opts.WithDefaults()
	regions := blocks.Split(source)

	scriptStart, _, _ := blocks.Locate(source, blocks.Script)
	scan := ScanScript(regions.Script)
	tmpl := template.Parse(regions.Template)
	css := style.NewParser(p.scopeID).Parse(regions.Style, isScoped(blocks.Attributes(source, blocks.Style)))

	p.logger.Debug("parsed component",
		"component", opts.Name,
		"variables", len(scan.Variables),
		"imports", len(scan.Imports),
		"template_vars", len(tmpl.UsedVariables),
		"style_rules", len(css.Rules),
	)

	return &core.ComponentModel{
		Name: opts.Name,
		Script: core.ScriptBlock{
			Content:           regions.Script,
			Offset:            scriptStart,
			ReactiveVariables: scan.Variables,
			Imports:           scan.Imports,
		},
		Template: tmpl,
		Style:    css,
		Source:   source,
		FilePath: opts.FilePath,
	}
}

// isScoped reports whether a <style> tag with the given attributes is
// scoped. Styles are scoped unless marked global.
func isScoped(attrs string) bool {
	for _, f := range strings.Fields(attrs) {
		if f == "global" {
			return false
		}
	}
	return true
}
