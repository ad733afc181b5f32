// Package compiler turns .ack component source into JavaScript.
//
// A compile runs the stages parse, analyze, graph and generate. A
// dependency cycle between reactive variables stops the compile before
// any code is generated. Compile never returns a Go error or panics:
// every failure is reported in CompileResult.Errors with empty Code.
package compiler

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/acklang/ack/internal/codegen"
	"github.com/acklang/ack/internal/dag"
	"github.com/acklang/ack/internal/parser"
	"github.com/acklang/ack/internal/reactivity"
	"github.com/acklang/ack/internal/style"
	"github.com/acklang/ack/pkg/core"
)

// Stage names a step of the compile pipeline.
type Stage string

// Pipeline stages in execution order.
const (
	StageParse    Stage = "parse"
	StageAnalyze  Stage = "analyze"
	StageGraph    Stage = "graph"
	StageGenerate Stage = "generate"
)

// WarningUnusedVariable is the code of unused-variable warnings.
const WarningUnusedVariable = "unused-variable"

// Config configures a Compiler.
type Config struct {
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// ScopeID generates style scope IDs (optional, uses style.NewScopeID)
	ScopeID style.ScopeIDFunc
}

// Compiler compiles components. It keeps no state between compiles and is
// safe for concurrent use.
type Compiler struct {
	logger  *slog.Logger
	scopeID style.ScopeIDFunc
}

// New creates a compiler.
func New(cfg Config) *Compiler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compiler{logger: logger, scopeID: cfg.ScopeID}
}

// Compile compiles source with a default compiler.
func Compile(source string, opts core.Options) core.CompileResult {
	return New(Config{}).Compile(source, opts)
}

// Compile compiles one component.
func (c *Compiler) Compile(source string, opts core.Options) (result core.CompileResult) {
	opts = opts.WithDefaults()
	stage := StageParse

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("compile panicked", "file", opts.FilePath, "stage", stage, "panic", r)
			result = failure(source, &StageError{Stage: stage, Err: fmt.Errorf("internal error: %v", r)})
		}
	}()

	code, warnings, err := c.compile(source, opts, &stage)
	if err != nil {
		c.logger.Debug("compile failed", "file", opts.FilePath, "stage", stage, "error", err)
		return failure(source, err)
	}

	c.logger.Debug("compiled component",
		"file", opts.FilePath,
		"component", opts.Name,
		"format", opts.Format,
		"bytes", len(code),
		"warnings", len(warnings),
	)
	return core.CompileResult{
		Code:     code,
		Errors:   []core.CompileError{},
		Warnings: warnings,
	}
}

func (c *Compiler) compile(source string, opts core.Options, stage *Stage) (string, []core.CompileWarning, error) {
	switch opts.Format {
	case core.FormatESM, core.FormatCJS, core.FormatBoth:
	default:
		return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}

	a, err := c.analyze(source, opts, stage)
	if err != nil {
		return "", nil, err
	}
	model, graph := a.Model, a.Graph

	// CodeGenerated
	*stage = StageGenerate
	var parts []string
	switch opts.Format {
	case core.FormatESM:
		parts = append(parts, codegen.GenerateESM(model, graph))
	case core.FormatCJS:
		parts = append(parts, codegen.GenerateCJS(model, graph))
	case core.FormatBoth:
		parts = append(parts, codegen.GenerateBoth(model, graph))
	}
	if styles := codegen.GenerateStyles(model); styles != "" {
		parts = append(parts, styles)
	}
	if opts.SSR {
		parts = append(parts, codegen.GenerateHydration(model, opts.Format))
	}

	return strings.Join(parts, "\n"), a.Warnings, nil
}

// Analysis is a parsed and analyzed component with its dependency graph.
type Analysis struct {
	Model    *core.ComponentModel
	Graph    *dag.Graph
	Warnings []core.CompileWarning
}

// Analyze runs the parse, analyze and graph stages without generating
// code. A dependency cycle is returned as *CircularDependencyError.
func (c *Compiler) Analyze(source string, opts core.Options) (a *Analysis, err error) {
	opts = opts.WithDefaults()
	stage := StageParse
	defer func() {
		if r := recover(); r != nil {
			a, err = nil, &StageError{Stage: stage, Err: fmt.Errorf("internal error: %v", r)}
		}
	}()
	return c.analyze(source, opts, &stage)
}

func (c *Compiler) analyze(source string, opts core.Options, stage *Stage) (*Analysis, error) {
	// Parsed
	*stage = StageParse
	model := parser.NewParser(
		parser.WithScopeID(c.scopeID),
		parser.WithLogger(c.logger),
	).Parse(source, opts)

	// Analyzed
	*stage = StageAnalyze
	analyzer := reactivity.NewAnalyzer(model.Script.Content,
		reactivity.WithTemplateVariables(model.Template.UsedVariables),
		reactivity.WithLogger(c.logger),
	)
	model.Script.ReactiveVariables = analyzer.Analyze(model.Script.ReactiveVariables)

	// GraphBuilt
	*stage = StageGraph
	graph := dag.BuildFromVariables(model.Script.ReactiveVariables)

	if graph.HasCyclicDependency() || analyzer.HasCircularDependency() {
		return nil, &CircularDependencyError{Cycle: graph.CyclePath()}
	}
	return &Analysis{Model: model, Graph: graph, Warnings: unusedWarnings(model, analyzer)}, nil
}

// unusedWarnings reports variables never referenced in the script or the
// template. Lines are relative to the whole source.
func unusedWarnings(model *core.ComponentModel, analyzer *reactivity.Analyzer) []core.CompileWarning {
	warnings := []core.CompileWarning{}
	offset := scriptLineOffset(model)
	for _, v := range analyzer.UnusedVariables() {
		warnings = append(warnings, core.CompileWarning{
			Message: fmt.Sprintf("reactive variable %q is declared but never used", v.Name),
			Line:    offset + v.DeclarationLine,
			Code:    WarningUnusedVariable,
		})
	}
	return warnings
}

// scriptLineOffset returns the number of source lines before the script
// content.
func scriptLineOffset(model *core.ComponentModel) int {
	if model.Script.Content == "" || model.Script.Offset > len(model.Source) {
		return 0
	}
	return strings.Count(model.Source[:model.Script.Offset], "\n")
}

// failure converts err into a result with one error and no code.
func failure(source string, err error) core.CompileResult {
	return core.CompileResult{
		Code: "",
		Errors: []core.CompileError{{
			Message:       err.Error(),
			SourceSnippet: source,
		}},
		Warnings: []core.CompileWarning{},
	}
}

// IsCircular reports whether a compile error message came from a
// dependency cycle.
func IsCircular(e core.CompileError) bool {
	return strings.Contains(e.Message, "Circular dependency detected")
}
