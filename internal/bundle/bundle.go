// Package bundle post-processes generated component code with esbuild:
// syntax validation, minification and source maps.
package bundle

import (
	"fmt"
	"strings"

	"github.com/acklang/ack/pkg/core"
	"github.com/evanw/esbuild/pkg/api"
)

// Options configures a transform.
type Options struct {
	// SourceFile names the input in errors and source maps
	SourceFile string
	Minify     bool
	SourceMap  bool
}

// Result is the transformed code and, when requested, its source map.
type Result struct {
	Code string
	Map  string
}

// Transform runs esbuild over generated JavaScript. The module format of
// the input is preserved.
func Transform(code string, opts Options) (*Result, error) {
	transformOpts := api.TransformOptions{
		Loader:     api.LoaderJS,
		Sourcefile: opts.SourceFile,
		Target:     api.ES2020,
		LogLevel:   api.LogLevelSilent,
	}

	if opts.Minify {
		transformOpts.MinifyWhitespace = true
		transformOpts.MinifyIdentifiers = true
		transformOpts.MinifySyntax = true
	}
	if opts.SourceMap {
		transformOpts.Sourcemap = api.SourceMapExternal
	}

	result := api.Transform(code, transformOpts)
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("esbuild errors:\n%s", formatMessages(result.Errors))
	}

	return &Result{
		Code: string(result.Code),
		Map:  string(result.Map),
	}, nil
}

// Validate reports a syntax error in code, if any.
func Validate(code string) error {
	_, err := Transform(code, Options{SourceFile: "component.js"})
	return err
}

// Extension returns the output file extension for a module format.
func Extension(format core.Format) string {
	if format == core.FormatCJS {
		return ".cjs"
	}
	return ".mjs"
}

func formatMessages(msgs []api.Message) string {
	var sb strings.Builder
	for _, msg := range msgs {
		if msg.Location != nil {
			fmt.Fprintf(&sb, "%s:%d:%d: %s\n",
				msg.Location.File,
				msg.Location.Line,
				msg.Location.Column,
				msg.Text)
			continue
		}
		sb.WriteString(msg.Text + "\n")
	}
	return sb.String()
}
