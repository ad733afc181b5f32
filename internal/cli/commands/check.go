package commands

import (
	"fmt"
	"os"

	"github.com/acklang/ack/internal/bundle"
	"github.com/acklang/ack/internal/cli/output"
	"github.com/acklang/ack/pkg/core"
	"github.com/spf13/cobra"
)

// checkResult is one component's check outcome in JSON output.
type checkResult struct {
	Source   string                `json:"source"`
	Errors   []core.CompileError   `json:"errors"`
	Warnings []core.CompileWarning `json:"warnings"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Report compile errors and warnings without writing output",
		Long: `Compile components in memory and report errors and warnings.

With --validate the generated JavaScript is also parsed with esbuild to
catch syntax errors in emitted code.`,
		Example: `  # Check every component
  ack check

  # Check one file and validate the emitted JavaScript
  ack check src/Counter.ack --validate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, validate)
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", false, "Parse generated JavaScript with esbuild")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string, validate bool) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	paths, err := cmdCtx.resolveComponents(args)
	if err != nil {
		return err
	}

	var results []checkResult
	failed := 0
	for _, path := range paths {
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		result := cmdCtx.Compiler.Compile(string(source), cmdCtx.Cfg.CompileOptions(path))
		if !result.HasErrors() && validate {
			if err := bundle.Validate(result.Code); err != nil {
				result.Errors = append(result.Errors, core.CompileError{
					Message: "generated code is not valid JavaScript: " + err.Error(),
				})
			}
		}
		if result.HasErrors() {
			failed++
		}
		results = append(results, checkResult{
			Source:   cmdCtx.displayPath(path),
			Errors:   result.Errors,
			Warnings: result.Warnings,
		})
		if cmdCtx.Renderer.EffectiveMode() != output.ModeJSON {
			printDiagnostics(cmdCtx, path, result.Errors, result.Warnings)
		}
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(results); err != nil {
			return err
		}
	} else if failed == 0 {
		r.Success(fmt.Sprintf("%d component(s) checked", len(paths)))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d component(s) have errors", failed, len(paths))
	}
	return nil
}
