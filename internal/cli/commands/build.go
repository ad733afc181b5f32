package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/acklang/ack/internal/build"
	"github.com/acklang/ack/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build [files...]",
		Short: "Compile components to JavaScript",
		Long: `Compile .ack components to JavaScript modules.

Without arguments every component under the source directory is compiled.
Output mirrors the source tree under the output directory with a .mjs
extension (.cjs for --format cjs). Unchanged components are served from
the build cache.`,
		Example: `  # Build the whole project
  ack build

  # Build one component as CommonJS with hydration code
  ack build src/Counter.ack --format cjs --ssr

  # Minified output with source maps
  ack build --minify --source-map`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args)
		},
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	paths, err := cmdCtx.resolveComponents(args)
	if err != nil {
		return err
	}

	store, cleanup, err := cmdCtx.OpenCache()
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := cmdCtx.NewBuilder(store).Build(cmd.Context(), paths)
	if err != nil {
		return err
	}

	if err := renderReport(cmdCtx, report); err != nil {
		return err
	}
	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%d component(s) failed to compile", n)
	}
	return nil
}

func renderReport(c *CommandContext, report *build.Report) error {
	r := c.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(report)
	}

	rows := make([][]string, 0, len(report.Files))
	for _, f := range report.Files {
		status := "ok"
		switch {
		case f.Failed():
			status = "failed"
		case f.Cached:
			status = "cached"
		}
		rows = append(rows, []string{
			c.displayPath(f.Source),
			f.Component,
			c.displayPath(f.Output),
			status,
			strconv.Itoa(len(f.Warnings)),
		})
	}
	r.Header(1, "Build")
	r.Table([]string{"Source", "Component", "Output", "Status", "Warnings"}, rows)
	r.Println("")

	for _, f := range report.Files {
		printDiagnostics(c, f.Source, f.Errors, f.Warnings)
	}

	summary := fmt.Sprintf("%d built, %d cached, %d failed, %d warnings in %s",
		len(report.Files)-report.Failed(), report.Cached(), report.Failed(), report.Warnings(),
		report.Duration.Round(time.Millisecond))
	if report.Failed() > 0 {
		r.Warning(summary)
	} else {
		r.Success(summary)
	}
	return nil
}
