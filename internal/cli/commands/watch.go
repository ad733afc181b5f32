package commands

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/acklang/ack/internal/build"
	"github.com/acklang/ack/internal/watch"
	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild components when they change",
		Long: `Build the project, then watch the source directory and rebuild each
component as it changes. Output of deleted components is removed.`,
		Example: `  # Watch with the default debounce
  ack watch

  # Wait 300ms of quiet before rebuilding
  ack watch --debounce 300`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd)
		},
	}
	cmd.Flags().Int("debounce", 100, "Milliseconds of quiet before a rebuild")
	return cmd
}

func runWatch(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if err := cmdCtx.Cfg.ValidateSourceDir(); err != nil {
		return err
	}

	store, cleanup, err := cmdCtx.OpenCache()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	builder := cmdCtx.NewBuilder(store)
	report, err := builder.Build(ctx, nil)
	if err != nil {
		return err
	}
	if err := renderReport(cmdCtx, report); err != nil {
		return err
	}

	w := watch.New(cmdCtx.Cfg.SrcDir,
		watch.WithDebounce(time.Duration(cmdCtx.Cfg.Watch.DebounceMS)*time.Millisecond),
		watch.WithLogger(cmdCtx.Logger))
	cmdCtx.Renderer.Println("Watching " + cmdCtx.displayPath(cmdCtx.Cfg.SrcDir) + " for changes (Ctrl+C to stop)")

	return w.Run(ctx, func(paths []string) {
		rebuild(ctx, cmdCtx, builder, paths)
	})
}

// rebuild compiles changed components and removes output of deleted ones.
func rebuild(ctx context.Context, c *CommandContext, builder *build.Builder, paths []string) {
	var changed []string
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			if err := builder.Remove(ctx, p); err != nil {
				c.Renderer.Error(err.Error())
			}
			continue
		}
		changed = append(changed, p)
	}
	if len(changed) == 0 {
		return
	}

	report, err := builder.Build(ctx, changed)
	if err != nil {
		c.Renderer.Error(err.Error())
		return
	}
	for _, f := range report.Files {
		if f.Failed() {
			printDiagnostics(c, f.Source, f.Errors, f.Warnings)
			continue
		}
		c.Renderer.Success(c.displayPath(f.Source) + " -> " + c.displayPath(f.Output))
		printDiagnostics(c, f.Source, nil, f.Warnings)
	}
}
