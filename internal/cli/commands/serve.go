package commands

import (
	"fmt"
	"time"

	"github.com/acklang/ack/internal/devserver"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var noWatch bool
	var runtimeURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the development server",
		Long: `Start an HTTP server that compiles components on request.

Routes:
  /                    component index
  /components/<path>   compiled JavaScript module
  /preview/<path>      page mounting one component (?state= JSON initial values)
  /api/components      compile status of every component as JSON

Browsers reload when a component changes.`,
		Example: `  # Serve on the default port
  ack serve

  # Serve on another port without file watching
  ack serve --port 8080 --no-watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			opts := cmdCtx.Cfg.CompileOptions("")
			srv := devserver.New(devserver.Config{
				Compiler:    cmdCtx.Compiler,
				Cache:       store,
				SrcDir:      cmdCtx.Cfg.SrcDir,
				ProjectRoot: cmdCtx.Cfg.ProjectRoot,
				Port:        cmdCtx.Cfg.Serve.Port,
				Options:     opts,
				RuntimeURL:  runtimeURL,
				Watch:       !noWatch,
				Debounce:    time.Duration(cmdCtx.Cfg.Watch.DebounceMS) * time.Millisecond,
				Logger:      cmdCtx.Logger,
			})
			cmdCtx.Renderer.Println(fmt.Sprintf("Serving %s at http://localhost:%d",
				cmdCtx.displayPath(cmdCtx.Cfg.SrcDir), cmdCtx.Cfg.Serve.Port))
			return srv.Serve(cmd.Context())
		},
	}

	cmd.Flags().Int("port", 5173, "Port to listen on")
	cmd.Flags().Int("debounce", 100, "Milliseconds of quiet before a reload")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Disable live reload")
	cmd.Flags().StringVar(&runtimeURL, "runtime-url", devserver.DefaultRuntimeURL, "URL preview pages import @ack/runtime from")
	return cmd
}
