// Package commands implements the ack subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/acklang/ack/internal/build"
	"github.com/acklang/ack/internal/cache"
	"github.com/acklang/ack/internal/cli/output"
	"github.com/acklang/ack/internal/compiler"
	"github.com/acklang/ack/internal/config"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Compiler *compiler.Compiler
}

// NewCommandContext creates a CommandContext from the config and logger
// stored on the command context by the root command.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	mode, err := output.ParseMode(cfg.Output)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
		Compiler: compiler.New(compiler.Config{Logger: logger}),
	}, nil
}

// OpenCache opens the build cache when caching is enabled. The returned
// store is nil when it is disabled; cleanup is always safe to call.
func (c *CommandContext) OpenCache() (*cache.Store, func(), error) {
	if !c.Cfg.Cache {
		return nil, func() {}, nil
	}
	store := cache.NewStore(c.Logger)
	if err := store.Open(c.Cfg.CachePath); err != nil {
		return nil, nil, fmt.Errorf("failed to open build cache: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

// NewBuilder creates a builder for the configured project.
func (c *CommandContext) NewBuilder(store *cache.Store) *build.Builder {
	return build.New(build.Config{
		Compiler:    c.Compiler,
		Cache:       store,
		SrcDir:      c.Cfg.SrcDir,
		OutDir:      c.Cfg.OutDir,
		Options:     c.Cfg.CompileOptions(""),
		Concurrency: c.Cfg.Concurrency,
		Logger:      c.Logger,
	})
}

// resolveComponents turns command arguments into absolute component
// paths, or discovers every component under the source directory when
// args is empty.
func (c *CommandContext) resolveComponents(args []string) ([]string, error) {
	if len(args) == 0 {
		if err := c.Cfg.ValidateSourceDir(); err != nil {
			return nil, err
		}
		return build.Discover(c.Cfg.SrcDir)
	}
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", arg, err)
		}
		paths = append(paths, abs)
	}
	return paths, nil
}

// displayPath shortens path relative to the project root for output.
func (c *CommandContext) displayPath(path string) string {
	if path == "" {
		return ""
	}
	if rel, err := filepath.Rel(c.Cfg.ProjectRoot, path); err == nil && !filepath.IsAbs(rel) && rel != ".." && !startsWithParent(rel) {
		return filepath.ToSlash(rel)
	}
	return path
}

func startsWithParent(rel string) bool {
	return len(rel) > 3 && rel[:3] == ".."+string(filepath.Separator)
}
