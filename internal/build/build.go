// Package build compiles a tree of .ack components to JavaScript files.
//
// Sources under SrcDir map to OutDir with the same relative path and an
// extension matching the module format (.mjs or .cjs). Files compile in
// parallel; a component that fails to compile is reported and skipped
// without stopping the others.
package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/acklang/ack/internal/bundle"
	"github.com/acklang/ack/internal/cache"
	"github.com/acklang/ack/pkg/core"
	"golang.org/x/sync/errgroup"
)

// Compiler compiles one component.
type Compiler interface {
	Compile(source string, opts core.Options) core.CompileResult
}

// Config configures a Builder.
type Config struct {
	Compiler Compiler
	// Cache is optional
	Cache  *cache.Store
	SrcDir string
	OutDir string
	// Options are the base compile options; FilePath is set per file
	Options core.Options
	// Concurrency bounds parallel compiles, 0 means GOMAXPROCS
	Concurrency int
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// FileResult is the outcome for one component.
type FileResult struct {
	Source    string                `json:"source"`
	Output    string                `json:"output,omitempty"`
	Component string                `json:"component"`
	Cached    bool                  `json:"cached"`
	Bytes     int                   `json:"bytes"`
	Errors    []core.CompileError   `json:"errors"`
	Warnings  []core.CompileWarning `json:"warnings"`
	Duration  time.Duration         `json:"duration"`
}

// Failed reports whether the component did not compile.
func (r *FileResult) Failed() bool {
	return len(r.Errors) > 0
}

// Report summarizes a build.
type Report struct {
	Files    []FileResult  `json:"files"`
	Duration time.Duration `json:"duration"`
}

// Failed returns the number of components that did not compile.
func (r *Report) Failed() int {
	n := 0
	for i := range r.Files {
		if r.Files[i].Failed() {
			n++
		}
	}
	return n
}

// Warnings returns the total warning count.
func (r *Report) Warnings() int {
	n := 0
	for i := range r.Files {
		n += len(r.Files[i].Warnings)
	}
	return n
}

// Cached returns the number of components served from the cache.
func (r *Report) Cached() int {
	n := 0
	for i := range r.Files {
		if r.Files[i].Cached {
			n++
		}
	}
	return n
}

// Builder compiles components and writes their output.
type Builder struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Builder.
func New(cfg Config) *Builder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Options.Format == "" {
		cfg.Options.Format = core.FormatESM
	}
	return &Builder{cfg: cfg, logger: logger}
}

// Discover returns every component under dir in lexical order, skipping
// hidden directories and node_modules.
func Discover(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (d.Name() == "node_modules" || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == core.FileExtension {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover components in %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Build compiles paths, or every component under SrcDir when paths is
// empty. The returned error covers I/O and cache failures only.
func (b *Builder) Build(ctx context.Context, paths []string) (*Report, error) {
	start := time.Now()
	if len(paths) == 0 {
		var err error
		if paths, err = Discover(b.cfg.SrcDir); err != nil {
			return nil, err
		}
	}

	limit := b.cfg.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			res, err := b.File(gctx, path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Files: results, Duration: time.Since(start)}
	b.logger.Info("build finished",
		"files", len(results),
		"failed", report.Failed(),
		"cached", report.Cached(),
		"duration", report.Duration)
	return report, nil
}

// File compiles one component and writes its output.
func (b *Builder) File(ctx context.Context, path string) (FileResult, error) {
	if err := ctx.Err(); err != nil {
		return FileResult{}, err
	}
	start := time.Now()

	source, err := os.ReadFile(path)
	if err != nil {
		return FileResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	opts := b.cfg.Options
	opts.FilePath = path
	opts = opts.WithDefaults()

	res := FileResult{Source: path, Component: opts.Name}
	var result core.CompileResult
	if b.cfg.Cache != nil {
		result, res.Cached, err = b.cfg.Cache.Compile(ctx, b.cfg.Compiler, string(source), opts)
		if err != nil {
			return FileResult{}, err
		}
	} else {
		result = b.cfg.Compiler.Compile(string(source), opts)
	}
	res.Errors = result.Errors
	res.Warnings = result.Warnings

	if result.HasErrors() {
		res.Duration = time.Since(start)
		b.logger.Debug("component failed", "file", path, "errors", len(result.Errors))
		return res, nil
	}

	out, err := b.OutputPath(path)
	if err != nil {
		return FileResult{}, err
	}
	n, err := b.write(out, result.Code, opts)
	if err != nil {
		return FileResult{}, err
	}
	res.Output = out
	res.Bytes = n
	res.Duration = time.Since(start)
	b.logger.Debug("component built", "file", path, "output", out, "bytes", n, "cached", res.Cached)
	return res, nil
}

// write runs the bundler stage when minify or source maps are requested
// and writes the output file. It returns the number of code bytes written.
func (b *Builder) write(out, code string, opts core.Options) (int, error) {
	var sourceMap string
	if opts.Minify || opts.SourceMap {
		rel, err := filepath.Rel(filepath.Dir(out), opts.FilePath)
		if err != nil {
			rel = filepath.Base(opts.FilePath)
		}
		transformed, err := bundle.Transform(code, bundle.Options{
			SourceFile: filepath.ToSlash(rel),
			Minify:     opts.Minify,
			SourceMap:  opts.SourceMap,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to bundle %s: %w", opts.FilePath, err)
		}
		code = transformed.Code
		sourceMap = transformed.Map
	}

	if err := os.MkdirAll(filepath.Dir(out), 0750); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	if sourceMap != "" {
		mapPath := out + ".map"
		if err := os.WriteFile(mapPath, []byte(sourceMap), 0600); err != nil {
			return 0, fmt.Errorf("failed to write %s: %w", mapPath, err)
		}
		code = strings.TrimRight(code, "\n") + "\n//# sourceMappingURL=" + filepath.Base(mapPath) + "\n"
	}
	if err := os.WriteFile(out, []byte(code), 0600); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", out, err)
	}
	return len(code), nil
}

// OutputPath maps a source path under SrcDir to its output path.
func (b *Builder) OutputPath(path string) (string, error) {
	rel, err := filepath.Rel(b.cfg.SrcDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("component %s is outside the source directory %s", path, b.cfg.SrcDir)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + bundle.Extension(b.cfg.Options.Format)
	return filepath.Join(b.cfg.OutDir, rel), nil
}

// Remove deletes the output of a source that no longer exists, along with
// its cache entries.
func (b *Builder) Remove(ctx context.Context, path string) error {
	if b.cfg.Cache != nil {
		if _, err := b.cfg.Cache.DeletePath(ctx, path); err != nil {
			return err
		}
	}
	out, err := b.OutputPath(path)
	if err != nil {
		return err
	}
	for _, p := range []string{out, out + ".map"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	b.logger.Debug("output removed", "file", path, "output", out)
	return nil
}
