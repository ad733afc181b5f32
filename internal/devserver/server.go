// Package devserver serves .ack components compiled on request, with a
// preview page per component and live reload when sources change.
package devserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/acklang/ack/internal/cache"
	"github.com/acklang/ack/internal/watch"
	"github.com/acklang/ack/pkg/core"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

// DefaultRuntimeURL is where preview pages load the runtime module from.
const DefaultRuntimeURL = "/node_modules/@ack/runtime/index.js"

// Compiler compiles one component.
type Compiler interface {
	Compile(source string, opts core.Options) core.CompileResult
}

// Config holds configuration for the dev server.
type Config struct {
	Compiler Compiler
	// Cache is optional; when set compiles go through it
	Cache *cache.Store
	// SrcDir is the component root
	SrcDir string
	// ProjectRoot serves /node_modules for the runtime import
	ProjectRoot string
	Port        int
	// Options are the base compile options; FilePath is set per request
	Options    core.Options
	RuntimeURL string
	Watch      bool
	Debounce   time.Duration
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Server is the development server.
type Server struct {
	cfg    Config
	hub    *reloadHub
	logger *slog.Logger
}

// New creates a dev server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.RuntimeURL == "" {
		cfg.RuntimeURL = DefaultRuntimeURL
	}
	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = filepath.Dir(cfg.SrcDir)
	}
	return &Server{cfg: cfg, hub: newReloadHub(), logger: logger}
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		s.logRequests,
		middleware.Compress(5),
	)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/api/components", s.handleList)
	r.Get("/components/*", s.handleComponent)
	r.Get("/preview/*", s.handlePreview)
	r.Get("/__reload", s.handleReload)
	r.Handle("/node_modules/*", http.StripPrefix("/node_modules/",
		http.FileServer(http.Dir(filepath.Join(s.cfg.ProjectRoot, "node_modules")))))
	return r
}

// Serve starts the server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.Watch {
		w := watch.New(s.cfg.SrcDir, watch.WithDebounce(s.cfg.Debounce), watch.WithLogger(s.logger))
		eg.Go(func() error {
			return w.Run(egctx, s.onChange)
		})
	}

	eg.Go(func() error {
		s.logger.Info("dev server running", "addr", fmt.Sprintf("http://localhost:%d", s.cfg.Port), "src", s.cfg.SrcDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Debug("shutting down dev server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// onChange drops cached output of changed files and tells browsers to reload.
func (s *Server) onChange(paths []string) {
	rel := make([]string, 0, len(paths))
	for _, p := range paths {
		if s.cfg.Cache != nil {
			if _, err := s.cfg.Cache.DeletePath(context.Background(), p); err != nil {
				s.logger.Warn("failed to drop cache entries", "file", p, "error", err)
			}
		}
		if r, err := filepath.Rel(s.cfg.SrcDir, p); err == nil {
			p = filepath.ToSlash(r)
		}
		rel = append(rel, p)
	}
	s.logger.Info("components changed", "files", rel, "clients", s.hub.count())
	s.hub.broadcast(strings.Join(rel, ","))
}

// compile compiles the component at rel, a slash separated path under SrcDir.
func (s *Server) compile(ctx context.Context, rel string) (core.CompileResult, error) {
	path, err := s.resolve(rel)
	if err != nil {
		return core.CompileResult{}, err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return core.CompileResult{}, err
	}

	opts := s.cfg.Options
	opts.FilePath = path
	if s.cfg.Cache != nil {
		result, _, err := s.cfg.Cache.Compile(ctx, s.cfg.Compiler, string(source), opts)
		return result, err
	}
	return s.cfg.Compiler.Compile(string(source), opts), nil
}

// resolve maps a request path to a component file, refusing paths that
// escape SrcDir.
func (s *Server) resolve(rel string) (string, error) {
	rel = strings.TrimPrefix(rel, "/")
	if !strings.HasSuffix(rel, core.FileExtension) {
		rel += core.FileExtension
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid component path %q: %w", rel, os.ErrNotExist)
	}
	return filepath.Join(s.cfg.SrcDir, clean), nil
}

// components lists component paths under SrcDir, slash separated and
// relative to it.
func (s *Server) components() ([]string, error) {
	var out []string
	err := filepath.WalkDir(s.cfg.SrcDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.cfg.SrcDir && (d.Name() == "node_modules" || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == core.FileExtension {
			rel, err := filepath.Rel(s.cfg.SrcDir, path)
			if err != nil {
				return err
			}
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	return out, err
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
