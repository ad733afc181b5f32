// Package cache stores compiled component output in SQLite so unchanged
// sources are not recompiled between builds.
//
// Entries are keyed by a hash of the component source and every compile
// option that affects the emitted code. Only successful compiles are cached.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/acklang/ack/pkg/core"
	"github.com/google/uuid"

	// sqlite driver for the cache database.
	_ "modernc.org/sqlite"
)

// Version is mixed into every key. Bump it when code generation changes.
const Version = "ack-codegen-1"

// Entry is one cached compile.
type Entry struct {
	ID         string
	Key        string
	FilePath   string
	Code       string
	Warnings   []core.CompileWarning
	Hits       int
	CreatedAt  time.Time
	LastUsedAt time.Time
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries int
	Bytes   int64
	Hits    int64
}

// Compiler compiles one component.
type Compiler interface {
	Compile(source string, opts core.Options) core.CompileResult
}

// Store is a SQLite-backed build cache.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a cache store instance. A nil logger discards output.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{logger: logger, now: time.Now}
}

// Open opens the cache database at path and applies migrations.
// Use ":memory:" for an in-memory database.
func (s *Store) Open(path string) error {
	dsn := ":memory:"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create cache directory: %w", err)
			}
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	if err := s.Migrate(); err != nil {
		_ = db.Close()
		s.db = nil
		return err
	}
	s.logger.Debug("cache opened", "path", path)
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Path returns the database path passed to Open.
func (s *Store) Path() string {
	return s.path
}

// Key returns the cache key for compiling source with opts.
func Key(source string, opts core.Options) string {
	opts = opts.WithDefaults()
	h := sha256.New()
	for _, part := range []string{
		Version,
		opts.FilePath,
		opts.Name,
		string(opts.Format),
		strconv.FormatBool(opts.SSR),
		strconv.FormatBool(opts.Minify),
		strconv.FormatBool(opts.SourceMap),
		source,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the entry for key and records the hit.
func (s *Store) Get(ctx context.Context, key string) (*Entry, bool, error) {
	if s.db == nil {
		return nil, false, fmt.Errorf("database not opened")
	}

	var (
		e                   Entry
		warnings            string
		createdAt, lastUsed int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, cache_key, file_path, code, warnings, hits, created_at, last_used_at
		 FROM build_cache WHERE cache_key = ?`, key,
	).Scan(&e.ID, &e.Key, &e.FilePath, &e.Code, &warnings, &e.Hits, &createdAt, &lastUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cache entry: %w", err)
	}
	if err := json.Unmarshal([]byte(warnings), &e.Warnings); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached warnings: %w", err)
	}

	now := s.now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`UPDATE build_cache SET hits = hits + 1, last_used_at = ? WHERE id = ?`,
		now.UnixNano(), e.ID,
	); err != nil {
		return nil, false, fmt.Errorf("failed to record cache hit: %w", err)
	}
	e.Hits++
	e.CreatedAt = time.Unix(0, createdAt).UTC()
	e.LastUsedAt = now
	return &e, true, nil
}

// Put stores an entry, replacing any entry with the same key.
func (s *Store) Put(ctx context.Context, e *Entry) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Warnings == nil {
		e.Warnings = []core.CompileWarning{}
	}
	warnings, err := json.Marshal(e.Warnings)
	if err != nil {
		return fmt.Errorf("failed to encode warnings: %w", err)
	}
	now := s.now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.LastUsedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO build_cache (id, cache_key, file_path, code, warnings, hits, created_at, last_used_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET
		   file_path = excluded.file_path,
		   code = excluded.code,
		   warnings = excluded.warnings,
		   last_used_at = excluded.last_used_at`,
		e.ID, e.Key, e.FilePath, e.Code, string(warnings), e.CreatedAt.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Compile returns the cached result for source when present, otherwise it
// compiles with c and caches a successful result. The bool reports a hit.
func (s *Store) Compile(ctx context.Context, c Compiler, source string, opts core.Options) (core.CompileResult, bool, error) {
	key := Key(source, opts)
	entry, ok, err := s.Get(ctx, key)
	if err != nil {
		return core.CompileResult{}, false, err
	}
	if ok {
		s.logger.Debug("cache hit", "file", opts.FilePath, "hits", entry.Hits)
		return core.CompileResult{
			Code:     entry.Code,
			Errors:   []core.CompileError{},
			Warnings: entry.Warnings,
		}, true, nil
	}

	result := c.Compile(source, opts)
	if result.HasErrors() {
		return result, false, nil
	}
	if err := s.Put(ctx, &Entry{
		Key:      key,
		FilePath: opts.WithDefaults().FilePath,
		Code:     result.Code,
		Warnings: result.Warnings,
	}); err != nil {
		return result, false, err
	}
	s.logger.Debug("cache miss", "file", opts.FilePath)
	return result, false, nil
}

// DeletePath removes every entry compiled from filePath.
func (s *Store) DeletePath(ctx context.Context, filePath string) (int64, error) {
	return s.exec(ctx, "failed to delete cache entries", `DELETE FROM build_cache WHERE file_path = ?`, filePath)
}

// Prune removes entries not used since before.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	return s.exec(ctx, "failed to prune cache", `DELETE FROM build_cache WHERE last_used_at < ?`, before.UTC().UnixNano())
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	return s.exec(ctx, "failed to clear cache", `DELETE FROM build_cache`)
}

// Stats returns entry count, stored code size and total hits.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	if s.db == nil {
		return Stats{}, fmt.Errorf("database not opened")
	}
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(LENGTH(code)), 0), COALESCE(SUM(hits), 0) FROM build_cache`,
	).Scan(&st.Entries, &st.Bytes, &st.Hits)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read cache stats: %w", err)
	}
	return st, nil
}

func (s *Store) exec(ctx context.Context, msg, query string, args ...any) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", msg, err)
	}
	return res.RowsAffected()
}
