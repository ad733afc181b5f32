package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/acklang/ack/pkg/core"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "ack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return dir, path
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir, path := writeConfig(t, "format: esm\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, DefaultSrcDir), cfg.SrcDir)
	assert.Equal(t, filepath.Join(dir, DefaultOutDir), cfg.OutDir)
	assert.Equal(t, filepath.Join(dir, DefaultCachePath), cfg.CachePath)
	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.True(t, cfg.Cache)
	assert.False(t, cfg.SSR)
	assert.Equal(t, DefaultDebounceMS, cfg.Watch.DebounceMS)
	assert.Equal(t, DefaultPort, cfg.Serve.Port)
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfig_FileValues(t *testing.T) {
	ResetConfig()
	dir, path := writeConfig(t, `src_dir: components
format: both
ssr: true
minify: true
watch:
  debounce_ms: 250
serve:
  port: 8080
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "components"), cfg.SrcDir)
	assert.Equal(t, "both", cfg.Format)
	assert.True(t, cfg.SSR)
	assert.True(t, cfg.Minify)
	assert.Equal(t, 250, cfg.Watch.DebounceMS)
	assert.Equal(t, 8080, cfg.Serve.Port)
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	_, path := writeConfig(t, "format: cjs\nsrc_dir: from_file\n")
	t.Setenv("ACK_FORMAT", "both")
	t.Setenv("ACK_SRC_DIR", "from_env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "", "output format")
	flags.String("src-dir", "", "source directory")
	require.NoError(t, flags.Set("format", "esm"))
	require.NoError(t, flags.Set("src-dir", "from_flag"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	want, err := filepath.Abs("from_flag")
	require.NoError(t, err)
	assert.Equal(t, "esm", cfg.Format, "flag value should override config file and env var")
	assert.Equal(t, want, cfg.SrcDir, "flag paths resolve against the working directory")
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	dir, path := writeConfig(t, "src_dir: from_file\nserve:\n  port: 3000\n")
	t.Setenv("ACK_SRC_DIR", "from_env")
	t.Setenv("ACK_SERVE_PORT", "4000")
	t.Setenv("ACK_WATCH_DEBOUNCE_MS", "50")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "from_env"), cfg.SrcDir)
	assert.Equal(t, 4000, cfg.Serve.Port)
	assert.Equal(t, 50, cfg.Watch.DebounceMS)
}

func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()
	_, path := writeConfig(t, "format: cjs\n")
	t.Setenv("ACK_FORMAT", "both")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "esm", "output format")

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "both", cfg.Format, "env var should be used when flag is not set")
}

func TestLoadConfig_BridgedFlags(t *testing.T) {
	ResetConfig()
	_, path := writeConfig(t, "format: esm\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", DefaultPort, "port")
	flags.Int("debounce", DefaultDebounceMS, "debounce")
	require.NoError(t, flags.Set("port", "9000"))
	require.NoError(t, flags.Set("debounce", "10"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Serve.Port)
	assert.Equal(t, 10, cfg.Watch.DebounceMS)
}

func TestLoadConfig_Invalid(t *testing.T) {
	ResetConfig()
	_, path := writeConfig(t, "format: amd\n")

	_, err := LoadConfig(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty format", mutate: func(c *Config) { c.Format = "" }},
		{name: "unknown format", mutate: func(c *Config) { c.Format = "umd" }, errSubstr: "format"},
		{name: "negative concurrency", mutate: func(c *Config) { c.Concurrency = -1 }, errSubstr: "concurrency"},
		{name: "negative debounce", mutate: func(c *Config) { c.Watch.DebounceMS = -5 }, errSubstr: "debounce_ms"},
		{name: "port out of range", mutate: func(c *Config) { c.Serve.Port = 70000 }, errSubstr: "serve.port"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, errSubstr: "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_CompileOptions(t *testing.T) {
	cfg := Default()
	cfg.Format = "cjs"
	cfg.SSR = true
	cfg.Minify = true

	opts := cfg.CompileOptions("src/Counter.ack")
	assert.Equal(t, core.Options{
		FilePath: "src/Counter.ack",
		Format:   core.FormatCJS,
		Minify:   true,
		SSR:      true,
	}, opts)
}

func TestFindProjectRoot(t *testing.T) {
	root, _ := writeConfig(t, "format: esm\n")
	nested := filepath.Join(root, "src", "widgets")
	require.NoError(t, os.MkdirAll(nested, 0750))

	assert.Equal(t, root, FindProjectRoot(nested))
	assert.Equal(t, "", FindProjectRoot(t.TempDir()))
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"ACK_SRC_DIR":           "src_dir",
		"ACK_FORMAT":            "format",
		"ACK_SERVE_PORT":        "serve.port",
		"ACK_WATCH_DEBOUNCE_MS": "watch.debounce_ms",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()), "discard logger expected without one in context")

	logger := slog.New(slog.DiscardHandler)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.Equal(t, logger, ctx.Value(LoggerKey()))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, Default(), FromContext(context.Background()))

	cfg := Default()
	cfg.Format = "cjs"
	assert.Same(t, cfg, FromContext(WithConfig(context.Background(), cfg)))
}
