// Package config provides configuration management for the ack CLI.
//
// Values are layered from lowest to highest precedence: built-in defaults,
// the project file (ack.yaml or ack.yml), ACK_* environment variables and
// explicitly set command-line flags.
package config

import (
	"github.com/acklang/ack/pkg/core"
)

// Config holds all CLI configuration options.
type Config struct {
	SrcDir      string      `koanf:"src_dir" yaml:"src_dir"`
	OutDir      string      `koanf:"out_dir" yaml:"out_dir"`
	Format      string      `koanf:"format" yaml:"format"`
	SSR         bool        `koanf:"ssr" yaml:"ssr"`
	Minify      bool        `koanf:"minify" yaml:"minify"`
	SourceMap   bool        `koanf:"source_map" yaml:"source_map"`
	Cache       bool        `koanf:"cache" yaml:"cache"`
	CachePath   string      `koanf:"cache_path" yaml:"cache_path"`
	LogLevel    string      `koanf:"log_level" yaml:"log_level"`
	Verbose     bool        `koanf:"verbose" yaml:"verbose,omitempty"`
	Output      string      `koanf:"output" yaml:"output,omitempty"`
	Concurrency int         `koanf:"concurrency" yaml:"concurrency"`
	Watch       WatchConfig `koanf:"watch" yaml:"watch"`
	Serve       ServeConfig `koanf:"serve" yaml:"serve"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-" yaml:"-"`
}

// WatchConfig holds file watching options.
type WatchConfig struct {
	DebounceMS int `koanf:"debounce_ms" yaml:"debounce_ms"`
}

// ServeConfig holds dev server options.
type ServeConfig struct {
	Port int `koanf:"port" yaml:"port"`
}

// CompileOptions returns the compile options for the component at path.
func (c *Config) CompileOptions(path string) core.Options {
	format, err := core.ParseFormat(c.Format)
	if err != nil {
		format = core.FormatESM
	}
	return core.Options{
		FilePath:  path,
		Format:    format,
		Minify:    c.Minify,
		SourceMap: c.SourceMap,
		SSR:       c.SSR,
	}
}
