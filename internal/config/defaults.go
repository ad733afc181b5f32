package config

// Default configuration values.
const (
	DefaultSrcDir     = "src"
	DefaultOutDir     = "dist"
	DefaultFormat     = "esm"
	DefaultCachePath  = ".ack/cache.db"
	DefaultLogLevel   = "info"
	DefaultDebounceMS = 100
	DefaultPort       = 5173
	DefaultOutput     = "auto"
)

// ConfigFileNames lists the project file names in lookup order.
var ConfigFileNames = []string{"ack.yaml", "ack.yml"}

// Default returns a Config holding the default values.
func Default() *Config {
	return &Config{
		SrcDir:    DefaultSrcDir,
		OutDir:    DefaultOutDir,
		Format:    DefaultFormat,
		Cache:     true,
		CachePath: DefaultCachePath,
		LogLevel:  DefaultLogLevel,
		Output:    DefaultOutput,
		Watch:     WatchConfig{DebounceMS: DefaultDebounceMS},
		Serve:     ServeConfig{Port: DefaultPort},
	}
}

func defaultValues() map[string]interface{} {
	d := Default()
	return map[string]interface{}{
		"src_dir":           d.SrcDir,
		"out_dir":           d.OutDir,
		"format":            d.Format,
		"ssr":               d.SSR,
		"minify":            d.Minify,
		"source_map":        d.SourceMap,
		"cache":             d.Cache,
		"cache_path":        d.CachePath,
		"log_level":         d.LogLevel,
		"verbose":           false,
		"output":            d.Output,
		"concurrency":       0,
		"watch.debounce_ms": d.Watch.DebounceMS,
		"serve.port":        d.Serve.Port,
	}
}
