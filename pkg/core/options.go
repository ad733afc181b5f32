package core

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Format selects the module system of the emitted code.
type Format string

// Output formats.
const (
	FormatESM  Format = "esm"
	FormatCJS  Format = "cjs"
	FormatBoth Format = "both"
)

// DefaultFilePath is used when Options.FilePath is empty.
const DefaultFilePath = "unknown.ack"

// FileExtension is the extension of component source files.
const FileExtension = ".ack"

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatESM, FormatCJS, FormatBoth:
		return f, nil
	case "":
		return FormatESM, nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected esm, cjs or both)", s)
	}
}

// Options controls a single compile.
type Options struct {
	// FilePath is the path of the component, default "unknown.ack"
	FilePath string
	// Name overrides the component name derived from FilePath
	Name string
	// Format is esm, cjs or both, default esm
	Format Format
	// Minify is passed through to later bundling stages
	Minify bool
	// SourceMap is passed through to later bundling stages
	SourceMap bool
	// SSR appends hydration code
	SSR bool
}

// WithDefaults returns a copy of o with empty fields filled in.
func (o Options) WithDefaults() Options {
	if o.FilePath == "" {
		o.FilePath = DefaultFilePath
	}
	if o.Format == "" {
		o.Format = FormatESM
	}
	if o.Name == "" {
		o.Name = ComponentName(o.FilePath)
	}
	return o
}

// ComponentName derives a component name from a file path: the base name
// with the .ack extension stripped and the first character upper-cased.
func ComponentName(filePath string) string {
	base := strings.TrimSuffix(filepath.Base(filePath), FileExtension)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "Component"
	}
	r, size := utf8.DecodeRuneInString(base)
	return string(unicode.ToUpper(r)) + base[size:]
}
