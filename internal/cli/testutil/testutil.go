// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/acklang/ack/internal/cli/output"
)

// CounterComponent is a small valid component.
const CounterComponent = `<script>
let count = 0;
let doubled = count * 2;
</script>

<template>
  <button @click="count++">{count}</button>
  <p>{doubled}</p>
</template>

<style>
  button { font-weight: bold; }
</style>
`

// BadgeComponent compiles with one unused-variable warning.
const BadgeComponent = `<script>
export let label = "new";
let spare = 0;
</script>
<span class="badge">{label}</span>
`

// CyclicComponent fails to compile with a dependency cycle.
const CyclicComponent = `<script>
let a = b;
let b = a;
</script>
<p>{a}</p>
`

// SetupTestProject creates a temporary ack project with an ack.yaml and
// two components under src/. It returns the project root.
func SetupTestProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	WriteFile(t, root, "ack.yaml", "src_dir: src\nout_dir: dist\ncache_path: .ack/cache.db\n")
	WriteFile(t, root, "src/Counter.ack", CounterComponent)
	WriteFile(t, root, "src/widgets/Badge.ack", BadgeComponent)
	return root
}

// WriteFile writes content to rel under root, creating directories.
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
	return path
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a test renderer with the given mode.
func NewTestRenderer(mode output.Mode) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRenderer(out, errOut, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}
