package compiler

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/acklang/ack/internal/bundle"
	"github.com/acklang/ack/internal/testutil"
	"github.com/acklang/ack/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const counterSource = `<script>
let count = 0;
let doubled = count * 2;

function increment() {
  count += 1;
}
</script>

<template>
  <h1>{count}</h1>
  <p>{doubled}</p>
  <button @click="increment">+</button>
</template>

<style>
  h1 { font-size: 2rem; }
</style>
`

func newTestCompiler(t *testing.T) *Compiler {
	t.Helper()
	return New(Config{
		Logger:  testutil.NewTestLogger(t),
		ScopeID: func() string { return "ack-fixed0001" },
	})
}

func TestCompile_ScenarioA(t *testing.T) {
	result := newTestCompiler(t).Compile("<script>let count = 0;</script><template><h1>{count}</h1></template>",
		core.Options{FilePath: "counter.ack"})

	require.Empty(t, result.Errors)
	assert.NotEmpty(t, result.Code)
	assert.Contains(t, result.Code, `let count = "count" in __initial ? __initial["count"] : (0);`)
	assert.Contains(t, result.Code, "export default function Counter(")
	assert.Empty(t, result.Warnings)
	require.NoError(t, bundle.Validate(result.Code))
}

func TestCompile_ScenarioB_Circular(t *testing.T) {
	result := newTestCompiler(t).Compile("<script>let a = b; let b = a;</script>", core.Options{})

	assert.Equal(t, "", result.Code)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "Circular")
	assert.Contains(t, result.Errors[0].Message, "a -> b -> a")
	assert.True(t, IsCircular(result.Errors[0]))
	assert.Equal(t, 0, result.Errors[0].Line)
	assert.Empty(t, result.Warnings)
}

func TestCompile_ScenarioC_ScriptOnly(t *testing.T) {
	result := newTestCompiler(t).Compile("<script>let total = 10;</script>", core.Options{FilePath: "total.ack"})

	require.Empty(t, result.Errors)
	assert.NotEmpty(t, result.Code)
	require.NoError(t, bundle.Validate(result.Code))
}

func TestCompile_ScenarioD_Both(t *testing.T) {
	result := newTestCompiler(t).Compile(counterSource, core.Options{FilePath: "counter.ack", Format: core.FormatBoth})

	require.Empty(t, result.Errors)
	assert.Contains(t, result.Code, "export default function Counter")
	assert.Contains(t, result.Code, "module.exports = Counter")
	require.NoError(t, bundle.Validate(result.Code))
}

func TestCompile_ScenarioE_SSR(t *testing.T) {
	for _, format := range []core.Format{core.FormatESM, core.FormatCJS, core.FormatBoth} {
		t.Run(string(format), func(t *testing.T) {
			result := newTestCompiler(t).Compile(counterSource, core.Options{FilePath: "counter.ack", Format: format, SSR: true})

			require.Empty(t, result.Errors)
			assert.Contains(t, result.Code, "function hydrate(")
			assert.Contains(t, result.Code, "[data-ack-state]")
			assert.Contains(t, result.Code, "JSON.parse(")
			require.NoError(t, bundle.Validate(result.Code))
		})
	}
}

func TestCompile_EmptySource(t *testing.T) {
	result := newTestCompiler(t).Compile("", core.Options{})

	require.Empty(t, result.Errors)
	assert.NotEmpty(t, result.Code)
	assert.Contains(t, result.Code, "export default function Unknown(")
	require.NoError(t, bundle.Validate(result.Code))
}

func TestCompile_Styles(t *testing.T) {
	result := newTestCompiler(t).Compile(counterSource, core.Options{FilePath: "counter.ack"})

	require.Empty(t, result.Errors)
	assert.Equal(t, 1, strings.Count(result.Code, "const styles = "))
	assert.Contains(t, result.Code, `const scopedStyles = "h1[ack-fixed0001] { font-size: 2rem; }";`)
	assert.Contains(t, result.Code, `<h1 ack-fixed0001>`)
}

func TestCompile_CJS(t *testing.T) {
	result := newTestCompiler(t).Compile(counterSource, core.Options{FilePath: "counter.ack", Format: core.FormatCJS})

	require.Empty(t, result.Errors)
	assert.Contains(t, result.Code, "module.exports = Counter;")
	assert.NotContains(t, result.Code, "export default")
	require.NoError(t, bundle.Validate(result.Code))
}

func TestCompile_UnsupportedFormat(t *testing.T) {
	result := newTestCompiler(t).Compile(counterSource, core.Options{Format: "amd"})

	assert.Empty(t, result.Code)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "unsupported format")
	assert.Equal(t, counterSource, result.Errors[0].SourceSnippet)
}

func TestCompile_UnusedWarnings(t *testing.T) {
	source := "<template><p>{shown}</p></template>\n<script>\nlet shown = 1;\nlet spare = 2;\n</script>"
	result := newTestCompiler(t).Compile(source, core.Options{})

	require.Empty(t, result.Errors)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningUnusedVariable, result.Warnings[0].Code)
	assert.Contains(t, result.Warnings[0].Message, `"spare"`)
	assert.Equal(t, 4, result.Warnings[0].Line)
}

func TestCompile_RecoversPanics(t *testing.T) {
	c := New(Config{
		Logger:  testutil.NewTestLogger(t),
		ScopeID: func() string { panic("scope generator failed") },
	})

	var result core.CompileResult
	require.NotPanics(t, func() {
		result = c.Compile(counterSource, core.Options{})
	})

	assert.Empty(t, result.Code)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "scope generator failed")
	assert.Contains(t, result.Errors[0].Message, "parse")
	assert.Equal(t, 0, result.Errors[0].Line)
	assert.Equal(t, 0, result.Errors[0].Column)
	assert.Equal(t, counterSource, result.Errors[0].SourceSnippet)
}

func TestCompile_Concurrent(t *testing.T) {
	c := New(Config{Logger: testutil.NewTestLogger(t)})

	const workers = 16
	results := make([]core.CompileResult, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Compile(counterSource, core.Options{FilePath: fmt.Sprintf("c%d.ack", i)})
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		require.Empty(t, r.Errors, "worker %d", i)
		assert.Contains(t, r.Code, fmt.Sprintf("function C%d(", i))
	}
}

func TestCompile_PackageLevel(t *testing.T) {
	result := Compile("<script>let a = 1;</script><template>{a}</template>", core.Options{Name: "Widget"})
	require.Empty(t, result.Errors)
	assert.Contains(t, result.Code, "export default function Widget(")
}

func TestErrors(t *testing.T) {
	err := &StageError{Stage: StageGenerate, Err: ErrUnsupportedFormat}
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	assert.Equal(t, "generate: unsupported format", err.Error())

	assert.Equal(t, "Circular dependency detected", (&CircularDependencyError{}).Error())
}

func TestAnalyze(t *testing.T) {
	c := newTestCompiler(t)

	a, err := c.Analyze(counterSource, core.Options{FilePath: "counter.ack"})
	require.NoError(t, err)
	assert.Equal(t, "Counter", a.Model.Name)
	assert.Equal(t, []string{"count", "doubled"}, a.Graph.GetTopologicalOrder())
	assert.Equal(t, []string{"doubled"}, a.Graph.GetAffectedVariables("count"))
	assert.Empty(t, a.Warnings)

	_, err = c.Analyze("<script>let a = b; let b = a;</script>", core.Options{})
	var cycle *CircularDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a", "b", "a"}, cycle.Cycle)

	_, err = New(Config{ScopeID: func() string { panic("boom") }}).Analyze(counterSource, core.Options{})
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageParse, stageErr.Stage)
}

func TestCompile_EmitsValidJavaScript(t *testing.T) {
	scripts := []struct {
		name   string
		script string
	}{
		{"quote in regex literal", "let count = 0;\nconst strip = (s) => s.replace(/\"/g, '');\nfunction reset() { count = 5; }"},
		{"backtick in regex literal", "let count = 0;\nconst tick = /`/;\nfunction bump() { count += 1; }"},
		{"regex with class and flags", "let count = 0;\nlet valid = /^[a-z/\"]+$/i.test('a');"},
		{"forward reference between declarators", "var a = b, b = 2;\nlet count = a + b;"},
		{"multiple declarators", "let count = 0, step = 2, label;\nfunction next() { count += step; label = 'n'; }"},
		{"export list", "let count = 0;\nexport { count };"},
		{"export list with rename", "let count = 0;\nexport { count as total, count as default };"},
		{"re-export", "import { util } from './util.js';\nlet count = 0;\nexport * from './util.js';\nexport * as ns from './other.js';\nexport { a } from './a.js';"},
		{"export default expression", "let count = 0;\nexport default { count };"},
		{"export default function", "let count = 0;\nexport default function load() { count = 1; }"},
		{"export async function", "let count = 0;\nexport async function load() { count = await Promise.resolve(1); }"},
		{"export declarations", "export let count = 0;\nexport const step = 1;\nexport class Box {}"},
		{"division after operands", "let count = 10;\nlet half = count / 2;\nlet ratio = (count + 1) / half / 3;"},
	}
	formats := []core.Format{core.FormatESM, core.FormatCJS, core.FormatBoth}

	for _, sc := range scripts {
		source := "<script>\n" + sc.script + "\n</script>\n<template><p>{count}</p></template>"
		for _, format := range formats {
			for _, ssr := range []bool{false, true} {
				t.Run(fmt.Sprintf("%s/%s/ssr=%t", sc.name, format, ssr), func(t *testing.T) {
					result := newTestCompiler(t).Compile(source, core.Options{FilePath: "widget.ack", Format: format, SSR: ssr})

					require.Empty(t, result.Errors)
					assert.NoError(t, bundle.Validate(result.Code))
				})
			}
		}
	}
}

func TestCompile_RegexDoesNotHideReferences(t *testing.T) {
	source := "<script>\nlet a = 1;\nconst quote = /\"/g;\nlet b = a * 2;\n</script>\n<template><p>{b}</p></template>"
	c := newTestCompiler(t)

	result := c.Compile(source, core.Options{})
	require.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	require.NoError(t, bundle.Validate(result.Code))

	a, err := c.Analyze(source, core.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, a.Graph.GetAffectedVariables("a"))
}

func TestCompile_WarningLineWithRepeatedScriptText(t *testing.T) {
	script := "let spare = 2;"
	source := "<!--\n" + script + "\n-->\n<template><p>x</p></template>\n<script>\n" + script + "\n</script>"

	result := newTestCompiler(t).Compile(source, core.Options{})
	require.Empty(t, result.Errors)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 6, result.Warnings[0].Line)
}
