package codegen

import (
	"testing"

	"github.com/acklang/ack/internal/bundle"
	"github.com/acklang/ack/internal/dag"
	"github.com/acklang/ack/internal/parser"
	"github.com/acklang/ack/internal/reactivity"
	"github.com/acklang/ack/pkg/core"
	"github.com/stretchr/testify/require"
)

const testScope = "ack-test00001"

const counterSource = `<script>
import { format as fmt } from './format.js';
import Icon from './Icon.ack';

let count = 0;
let doubled = count * 2;
let label = fmt(doubled);

function increment() {
  count += 1;
}
</script>

<template>
  <div class="counter" title={label}>
    <h1>Count: {count}</h1>
    <p>Doubled: {doubled}</p>
    <button @click="increment">+</button>
    <button @click="count = 0">reset</button>
  </div>
</template>

<style>
  h1 { color: red; }
</style>
`

// buildModel parses and analyzes source the way the compiler does.
func buildModel(t *testing.T, source, path string) (*core.ComponentModel, *dag.Graph) {
	t.Helper()
	p := parser.NewParser(parser.WithScopeID(func() string { return testScope }))
	model := p.Parse(source, core.Options{FilePath: path})

	analyzer := reactivity.NewAnalyzer(model.Script.Content,
		reactivity.WithTemplateVariables(model.Template.UsedVariables))
	model.Script.ReactiveVariables = analyzer.Analyze(model.Script.ReactiveVariables)
	return model, dag.BuildFromVariables(model.Script.ReactiveVariables)
}

func requireValidJS(t *testing.T, code string) {
	t.Helper()
	require.NoError(t, bundle.Validate(code), "generated code:\n%s", code)
}
