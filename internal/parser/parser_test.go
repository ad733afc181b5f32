package parser

import (
	"testing"

	"github.com/acklang/ack/internal/testutil"
	"github.com/acklang/ack/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const todoSource = `<script>
import { format as fmt } from './util.js';

let todos = [];
let filter = 'all';
let visible = todos.filter((t) => filter === 'all' || t.state === filter);

function add(text) {
  todos = [...todos, { text, state: 'open' }];
}
</script>

<template>
  <ul>
    <li>{fmt(visible.length)} items</li>
  </ul>
  <button @click="add">Add</button>
</template>

<style>
  ul { list-style: none; }
</style>
`

func TestParse_Component(t *testing.T) {
	p := NewParser(
		WithScopeID(func() string { return "ack-abcdefghi" }),
		WithLogger(testutil.NewTestLogger(t)),
	)

	model := p.Parse(todoSource, core.Options{FilePath: "src/todoList.ack"})

	assert.Equal(t, "TodoList", model.Name)
	assert.Equal(t, "src/todoList.ack", model.FilePath)
	assert.Equal(t, todoSource, model.Source)

	assert.Equal(t, []string{"todos", "filter", "visible"}, model.Script.VariableNames())
	require.Len(t, model.Script.Imports, 1)
	assert.Equal(t, "./util.js", model.Script.Imports[0].Source)

	assert.Contains(t, model.Template.UsedVariables, "visible")
	require.Len(t, model.Template.Events, 1)
	assert.Equal(t, "click", model.Template.Events[0].EventName)

	assert.True(t, model.Style.Scoped)
	require.Len(t, model.Style.Rules, 1)
	assert.Equal(t, "ul[ack-abcdefghi]", model.Style.Rules[0].Selector)
}

func TestParse_ExplicitName(t *testing.T) {
	model := NewParser().Parse("<script>let a = 1;</script>", core.Options{Name: "Widget"})
	assert.Equal(t, "Widget", model.Name)
	assert.Equal(t, core.DefaultFilePath, model.FilePath)
}

func TestParse_ScriptOnly(t *testing.T) {
	model := NewParser().Parse("<script>let a = 1;</script>", core.Options{})
	assert.Empty(t, model.Template.Content)
	assert.NotNil(t, model.Template.AST)
	assert.Empty(t, model.Style.Rules)
	assert.False(t, model.HasStyles())
}

func TestParse_ScriptOffset(t *testing.T) {
	source := "<!-- let a = 1; -->\n<script>\n  let a = 1;\n</script>"
	model := NewParser().Parse(source, core.Options{})
	assert.Equal(t, "let a = 1;", model.Script.Content)
	assert.Equal(t, 31, model.Script.Offset)
	assert.Equal(t, model.Script.Content, source[model.Script.Offset:model.Script.Offset+len(model.Script.Content)])
}

func TestParse_GlobalStyle(t *testing.T) {
	model := NewParser().Parse("<style global>p { margin: 0 }</style>", core.Options{})
	assert.False(t, model.Style.Scoped)
	assert.Equal(t, "p", model.Style.Rules[0].Selector)
}
