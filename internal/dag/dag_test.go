package dag

import (
	"reflect"
	"strings"
	"testing"

	"github.com/acklang/ack/pkg/core"
)

// vars builds variables from "name:dep1,dep2" descriptors.
func vars(descs ...string) []core.ReactiveVariable {
	out := make([]core.ReactiveVariable, 0, len(descs))
	for _, d := range descs {
		name, deps, _ := strings.Cut(d, ":")
		v := core.ReactiveVariable{Name: name}
		if deps != "" {
			v.Dependencies = strings.Split(deps, ",")
		}
		out = append(out, v)
	}
	return out
}

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := NewGraph()

	g.AddNode("a", core.ReactiveVariable{Name: "a"})
	g.AddNode("b", core.ReactiveVariable{Name: "b"})
	g.AddNode("c", core.ReactiveVariable{Name: "c"})

	if g.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.NodeCount())
	}

	// b depends on a
	if err := g.AddEdge("a", "b"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}
	// c depends on b
	if err := g.AddEdge("b", "c"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}
	// duplicate is ignored
	if err := g.AddEdge("b", "c"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}

	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", g.EdgeCount())
	}
}

func TestGraph_AddEdge_InvalidNodes(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", core.ReactiveVariable{})

	if err := g.AddEdge("a", "nonexistent"); err == nil {
		t.Error("expected error for nonexistent dependent")
	}
	if err := g.AddEdge("nonexistent", "a"); err == nil {
		t.Error("expected error for nonexistent dependency")
	}
	if err := g.AddEdge("a", "a"); err == nil {
		t.Error("expected error for self-loop")
	}
}

func TestBuildFromVariables(t *testing.T) {
	g := BuildFromVariables(vars("a", "b:a", "c:a,b", "d:missing,d"))

	want := []core.DependencyNode{
		{Name: "a", Dependencies: []string{}, Dependents: []string{"b", "c"}},
		{Name: "b", Dependencies: []string{"a"}, Dependents: []string{"c"}},
		{Name: "c", Dependencies: []string{"a", "b"}, Dependents: []string{}},
		{Name: "d", Dependencies: []string{}, Dependents: []string{}},
	}
	if got := g.Nodes(); !reflect.DeepEqual(got, want) {
		t.Errorf("Nodes() = %+v, want %+v", got, want)
	}

	node, ok := g.Node("b")
	if !ok || node.Name != "b" {
		t.Errorf("Node(b) = %+v, %v", node, ok)
	}
	if _, ok := g.Node("zzz"); ok {
		t.Error("expected unknown node to be absent")
	}
}

func TestBuildFromVariables_Resets(t *testing.T) {
	g := BuildFromVariables(vars("a", "b:a"))
	g.BuildFromVariables(vars("x"))

	if g.NodeCount() != 1 || g.EdgeCount() != 0 {
		t.Errorf("expected rebuilt graph with 1 node, got %d nodes %d edges", g.NodeCount(), g.EdgeCount())
	}
	if _, ok := g.GetNode("a"); ok {
		t.Error("expected old nodes to be removed")
	}
}

func TestGraph_HasCycle(t *testing.T) {
	g := BuildFromVariables(vars("a", "b:a", "c:b"))
	if hasCycle, path := g.HasCycle(); hasCycle {
		t.Errorf("expected no cycle, but found: %v", path)
	}
	if g.HasCyclicDependency() {
		t.Error("HasCyclicDependency() = true for acyclic graph")
	}

	g = BuildFromVariables(vars("a:c", "b:a", "c:b"))
	hasCycle, path := g.HasCycle()
	if !hasCycle {
		t.Fatal("expected cycle to be detected")
	}
	if len(path) != 4 || path[0] != path[len(path)-1] {
		t.Errorf("expected closed cycle path of 4 entries, got %v", path)
	}
	if !g.HasCyclicDependency() {
		t.Error("HasCyclicDependency() = false for cyclic graph")
	}
	if g.CyclePath() == nil {
		t.Error("expected cycle path")
	}
}

func TestGraph_GetTopologicalOrder(t *testing.T) {
	// declared out of dependency order
	g := BuildFromVariables(vars("total:price,qty", "price", "qty", "label:total"))

	order := g.GetTopologicalOrder()
	want := []string{"price", "qty", "total", "label"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("GetTopologicalOrder() = %v, want %v", order, want)
	}
	if !g.IsValidTopologicalOrder(order) {
		t.Error("expected order to be valid")
	}
}

func TestGraph_GetTopologicalOrder_Cycle(t *testing.T) {
	g := BuildFromVariables(vars("a:b", "b:a"))

	order := g.GetTopologicalOrder()
	if len(order) != 2 {
		t.Errorf("expected every node once, got %v", order)
	}
	if g.IsValidTopologicalOrder(order) {
		t.Error("cyclic order must not validate")
	}
	if _, err := g.TopologicalSort(); err == nil {
		t.Error("expected error for cyclic graph")
	}
}

func TestGraph_IsValidTopologicalOrder(t *testing.T) {
	g := BuildFromVariables(vars("a", "b:a", "c:b"))

	tests := []struct {
		order []string
		want  bool
	}{
		{[]string{"a", "b", "c"}, true},
		{[]string{"b", "a", "c"}, false},
		{[]string{"a", "b"}, false},
		{[]string{"a", "b", "b"}, false},
		{[]string{"a", "b", "x"}, false},
	}

	for _, tt := range tests {
		if got := g.IsValidTopologicalOrder(tt.order); got != tt.want {
			t.Errorf("IsValidTopologicalOrder(%v) = %v, want %v", tt.order, got, tt.want)
		}
	}
}

func TestGraph_GetAffectedVariables(t *testing.T) {
	// diamond: b and c read a, d reads both
	g := BuildFromVariables(vars("a", "b:a", "c:a", "d:b,c", "e"))

	tests := []struct {
		name string
		want []string
	}{
		{"a", []string{"b", "c", "d"}},
		{"b", []string{"d"}},
		{"d", []string{}},
		{"e", []string{}},
		{"missing", nil},
	}

	for _, tt := range tests {
		got := g.GetAffectedVariables(tt.name)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("GetAffectedVariables(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestGraph_GetAffectedVariables_Cycle(t *testing.T) {
	g := BuildFromVariables(vars("a:b", "b:a"))
	if got := g.GetAffectedVariables("a"); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("GetAffectedVariables(a) = %v, want [b]", got)
	}
}

func TestGraph_GetExecutionLevels(t *testing.T) {
	g := BuildFromVariables(vars("raw1", "raw2", "sum:raw1,raw2", "avg:sum", "label:avg,raw1"))

	levels, err := g.GetExecutionLevels()
	if err != nil {
		t.Fatalf("failed to get levels: %v", err)
	}

	want := [][]string{{"raw1", "raw2"}, {"sum"}, {"avg"}, {"label"}}
	if !reflect.DeepEqual(levels, want) {
		t.Errorf("GetExecutionLevels() = %v, want %v", levels, want)
	}

	empty, err := NewGraph().GetExecutionLevels()
	if err != nil || len(empty) != 0 {
		t.Errorf("expected no levels for empty graph, got %v, %v", empty, err)
	}
}

func TestGraph_GetUpstream(t *testing.T) {
	g := BuildFromVariables(vars("a", "b:a", "c:b", "d"))

	if got := g.GetUpstream("c"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("GetUpstream(c) = %v", got)
	}
	if got := g.GetUpstream("a"); len(got) != 0 {
		t.Errorf("GetUpstream(a) = %v, want empty", got)
	}
}

func TestGraph_RootsAndLeaves(t *testing.T) {
	g := BuildFromVariables(vars("a", "b:a", "c:b", "d"))

	if got := g.GetRoots(); !reflect.DeepEqual(got, []string{"a", "d"}) {
		t.Errorf("GetRoots() = %v", got)
	}
	if got := g.GetLeaves(); !reflect.DeepEqual(got, []string{"c", "d"}) {
		t.Errorf("GetLeaves() = %v", got)
	}
}

func TestGraph_Subgraph(t *testing.T) {
	g := BuildFromVariables(vars("a", "b:a", "c:b", "d:c"))

	sub := g.Subgraph([]string{"b", "c", "zzz"})
	if sub.NodeCount() != 2 {
		t.Errorf("expected 2 nodes, got %d", sub.NodeCount())
	}
	if sub.EdgeCount() != 1 {
		t.Errorf("expected 1 edge, got %d", sub.EdgeCount())
	}
	if got := sub.GetDependents("b"); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("GetDependents(b) = %v", got)
	}
}
