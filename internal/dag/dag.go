// Package dag provides the dependency graph of a component's reactive
// variables. An edge runs from a variable to every variable whose
// initializer reads it, so walking edges forward yields what must be
// recomputed after a change.
//
// A Graph is built fresh from a variable snapshot with BuildFromVariables
// and is never shared between compiles.
package dag

import (
	"fmt"
	"sort"

	"github.com/acklang/ack/pkg/core"
)

// Node represents a node in the graph.
type Node struct {
	// ID is the variable name
	ID string
	// Variable is the variable the node was built from
	Variable core.ReactiveVariable
}

// Graph represents a directed graph of reactive variables.
type Graph struct {
	order   []string // insertion order
	nodes   map[string]*Node
	edges   map[string][]string // dependency -> dependents
	parents map[string][]string // variable -> dependencies
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// BuildFromVariables creates a graph from vars.
func BuildFromVariables(vars []core.ReactiveVariable) *Graph {
	g := NewGraph()
	g.BuildFromVariables(vars)
	return g
}

// BuildFromVariables resets the graph and adds one node per variable and
// one edge per declared dependency. Dependencies on undeclared names and
// on the variable itself are ignored.
func (g *Graph) BuildFromVariables(vars []core.ReactiveVariable) {
	g.Clear()
	for _, v := range vars {
		g.AddNode(v.Name, v)
	}
	for _, v := range vars {
		for _, dep := range v.Dependencies {
			_ = g.AddEdge(dep, v.Name)
		}
	}
}

// Clear removes all nodes and edges from the graph.
func (g *Graph) Clear() {
	g.order = nil
	g.nodes = make(map[string]*Node)
	g.edges = make(map[string][]string)
	g.parents = make(map[string][]string)
}

// AddNode adds a node to the graph. Adding an existing ID replaces its
// variable but keeps its edges and position.
func (g *Graph) AddNode(id string, v core.ReactiveVariable) {
	if node, exists := g.nodes[id]; exists {
		node.Variable = v
		return
	}
	g.nodes[id] = &Node{ID: id, Variable: v}
	g.edges[id] = []string{}
	g.parents[id] = []string{}
	g.order = append(g.order, id)
}

// AddEdge adds a directed edge from dependency to dependent.
func (g *Graph) AddEdge(dependencyID, dependentID string) error {
	if _, exists := g.nodes[dependencyID]; !exists {
		return fmt.Errorf("dependency node %q does not exist", dependencyID)
	}
	if _, exists := g.nodes[dependentID]; !exists {
		return fmt.Errorf("dependent node %q does not exist", dependentID)
	}
	if dependencyID == dependentID {
		return fmt.Errorf("self-loop detected: %s", dependencyID)
	}

	if !contains(g.edges[dependencyID], dependentID) {
		g.edges[dependencyID] = append(g.edges[dependencyID], dependentID)
	}
	if !contains(g.parents[dependentID], dependencyID) {
		g.parents[dependentID] = append(g.parents[dependentID], dependencyID)
	}

	return nil
}

// GetNode returns a node by ID.
func (g *Graph) GetNode(id string) (*Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// Node returns the dependency view of one variable.
func (g *Graph) Node(id string) (core.DependencyNode, bool) {
	if _, exists := g.nodes[id]; !exists {
		return core.DependencyNode{}, false
	}
	return core.DependencyNode{
		Name:         id,
		Dependencies: append([]string{}, g.parents[id]...),
		Dependents:   append([]string{}, g.edges[id]...),
	}, true
}

// Nodes returns the dependency view of every variable in insertion order.
func (g *Graph) Nodes() []core.DependencyNode {
	nodes := make([]core.DependencyNode, 0, len(g.order))
	for _, id := range g.order {
		node, _ := g.Node(id)
		nodes = append(nodes, node)
	}
	return nodes
}

// GetDependencies returns the direct dependencies of a node.
func (g *Graph) GetDependencies(id string) []string {
	return g.parents[id]
}

// GetDependents returns the direct dependents of a node.
func (g *Graph) GetDependents(id string) []string {
	return g.edges[id]
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.edges {
		count += len(children)
	}
	return count
}

// HasCycle returns true if the graph contains a cycle, along with the cycle
// path. The path starts and ends at the same node.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string)

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		recStack[id] = true

		for _, childID := range g.edges[id] {
			if !visited[childID] {
				path[childID] = id
				if dfs(childID) {
					return true
				}
			} else if recStack[childID] {
				cyclePath = []string{childID}
				for curr := id; curr != childID; curr = path[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{childID}, cyclePath...)
				return true
			}
		}

		recStack[id] = false
		return false
	}

	for _, id := range g.order {
		if !visited[id] {
			if dfs(id) {
				return true, cyclePath
			}
		}
	}

	return false, nil
}

// HasCyclicDependency reports whether any variable transitively depends on
// itself.
func (g *Graph) HasCyclicDependency() bool {
	hasCycle, _ := g.HasCycle()
	return hasCycle
}

// CyclePath returns one cycle in the graph, or nil if there is none.
func (g *Graph) CyclePath() []string {
	_, path := g.HasCycle()
	return path
}

// GetTopologicalOrder returns variable names with dependencies before
// dependents, visiting roots in insertion order. It does not check for
// cycles: on a cyclic graph the result contains every node but is not a
// valid order.
func (g *Graph) GetTopologicalOrder() []string {
	visited := make(map[string]bool)
	result := make([]string, 0, len(g.order))

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true

		for _, parentID := range g.parents[id] {
			visit(parentID)
		}

		result = append(result, id)
	}

	for _, id := range g.order {
		visit(id)
	}

	return result
}

// TopologicalSort returns nodes in topological order (dependencies before
// dependents). Returns an error if the graph contains a cycle.
func (g *Graph) TopologicalSort() ([]*Node, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %v", cyclePath)
	}

	ids := g.GetTopologicalOrder()
	result := make([]*Node, 0, len(ids))
	for _, id := range ids {
		result = append(result, g.nodes[id])
	}
	return result, nil
}

// IsValidTopologicalOrder reports whether order contains every node once
// and places each node after all of its dependencies.
func (g *Graph) IsValidTopologicalOrder(order []string) bool {
	if len(order) != len(g.nodes) {
		return false
	}

	position := make(map[string]int, len(order))
	for i, id := range order {
		if _, exists := g.nodes[id]; !exists {
			return false
		}
		if _, dup := position[id]; dup {
			return false
		}
		position[id] = i
	}

	for id, deps := range g.parents {
		for _, dep := range deps {
			if position[dep] >= position[id] {
				return false
			}
		}
	}
	return true
}

// GetAffectedVariables returns every variable that transitively depends on
// name, in breadth-first discovery order. Each name appears once and name
// itself is never included.
func (g *Graph) GetAffectedVariables(name string) []string {
	if _, exists := g.nodes[name]; !exists {
		return nil
	}

	affected := []string{}
	visited := map[string]bool{name: true}
	queue := []string{name}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		for _, childID := range g.edges[id] {
			if visited[childID] {
				continue
			}
			visited[childID] = true
			affected = append(affected, childID)
			queue = append(queue, childID)
		}
	}

	return affected
}

// GetExecutionLevels returns nodes grouped by level.
// Nodes at level N depend only on nodes of lower levels.
// Level 0 contains nodes with no dependencies.
func (g *Graph) GetExecutionLevels() ([][]string, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %v", cyclePath)
	}

	levels := [][]string{}
	assigned := make(map[string]int)

	var getLevel func(id string) int
	getLevel = func(id string) int {
		if level, ok := assigned[id]; ok {
			return level
		}

		parents := g.parents[id]
		if len(parents) == 0 {
			assigned[id] = 0
			return 0
		}

		maxParentLevel := 0
		for _, parentID := range parents {
			parentLevel := getLevel(parentID)
			if parentLevel > maxParentLevel {
				maxParentLevel = parentLevel
			}
		}

		level := maxParentLevel + 1
		assigned[id] = level
		return level
	}

	maxLevel := -1
	for _, id := range g.order {
		if level := getLevel(id); level > maxLevel {
			maxLevel = level
		}
	}

	for i := 0; i <= maxLevel; i++ {
		levels = append(levels, []string{})
	}
	for id, level := range assigned {
		levels[level] = append(levels[level], id)
	}

	for i := range levels {
		sort.Strings(levels[i])
	}

	return levels, nil
}

// GetUpstream returns every variable name transitively depends on.
func (g *Graph) GetUpstream(name string) []string {
	upstream := make(map[string]bool)

	var markUpstream func(nodeID string)
	markUpstream = func(nodeID string) {
		for _, parentID := range g.parents[nodeID] {
			if !upstream[parentID] {
				upstream[parentID] = true
				markUpstream(parentID)
			}
		}
	}

	markUpstream(name)
	delete(upstream, name)

	result := make([]string, 0, len(upstream))
	for nodeID := range upstream {
		result = append(result, nodeID)
	}
	sort.Strings(result)
	return result
}

// GetRoots returns variables with no dependencies.
func (g *Graph) GetRoots() []string {
	var roots []string
	for id := range g.nodes {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// GetLeaves returns variables nothing depends on.
func (g *Graph) GetLeaves() []string {
	var leaves []string
	for id := range g.nodes {
		if len(g.edges[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// Subgraph returns a new graph containing only the specified nodes and
// the edges between them.
func (g *Graph) Subgraph(nodeIDs []string) *Graph {
	subgraph := NewGraph()
	nodeSet := make(map[string]bool)

	for _, id := range g.order {
		if contains(nodeIDs, id) {
			nodeSet[id] = true
			subgraph.AddNode(id, g.nodes[id].Variable)
		}
	}

	for _, id := range subgraph.order {
		for _, childID := range g.edges[id] {
			if nodeSet[childID] {
				_ = subgraph.AddEdge(id, childID)
			}
		}
	}

	return subgraph
}

// contains checks if a slice contains a string.
func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
