package core

// DependencyNode is a read-only snapshot of one reactive variable in the
// dependency graph.
type DependencyNode struct {
	Name string
	// Dependencies are the variables this one is computed from
	Dependencies []string
	// Dependents are the variables computed from this one
	Dependents []string
}
