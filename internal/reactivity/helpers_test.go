package reactivity

import (
	"fmt"

	"github.com/acklang/ack/pkg/core"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
)

func edgeGen(n int) gopter.Gen {
	return gopter.CombineGens(gen.IntRange(0, n-1), gen.IntRange(0, n-1)).
		Map(func(vals []interface{}) [2]int {
			return [2]int{vals[0].(int), vals[1].(int)}
		})
}

// variablesFromEdges builds n variables v0..vn-1 where edge {i, j} makes
// vi depend on vj. Self edges are dropped.
func variablesFromEdges(n int, edges [][2]int) []core.ReactiveVariable {
	vars := make([]core.ReactiveVariable, n)
	for i := range vars {
		vars[i].Name = fmt.Sprintf("v%d", i)
	}
	seen := make(map[[2]int]bool)
	for _, e := range edges {
		if e[0] == e[1] || seen[e] {
			continue
		}
		seen[e] = true
		vars[e[0]].Dependencies = append(vars[e[0]].Dependencies, vars[e[1]].Name)
	}
	return vars
}

func selfReachable(vars []core.ReactiveVariable) bool {
	deps := make(map[string][]string)
	for _, v := range vars {
		deps[v.Name] = v.Dependencies
	}
	for _, v := range vars {
		stack := append([]string(nil), deps[v.Name]...)
		seen := make(map[string]bool)
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if n == v.Name {
				return true
			}
			if seen[n] {
				continue
			}
			seen[n] = true
			stack = append(stack, deps[n]...)
		}
	}
	return false
}
