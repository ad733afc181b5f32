package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/acklang/ack/internal/cli/output"
	"github.com/acklang/ack/internal/compiler"
	"github.com/acklang/ack/internal/dag"
	"github.com/spf13/cobra"
)

// graphVariable is one row of the graph command output.
type graphVariable struct {
	Name           string   `json:"name"`
	Level          int      `json:"level"`
	Initializer    string   `json:"initializer"`
	DependsOn      []string `json:"depends_on"`
	Affects        []string `json:"affects"`
	UsedInTemplate bool     `json:"used_in_template"`
}

// graphReport is the JSON form of the graph command output.
type graphReport struct {
	Component string          `json:"component"`
	Variables []graphVariable `json:"variables"`
	Levels    [][]string      `json:"levels"`
	Roots     []string        `json:"roots"`
	Leaves    []string        `json:"leaves"`
}

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	var focus string

	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Show the reactive dependency graph of a component",
		Long: `Display the dependency graph of a component's reactive variables.

Variables are grouped into levels: level 0 variables depend on no other
reactive variable, and each later level only depends on earlier ones. The
affects column lists every variable recomputed when that one changes.

With --focus only the named variable, everything it depends on and
everything it affects are shown.`,
		Example: `  # Show the graph
  ack graph src/Counter.ack

  # Only variables connected to count
  ack graph src/Counter.ack --focus count

  # Output as JSON
  ack graph src/Counter.ack -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, args[0], focus)
		},
	}

	cmd.Flags().StringVar(&focus, "focus", "", "Limit the graph to variables connected to this one")
	return cmd
}

func runGraph(cmd *cobra.Command, path, focus string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	source, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	analysis, err := cmdCtx.Compiler.Analyze(string(source), cmdCtx.Cfg.CompileOptions(abs))
	if err != nil {
		var cycle *compiler.CircularDependencyError
		if errors.As(err, &cycle) {
			return fmt.Errorf("%s: %w", path, cycle)
		}
		return err
	}

	graph := analysis.Graph
	if focus != "" {
		if _, ok := graph.GetNode(focus); !ok {
			return fmt.Errorf("no reactive variable %q in %s", focus, path)
		}
		keep := append([]string{focus}, graph.GetUpstream(focus)...)
		keep = append(keep, graph.GetAffectedVariables(focus)...)
		graph = graph.Subgraph(keep)
	}

	report, err := buildGraphReport(analysis.Model.Name, graph)
	if err != nil {
		return err
	}
	return renderGraph(cmdCtx.Renderer, report)
}

func buildGraphReport(component string, graph *dag.Graph) (*graphReport, error) {
	levels, err := graph.GetExecutionLevels()
	if err != nil {
		return nil, err
	}
	levelOf := make(map[string]int)
	for i, level := range levels {
		for _, name := range level {
			levelOf[name] = i
		}
	}

	report := &graphReport{
		Component: component,
		Levels:    levels,
		Roots:     orEmpty(graph.GetRoots()),
		Leaves:    orEmpty(graph.GetLeaves()),
	}
	for _, id := range graph.GetTopologicalOrder() {
		node, _ := graph.GetNode(id)
		report.Variables = append(report.Variables, graphVariable{
			Name:           id,
			Level:          levelOf[id],
			Initializer:    node.Variable.InitialValue,
			DependsOn:      orEmpty(graph.GetDependencies(id)),
			Affects:        orEmpty(graph.GetAffectedVariables(id)),
			UsedInTemplate: node.Variable.UsedInTemplate,
		})
	}
	return report, nil
}

func renderGraph(r *output.Renderer, report *graphReport) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(report)
	}

	r.Header(1, "Dependency Graph: "+report.Component)
	if len(report.Variables) == 0 {
		r.Println("No reactive variables.")
		return nil
	}

	rows := make([][]string, 0, len(report.Variables))
	for _, v := range report.Variables {
		rows = append(rows, []string{
			v.Name,
			strconv.Itoa(v.Level),
			v.Initializer,
			joinOrDash(v.DependsOn),
			joinOrDash(v.Affects),
		})
	}
	r.Table([]string{"Variable", "Level", "Initializer", "Depends on", "Affects"}, rows)
	r.Println("")
	r.Printf("Total: %d variables, %d levels\n", len(report.Variables), len(report.Levels))
	return nil
}

func joinOrDash(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
