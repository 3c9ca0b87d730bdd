package scene

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"go.viam.com/wbc/referenceframe"
)

// StatusTable renders a constraint status snapshot as a human-readable table, grounded in the
// String() diagnostic convention used elsewhere in the corpus for worldstate-style dumps.
func StatusTable(status *referenceframe.NamedVector[ConstraintStatus]) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"constraint", "activation", "stale", "age (ms)", "y_ref", "y_solution"})
	for _, s := range status.Values {
		age := float64(s.TimeSinceNanos) / 1e6
		t.AppendRow(table.Row{
			s.Name,
			fmt.Sprintf("%.2f", s.Activation),
			s.Stale,
			fmt.Sprintf("%.1f", age),
			formatFloats(s.YRef),
			formatFloats(s.YSolution),
		})
	}
	return t.Render()
}

func formatFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%.4f", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
