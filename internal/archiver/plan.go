package archiver

import (
	"fmt"
	"strings"
)

// PlannedStep is one recursion level recorded while Archive runs in debug
// mode: no rows are deleted or mirrored, but the traversal that would have
// happened is recorded step by step.
type PlannedStep struct {
	Table       string
	ParentTable string
	FKColumn    string
	Depth       int
	RowCount    int
	Self        bool // true for the table's own archive_by_ids pass
}

// Planner accumulates PlannedSteps across the debug-mode Archive calls of
// one Archiver,
// replacing the teacher's Estimator/DisplayExecutionPlan pre-run estimate
// with a trace of the recursion actually taken.
type Planner struct {
	steps []PlannedStep
}

// NewPlanner returns an empty Planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// Record appends step to the plan.
func (p *Planner) Record(step PlannedStep) {
	p.steps = append(p.steps, step)
}

// Steps returns every step recorded so far, in recursion order.
func (p *Planner) Steps() []PlannedStep {
	return p.steps
}

// Render formats the recorded steps as an indented execution plan,
// adapted from the teacher's DisplayExecutionPlan table listing.
func (p *Planner) Render() string {
	var b strings.Builder
	b.WriteString("=== Archive Plan (dry run) ===\n\n")

	for _, step := range p.steps {
		indent := strings.Repeat("  ", step.Depth)
		if step.Self {
			fmt.Fprintf(&b, "%s%s: archive_by_ids (~%d rows)\n", indent, step.Table, step.RowCount)
			continue
		}
		fmt.Fprintf(&b, "%s%s <- %s.%s (~%d rows)\n", indent, step.Table, step.ParentTable, step.FKColumn, step.RowCount)
	}

	b.WriteString("\n=== End of Plan ===\nNo data was modified.\n")
	return b.String()
}
