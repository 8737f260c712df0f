package solve

import (
	"math"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/foundryworks/production-planner/internal/planner/cost"
	"github.com/foundryworks/production-planner/internal/planner/lp"
	"github.com/foundryworks/production-planner/pkg/planner"
)

type diagnoseContext struct {
	problem    *lp.Problem
	arena      *planner.Arena
	costAn     *cost.Analysis
	rows       []int
	links      []int
	rowVars    map[int]*lp.Var
	linkCtrs   map[int]*lp.Constraint
	rowOutputs map[int][]int
	origStatus lp.Status
}

// diagnose implements spec.md §4.3's infeasibility diagnosis: a
// directed graph of links-as-nodes connecting each row's
// ingredient/fuel link to each of its product/spent-fuel links, a
// strongly-connected-component pass to find deadlock candidates, a
// slack re-solve, and — if that still fails — a textual verdict.
//
// Open Question (spec.md §9): gonum's topo.TarjanSCC does not itself
// define a canonical "last node in topological-within-component
// order." This implementation adopts the convention that the slice
// TarjanSCC returns for a component is already in DFS-finish order
// (gonum's documented behavior), and treats its final element as the
// "last" node; a node has a chord if one of its out-edges lands on a
// component member other than its immediate successor in that slice.
func diagnose(dc diagnoseContext) (*Result, error) {
	deadlocks, splits := scanSCCs(dc)

	if len(deadlocks) == 0 && len(splits) == 0 {
		return verdict(dc.origStatus), nil
	}

	type slackPair struct {
		pos, neg *lp.Var
	}
	slacks := make(map[int]slackPair, len(deadlocks)+len(splits))

	for _, linkIdx := range deadlocks {
		link := &dc.arena.Links[linkIdx]
		w := math.Abs(dc.costAn.Cost(link.Goods))
		if math.IsInf(w, 1) || math.IsNaN(w) {
			w = 1e6
		}
		neg := dc.problem.MakeVar(0, lp.Inf)
		dc.linkCtrs[linkIdx].AddCoefficient(neg, w)
		dc.problem.AddObjective(neg, 1)
		sp := slacks[linkIdx]
		sp.neg = neg
		slacks[linkIdx] = sp
	}

	for _, linkIdx := range splits {
		link := &dc.arena.Links[linkIdx]
		w := math.Abs(dc.costAn.Cost(link.Goods))
		if math.IsInf(w, 1) || math.IsNaN(w) {
			w = 1e6
		}
		pos := dc.problem.MakeVar(0, lp.Inf)
		dc.linkCtrs[linkIdx].AddCoefficient(pos, -w)
		dc.problem.AddObjective(pos, 1)
		sp := slacks[linkIdx]
		sp.pos = pos
		slacks[linkIdx] = sp
	}

	status := dc.problem.SolveWithDifferentSeeds()
	if status != lp.StatusOptimal && status != lp.StatusFeasible {
		return verdict(status), nil
	}

	for linkIdx, sp := range slacks {
		var posVal, negVal float64
		if sp.pos != nil {
			posVal = sp.pos.SolutionValue()
		}
		if sp.neg != nil {
			negVal = sp.neg.SolutionValue()
		}
		notMatched := posVal - negVal
		if math.Abs(notMatched) < 1e-9 {
			continue
		}
		link := &dc.arena.Links[linkIdx]
		link.NotMatchedFlow = notMatched
		link.Flags |= planner.LinkNotMatched | planner.LinkRecursiveNotMatched
		propagate(dc.arena, link.Owner, notMatched)
		flagRowsUsingLink(dc, linkIdx)
	}

	applySolution(dc.arena, dc.rows, dc.rowVars, dc.links, dc.linkCtrs)
	res := &Result{OK: true, Message: "production table solved with unmatched links"}
	return res, nil
}

func verdict(status lp.Status) *Result {
	switch status {
	case lp.StatusInfeasible:
		return &Result{OK: false, Message: "failed to solve production table: deadlock loops"}
	case lp.StatusAbnormal:
		return &Result{OK: false, Message: "failed to solve production table: numerical errors"}
	default:
		return &Result{OK: false, Message: "Unaccounted error: MODEL_" + status.String()}
	}
}

// propagate ORs OverproductionRequired (notMatched > 0) or
// DeadlockCandidate (notMatched < 0) up the ownership chain from a
// ProductionTable, per spec.md §4.3.
func propagate(arena *planner.Arena, tableIdx int, notMatched float64) {
	for {
		rowIdx, ok := arena.OwningRow(tableIdx)
		if !ok {
			return
		}
		row := &arena.Rows[rowIdx]
		if notMatched > 0 {
			row.WarningFlags |= planner.WarningOverproductionRequired
		} else {
			row.WarningFlags |= planner.WarningDeadlockCandidate
		}
		tableIdx = row.OwnerTable
	}
}

func flagRowsUsingLink(dc diagnoseContext, linkIdx int) {
	for rowIdx, outputs := range dc.rowOutputs {
		for _, l := range outputs {
			if l == linkIdx {
				dc.arena.Rows[rowIdx].WarningFlags |= planner.WarningDeadlockCandidate
			}
		}
	}
}

// scanSCCs builds the link-dependency graph and returns deadlock and
// split candidates per spec.md §4.3.
func scanSCCs(dc diagnoseContext) (deadlocks, splits []int) {
	g := simple.NewDirectedGraph()
	for _, linkIdx := range dc.links {
		g.AddNode(simple.Node(linkIdx))
	}

	for _, rowIdx := range dc.rows {
		row := &dc.arena.Rows[rowIdx]
		var inputs, outputs []int
		for _, l := range row.Links.Ingredients {
			inputs = append(inputs, l)
		}
		if row.Links.Fuel >= 0 {
			inputs = append(inputs, row.Links.Fuel)
		}
		for _, l := range row.Links.Products {
			outputs = append(outputs, l)
		}
		if row.Links.SpentFuel >= 0 {
			outputs = append(outputs, row.Links.SpentFuel)
		}
		if len(outputs) > 1 {
			splits = append(splits, outputs...)
		}
		for _, in := range inputs {
			for _, out := range outputs {
				if in == out {
					continue
				}
				if !g.HasEdgeFromTo(int64(in), int64(out)) {
					g.SetEdge(g.NewEdge(simple.Node(in), simple.Node(out)))
				}
			}
		}
	}

	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		order := make([]int64, len(scc))
		pos := make(map[int64]int, len(scc))
		for i, n := range scc {
			order[i] = n.ID()
			pos[n.ID()] = i
		}
		deadlocks = append(deadlocks, int(order[len(order)-1]))
		for i, n := range scc {
			to := g.From(n.ID())
			for to.Next() {
				targetID := to.Node().ID()
				j, inComponent := pos[targetID]
				if !inComponent {
					continue
				}
				if j != (i+1)%len(order) {
					deadlocks = append(deadlocks, int(targetID))
				}
			}
		}
	}

	return dedupe(deadlocks), dedupe(splits)
}

func dedupe(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
