package lp

import "fmt"

// Problem is a single LP instance: variables, range constraints, and
// an objective. Scoped to one solve, per spec.md §5 ("LP solver
// instances and their variables/constraints are scoped to one
// solve... must be released on every exit path"); callers simply let
// a Problem go out of scope when done, there being no native handles
// to release in a pure-Go solver.
type Problem struct {
	vars        []*Var
	constraints []*Constraint
	maximize    bool

	lastStatus Status
}

// NewProblem creates an empty LP, defaulting to minimize (the
// Production Table Solver's objective direction; Cost Analysis calls
// SetMaximize explicitly).
func NewProblem() *Problem {
	return &Problem{}
}

// MakeVar allocates a decision variable with bounds [lb, ub]. Use
// lp.Inf / -lp.Inf for an unbounded side.
func (p *Problem) MakeVar(lb, ub float64) *Var {
	v := &Var{problem: p, index: len(p.vars), lb: lb, ub: ub}
	p.vars = append(p.vars, v)
	return v
}

// MakeConstraint allocates a range constraint with bounds [lb, ub] on
// the yet-to-be-specified linear combination of variables.
func (p *Problem) MakeConstraint(lb, ub float64) *Constraint {
	c := &Constraint{problem: p, index: len(p.constraints), lb: lb, ub: ub, coef: map[int]float64{}}
	p.constraints = append(p.constraints, c)
	return c
}

// SetCoefficient sets (overwrites) the coefficient of v in c.
func (c *Constraint) SetCoefficient(v *Var, coef float64) {
	c.coef[v.index] = coef
}

// AddCoefficient accumulates onto any existing coefficient of v in c.
// This is the "same variable seen twice" fast path named in spec.md
// §9: callers that may resolve the same row/link pair more than once
// per wiring pass should call this instead of SetCoefficient.
func (c *Constraint) AddCoefficient(v *Var, coef float64) {
	c.coef[v.index] += coef
}

// GetCoefficient returns the coefficient of v in c, 0 if never set.
func (c *Constraint) GetCoefficient(v *Var) float64 {
	return c.coef[v.index]
}

// Coefficients returns every variable with a non-zero coefficient in
// c, keyed by the Var handle itself. Used by callers (e.g. the
// Production Table Solver's infeasibility diagnosis) that need to
// clone a constraint's linear combination onto a new, relaxed one.
func (c *Constraint) Coefficients() map[*Var]float64 {
	out := make(map[*Var]float64, len(c.coef))
	for idx, coef := range c.coef {
		out[c.problem.vars[idx]] = coef
	}
	return out
}

// SetObjective sets (overwrites) v's objective coefficient.
func (p *Problem) SetObjective(v *Var, coef float64) {
	v.objCoef = coef
}

// AddObjective accumulates onto v's existing objective coefficient,
// mirroring Constraint.AddCoefficient's accumulate semantics.
func (p *Problem) AddObjective(v *Var, coef float64) {
	v.objCoef += coef
}

func (p *Problem) SetMaximize() { p.maximize = true }
func (p *Problem) SetMinimize() { p.maximize = false }

// Solve runs the simplex engine once and records per-variable and
// per-constraint solution data on success.
func (p *Problem) Solve() Status {
	status, sol := solve(p)
	p.lastStatus = status
	if status == StatusOptimal || status == StatusFeasible {
		sol.apply(p)
	}
	return status
}

// SolveWithDifferentSeeds re-solves with a small number of deterministic
// pivot tie-break orders and keeps the first one to reach OPTIMAL,
// falling back to the best (lowest-status-ordinal) result seen. The
// underlying engine is itself deterministic, so this mainly guards
// against a degenerate tie-break picking a needlessly non-canonical
// optimal basis; see spec.md §6.
func (p *Problem) SolveWithDifferentSeeds() Status {
	var best Status = StatusAbnormal
	var bestSol *solution

	for seed := 0; seed < 3; seed++ {
		status, sol := solveWithSeed(p, seed)
		if status == StatusOptimal {
			sol.apply(p)
			p.lastStatus = status
			return status
		}
		if bestSol == nil || status < best {
			best, bestSol = status, sol
		}
	}

	if bestSol != nil {
		bestSol.apply(p)
	}
	p.lastStatus = best
	return best
}

func (p *Problem) String() string {
	return fmt.Sprintf("lp.Problem{vars=%d constraints=%d maximize=%v status=%s}", len(p.vars), len(p.constraints), p.maximize, p.lastStatus)
}
