// Package lp implements the bounded-variable linear-program solver
// named as an external contract in spec.md §6: makeVar/makeConstraint/
// setCoefficient/setObjective/solve, with dual values and basis status
// exposed per variable and constraint. Cost Analysis and the
// Production Table Solver are both built against this package.
//
// No off-the-shelf pure-Go library exposes this exact contract (see
// DESIGN.md); the solver here is a textbook two-phase primal simplex
// over a dense tableau, with bounded and free variables reduced to
// plain non-negative variables before the tableau is built.
package lp

import "math"

// Status is the terminal solve state, mirroring the enum spec.md §6
// names for the external LP solver contract.
type Status int

const (
	StatusOptimal Status = iota
	StatusFeasible
	StatusInfeasible
	StatusUnbounded
	StatusAbnormal
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusUnbounded:
		return "UNBOUNDED"
	default:
		return "ABNORMAL"
	}
}

// BasisStatus reports whether a variable ended up basic, non-basic at
// one of its bounds, or free (unbounded in both directions and
// currently zero-valued because it never entered the basis).
type BasisStatus int

const (
	Basic BasisStatus = iota
	AtLowerBound
	AtUpperBound
	Free
)

// Inf is the sentinel used for an unbounded variable or constraint
// side. Using math.Inf directly keeps arithmetic with it well-defined
// (e.g. lb == -Inf is a legal comparison) without a separate "has
// bound" flag on every call site.
var Inf = math.Inf(1)

// Var is an opaque handle to a decision variable, returned by
// Problem.MakeVar. It is only valid for the Problem that created it.
type Var struct {
	problem *Problem
	index   int

	lb, ub float64
	objCoef float64

	solutionValue float64
	basisStatus   BasisStatus
}

func (v *Var) SolutionValue() float64 { return v.solutionValue }
func (v *Var) BasisStatus() BasisStatus { return v.basisStatus }

// Constraint is an opaque handle to a range constraint, returned by
// Problem.MakeConstraint.
type Constraint struct {
	problem *Problem
	index   int

	lb, ub float64
	coef   map[int]float64 // Var.index -> coefficient, accumulated

	dualValue   float64
	basisStatus BasisStatus
}

func (c *Constraint) DualValue() float64     { return c.dualValue }
func (c *Constraint) BasisStatus() BasisStatus { return c.basisStatus }
func (c *Constraint) LowerBound() float64    { return c.lb }
func (c *Constraint) UpperBound() float64    { return c.ub }
