package lp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foundryworks/production-planner/internal/planner/lp"
)

func TestProblem_MinimizeSingleVar(t *testing.T) {
	p := lp.NewProblem()
	p.SetMinimize()

	v := p.MakeVar(2, 10)
	p.SetObjective(v, 1)

	status := p.Solve()
	require.Equal(t, lp.StatusOptimal, status)
	assert.InDelta(t, 2, v.SolutionValue(), 1e-9)
	assert.Equal(t, lp.AtLowerBound, v.BasisStatus())
}

func TestProblem_MaximizeWithConstraint(t *testing.T) {
	p := lp.NewProblem()
	p.SetMaximize()

	x := p.MakeVar(0, lp.Inf)
	y := p.MakeVar(0, lp.Inf)
	p.SetObjective(x, 3)
	p.SetObjective(y, 2)

	c := p.MakeConstraint(-lp.Inf, 10)
	c.SetCoefficient(x, 1)
	c.SetCoefficient(y, 1)

	status := p.Solve()
	require.Equal(t, lp.StatusOptimal, status)
	assert.InDelta(t, 10, x.SolutionValue()+y.SolutionValue(), 1e-6)
	assert.InDelta(t, 30, x.SolutionValue()*3+y.SolutionValue()*2, 1e-6)
}

func TestConstraint_AddCoefficientAccumulates(t *testing.T) {
	p := lp.NewProblem()
	v := p.MakeVar(0, lp.Inf)

	c := p.MakeConstraint(-lp.Inf, 5)
	c.AddCoefficient(v, 2)
	c.AddCoefficient(v, 3)

	assert.Equal(t, float64(5), c.GetCoefficient(v))
}

func TestConstraint_Coefficients(t *testing.T) {
	p := lp.NewProblem()
	v1 := p.MakeVar(0, lp.Inf)
	v2 := p.MakeVar(0, lp.Inf)

	c := p.MakeConstraint(0, 10)
	c.SetCoefficient(v1, 4)
	c.SetCoefficient(v2, -1)

	coefs := c.Coefficients()
	assert.Equal(t, float64(4), coefs[v1])
	assert.Equal(t, float64(-1), coefs[v2])
}

func TestProblem_Infeasible(t *testing.T) {
	p := lp.NewProblem()
	v := p.MakeVar(0, 1)

	c := p.MakeConstraint(5, 5)
	c.SetCoefficient(v, 1)

	status := p.Solve()
	assert.Equal(t, lp.StatusInfeasible, status)
}

func TestProblem_SolveWithDifferentSeedsMatchesSolve(t *testing.T) {
	p1 := lp.NewProblem()
	p1.SetMinimize()
	v1 := p1.MakeVar(0, lp.Inf)
	p1.SetObjective(v1, 1)
	c1 := p1.MakeConstraint(4, lp.Inf)
	c1.SetCoefficient(v1, 1)

	status := p1.SolveWithDifferentSeeds()
	require.Equal(t, lp.StatusOptimal, status)
	assert.InDelta(t, 4, v1.SolutionValue(), 1e-9)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "OPTIMAL", lp.StatusOptimal.String())
	assert.Equal(t, "INFEASIBLE", lp.StatusInfeasible.String())
	assert.Equal(t, "UNBOUNDED", lp.StatusUnbounded.String())
	assert.Equal(t, "ABNORMAL", lp.StatusAbnormal.String())
}
