package lp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSolve_SimpleEqualityLP checks a textbook two-variable LP with a known
// optimum: minimize x + 2y subject to x + y = 10, 0 <= x,y <= 8.
// Optimum puts as much weight as possible on the cheaper variable x: x=8,
// y=2, objective 8 + 4 = 12.
func TestSolve_SimpleEqualityLP(t *testing.T) {
	a := BuildCSC(1, 2, []Triplet{
		{Row: 0, Col: 0, Value: 1},
		{Row: 0, Col: 1, Value: 1},
	})
	p := Problem{
		A:  a,
		B:  []float64{10},
		C:  []float64{1, 2},
		Lo: []float64{0, 0},
		Hi: []float64{8, 8},
	}
	res, err := Solve(p)
	require.NoError(t, err)
	assert.Equal(t, Optimal, res.Status)
	assert.InDelta(t, 8, res.X[0], 1e-6)
	assert.InDelta(t, 2, res.X[1], 1e-6)
	assert.InDelta(t, 12, res.Obj, 1e-6)
}

// TestSolve_TwoConstraintLP exercises a small multi-row system with a
// nontrivial basis change: minimize 2x + 3y subject to x + y = 6,
// x - y = 2, bounds [0, 10].
func TestSolve_TwoConstraintLP(t *testing.T) {
	a := BuildCSC(2, 2, []Triplet{
		{Row: 0, Col: 0, Value: 1}, {Row: 0, Col: 1, Value: 1},
		{Row: 1, Col: 0, Value: 1}, {Row: 1, Col: 1, Value: -1},
	})
	p := Problem{
		A:  a,
		B:  []float64{6, 2},
		C:  []float64{2, 3},
		Lo: []float64{0, 0},
		Hi: []float64{10, 10},
	}
	res, err := Solve(p)
	require.NoError(t, err)
	assert.Equal(t, Optimal, res.Status)
	assert.InDelta(t, 4, res.X[0], 1e-6)
	assert.InDelta(t, 2, res.X[1], 1e-6)
}

func TestSolve_InfeasibleReportsStatus(t *testing.T) {
	a := BuildCSC(1, 1, []Triplet{{Row: 0, Col: 0, Value: 1}})
	p := Problem{
		A:  a,
		B:  []float64{100},
		C:  []float64{1},
		Lo: []float64{0},
		Hi: []float64{5},
	}
	res, err := Solve(p)
	require.NoError(t, err)
	assert.NotEqual(t, Optimal, res.Status)
}

func TestBuildCSC_MergesDuplicates(t *testing.T) {
	m := BuildCSC(2, 1, []Triplet{
		{Row: 0, Col: 0, Value: 1},
		{Row: 0, Col: 0, Value: 2},
		{Row: 1, Col: 0, Value: 5},
	})
	rows, vals := m.Column(0)
	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0])
	assert.InDelta(t, 3, vals[0], 1e-9)
	assert.Equal(t, 1, rows[1])
	assert.InDelta(t, 5, vals[1], 1e-9)
}

func TestDenseColumn_MatchesSparse(t *testing.T) {
	m := BuildCSC(3, 1, []Triplet{{Row: 1, Col: 0, Value: 7}})
	dense := m.DenseColumn(0)
	assert.Equal(t, []float64{0, 7, 0}, dense)
}
