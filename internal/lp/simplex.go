package lp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Status reports how a Solve call terminated.
type Status int

const (
	Optimal Status = iota
	Infeasible
	IterationLimit
)

// Problem is a bounded-variable linear program in standard equality form:
// minimize c^T x subject to A x = b, lo <= x <= hi (hi may be +Inf).
type Problem struct {
	A  CSC
	B  []float64
	C  []float64
	Lo []float64
	Hi []float64 // math.Inf(1) for unbounded-above variables
}

// Result is the solved LP: the full variable vector, the objective value,
// and the termination status.
type Result struct {
	X      []float64
	Obj    float64
	Status Status
}

// bigM is the artificial-variable penalty cost, large enough to dominate
// any realistic dispatch cost term (currency per kW is O(1), the unmet
// penalty is 10) while staying well inside float64 precision headroom.
const bigM = 1e7

const maxIterations = 200000

// Solve runs the bounded-variable primal simplex method (Big-M, Bland's
// rule for anti-cycling) on p. It shifts all variables to a zero lower
// bound internally, appends one artificial variable per row to obtain an
// initial basic feasible solution, and reports Infeasible if any
// artificial remains basic above tolerance at termination.
func Solve(p Problem) (Result, error) {
	nRows, nCols := p.A.NRows, p.A.NCols
	if len(p.B) != nRows || len(p.C) != nCols || len(p.Lo) != nCols || len(p.Hi) != nCols {
		return Result{}, fmt.Errorf("lp: dimension mismatch (rows=%d cols=%d)", nRows, nCols)
	}

	// Shift: y = x - lo, so y in [0, hi-lo]; b' = b - A*lo.
	width := make([]float64, nCols)
	bShift := make([]float64, nRows)
	copy(bShift, p.B)
	for j := 0; j < nCols; j++ {
		width[j] = p.Hi[j] - p.Lo[j]
		if p.Lo[j] == 0 {
			continue
		}
		rows, vals := p.A.Column(j)
		for k, row := range rows {
			bShift[row] -= vals[k] * p.Lo[j]
		}
	}

	nTotal := nCols + nRows
	lo := make([]float64, nTotal)
	hi := make([]float64, nTotal)
	cost := make([]float64, nTotal)
	// dense[row][col] columns for the structural variables, built lazily
	// from the sparse CSC; artificial columns are unit vectors.
	cols := make([][]float64, nTotal)
	for j := 0; j < nCols; j++ {
		lo[j] = 0
		hi[j] = width[j]
		cost[j] = p.C[j]
		cols[j] = p.A.DenseColumn(j)
	}
	basis := make([]int, nRows)
	for i := 0; i < nRows; i++ {
		sign := 1.0
		if bShift[i] < 0 {
			sign = -1.0
		}
		col := nCols + i
		lo[col] = 0
		hi[col] = math.Inf(1)
		cost[col] = bigM
		c := make([]float64, nRows)
		c[i] = sign
		cols[col] = c
		basis[col-nCols] = col // placeholder, fixed below
	}
	for i := 0; i < nRows; i++ {
		basis[i] = nCols + i
	}

	atUpper := make([]bool, nTotal) // nonbasic status; basic entries ignored
	nonbasicValue := func(j int) float64 {
		if atUpper[j] {
			return hi[j]
		}
		return lo[j]
	}

	isBasic := make([]bool, nTotal)
	for _, b := range basis {
		isBasic[b] = true
	}

	// xB solves B*xB = b' - sum_{j nonbasic} A_j * nonbasicValue(j). Since
	// every artificial starts basic with coefficient +-1 and every
	// structural variable starts nonbasic at its lower bound (0), the
	// initial basic solution is simply xB_i = |b'_i|.
	xB := make([]float64, nRows)
	for i := 0; i < nRows; i++ {
		xB[i] = math.Abs(bShift[i])
	}

	basisMat := mat.NewDense(nRows, nRows, nil)
	fillBasisMat(basisMat, cols, basis, nRows)

	iter := 0
	for ; iter < maxIterations; iter++ {
		y, err := dualPrices(basisMat, cost, basis, nRows)
		if err != nil {
			return Result{}, fmt.Errorf("lp: singular basis at iteration %d: %w", iter, err)
		}

		entering, enterDir := -1, 1.0
		for j := 0; j < nTotal; j++ {
			if isBasic[j] {
				continue
			}
			reduced := cost[j] - dot(y, cols[j])
			if !atUpper[j] && reduced < -1e-9 && width[j] != 0 {
				entering, enterDir = j, 1.0
				break // Bland's rule: first violating index
			}
			if atUpper[j] && reduced > 1e-9 {
				entering, enterDir = j, -1.0
				break
			}
		}
		if entering == -1 {
			break // optimal
		}

		// Direction of basic variables as the entering variable moves by
		// enterDir*t from its current bound: d = Binv * A_entering.
		d, err := solveBasis(basisMat, cols[entering], nRows)
		if err != nil {
			return Result{}, fmt.Errorf("lp: singular basis resolving direction: %w", err)
		}

		leaveRow, tMax, leaveToUpper := -1, enteringBoundGap(lo, hi, entering), false
		if math.IsInf(tMax, 1) {
			tMax = math.Inf(1)
		}
		for i := 0; i < nRows; i++ {
			rate := enterDir * d[i]
			if rate > 1e-9 {
				gap := xB[i] - lo[basis[i]]
				if t := gap / rate; t < tMax {
					tMax, leaveRow, leaveToUpper = t, i, false
				}
			} else if rate < -1e-9 && !math.IsInf(hi[basis[i]], 1) {
				gap := hi[basis[i]] - xB[i]
				if t := gap / (-rate); t < tMax {
					tMax, leaveRow, leaveToUpper = t, i, true
				}
			}
		}
		if math.IsInf(tMax, 1) {
			return Result{}, fmt.Errorf("lp: problem is unbounded at iteration %d", iter)
		}

		for i := 0; i < nRows; i++ {
			xB[i] -= enterDir * d[i] * tMax
		}

		if leaveRow == -1 {
			// Bound flip: entering variable moves to its opposite bound,
			// basis unchanged.
			atUpper[entering] = !atUpper[entering]
			continue
		}

		leaving := basis[leaveRow]
		isBasic[leaving] = false
		atUpper[leaving] = leaveToUpper
		isBasic[entering] = true
		basis[leaveRow] = entering
		enteredValue := nonbasicValue(entering) + enterDir*tMax
		xB[leaveRow] = enteredValue
		fillBasisCol(basisMat, cols[entering], leaveRow, nRows)
	}

	status := Optimal
	if iter == maxIterations {
		status = IterationLimit
	}

	x := make([]float64, nTotal)
	for j := 0; j < nTotal; j++ {
		if !isBasic[j] {
			x[j] = nonbasicValue(j)
		}
	}
	for i, b := range basis {
		x[b] = xB[i]
	}

	for i := 0; i < nRows; i++ {
		if basis[i] >= nCols && xB[i] > 1e-6 {
			status = Infeasible
		}
	}

	xOrig := make([]float64, nCols)
	var obj float64
	for j := 0; j < nCols; j++ {
		xOrig[j] = x[j] + p.Lo[j]
		obj += p.C[j] * xOrig[j]
	}

	return Result{X: xOrig, Obj: obj, Status: status}, nil
}

func enteringBoundGap(lo, hi []float64, j int) float64 {
	return hi[j] - lo[j]
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func fillBasisMat(m *mat.Dense, cols [][]float64, basis []int, nRows int) {
	for col, varIdx := range basis {
		fillBasisCol(m, cols[varIdx], col, nRows)
	}
}

func fillBasisCol(m *mat.Dense, column []float64, col, nRows int) {
	for row := 0; row < nRows; row++ {
		m.Set(row, col, column[row])
	}
}

// dualPrices solves B^T y = c_B for the simplex multipliers.
func dualPrices(basisMat *mat.Dense, cost []float64, basis []int, nRows int) ([]float64, error) {
	cB := mat.NewVecDense(nRows, nil)
	for i, b := range basis {
		cB.SetVec(i, cost[b])
	}
	var bt mat.Dense
	bt.CloneFrom(basisMat.T())
	var y mat.VecDense
	if err := y.SolveVec(&bt, cB); err != nil {
		return nil, err
	}
	out := make([]float64, nRows)
	for i := 0; i < nRows; i++ {
		out[i] = y.AtVec(i)
	}
	return out, nil
}

// solveBasis solves B*d = column for the entering variable's direction in
// the current basis.
func solveBasis(basisMat *mat.Dense, column []float64, nRows int) ([]float64, error) {
	rhs := mat.NewVecDense(nRows, column)
	var d mat.VecDense
	if err := d.SolveVec(basisMat, rhs); err != nil {
		return nil, err
	}
	out := make([]float64, nRows)
	for i := 0; i < nRows; i++ {
		out[i] = d.AtVec(i)
	}
	return out, nil
}
