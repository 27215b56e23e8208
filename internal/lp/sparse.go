// Package lp implements the sparse constraint assembly and
// bounded-variable primal simplex spec.md §4.1.4 and §9 describe for the
// LP-optimal dispatch strategy. No third-party linear-programming library
// appears anywhere in the retrieved corpus (every go.mod under
// _examples/ was checked); gonum.org/v1/gonum, which the pack does carry,
// has no simplex component, only dense/sparse linear algebra, so the
// per-iteration basis solve here is built on gonum/mat while the simplex
// loop itself is the textbook bounded-variable revised simplex.
package lp

import "sort"

// Triplet is one non-zero entry of a constraint matrix in coordinate (COO)
// form: row/col are 0-indexed constraint/variable indices.
type Triplet struct {
	Row, Col int
	Value    float64
}

// CSC is a constraint matrix in compressed-sparse-column form, the layout
// the revised simplex's column operations (pivoting, ratio tests) want:
// one contiguous run of (row, value) pairs per variable.
type CSC struct {
	NRows, NCols int
	ColStart     []int     // length NCols+1
	RowIndex     []int     // length nnz
	Values       []float64 // length nnz
}

// BuildCSC sorts a COO triplet list by (col, row) and compresses it into
// CSC, per spec.md §9's redesign note: build CSC directly from COO rather
// than assembling a dense row-by-row matrix. Duplicate (row,col) entries
// are summed, matching standard sparse-assembly semantics.
func BuildCSC(nRows, nCols int, triplets []Triplet) CSC {
	sorted := make([]Triplet, len(triplets))
	copy(sorted, triplets)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Col != sorted[j].Col {
			return sorted[i].Col < sorted[j].Col
		}
		return sorted[i].Row < sorted[j].Row
	})

	colStart := make([]int, nCols+1)
	rowIndex := make([]int, 0, len(sorted))
	values := make([]float64, 0, len(sorted))

	col := 0
	i := 0
	for col < nCols {
		colStart[col] = len(rowIndex)
		for i < len(sorted) && sorted[i].Col == col {
			// Merge consecutive duplicate (row, col) entries.
			row := sorted[i].Row
			sum := sorted[i].Value
			j := i + 1
			for j < len(sorted) && sorted[j].Col == col && sorted[j].Row == row {
				sum += sorted[j].Value
				j++
			}
			rowIndex = append(rowIndex, row)
			values = append(values, sum)
			i = j
		}
		col++
	}
	colStart[nCols] = len(rowIndex)

	return CSC{NRows: nRows, NCols: nCols, ColStart: colStart, RowIndex: rowIndex, Values: values}
}

// Column returns the (row, value) pairs of variable col's column.
func (m CSC) Column(col int) (rows []int, vals []float64) {
	s, e := m.ColStart[col], m.ColStart[col+1]
	return m.RowIndex[s:e], m.Values[s:e]
}

// DenseColumn materializes variable col's column as a dense NRows-vector,
// used by the simplex's basis-matrix assembly.
func (m CSC) DenseColumn(col int) []float64 {
	out := make([]float64, m.NRows)
	rows, vals := m.Column(col)
	for i, r := range rows {
		out[r] = vals[i]
	}
	return out
}
