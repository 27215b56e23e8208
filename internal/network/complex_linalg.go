package network

import "fmt"

// invertComplex inverts a square complex matrix by Gauss-Jordan elimination
// with partial pivoting. gonum/mat's public API (as retrieved) has no
// complex LU/solve routine, so Z-bus inversion for short-circuit analysis
// (spec.md §4.4.3) is hand-rolled here; this is the one piece of linear
// algebra in the package not delegated to gonum.
func invertComplex(a [][]complex128) ([][]complex128, error) {
	n := len(a)
	aug := make([][]complex128, n)
	for i := 0; i < n; i++ {
		aug[i] = make([]complex128, 2*n)
		copy(aug[i], a[i])
		aug[i][n+i] = 1
	}

	for col := 0; col < n; col++ {
		pivot := col
		best := cabs(aug[col][col])
		for row := col + 1; row < n; row++ {
			if m := cabs(aug[row][col]); m > best {
				best, pivot = m, row
			}
		}
		if best < 1e-14 {
			return nil, fmt.Errorf("network: singular matrix, cannot invert (column %d)", col)
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		pv := aug[col][col]
		for k := 0; k < 2*n; k++ {
			aug[col][k] /= pv
		}
		for row := 0; row < n; row++ {
			if row == col {
				continue
			}
			factor := aug[row][col]
			if factor == 0 {
				continue
			}
			for k := 0; k < 2*n; k++ {
				aug[row][k] -= factor * aug[col][k]
			}
		}
	}

	inv := make([][]complex128, n)
	for i := 0; i < n; i++ {
		inv[i] = make([]complex128, n)
		copy(inv[i], aug[i][n:])
	}
	return inv, nil
}

func cabs(z complex128) float64 {
	re, im := real(z), imag(z)
	return re*re + im*im // squared magnitude suffices for pivot comparison
}
