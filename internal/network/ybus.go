package network

import "math/cmplx"

// BuildYBus assembles the complex nodal admittance matrix from the
// network's branch list, following spec.md §4.4.1's stamping rule:
//
//	Y[i,i] += y/|t|^2 + jB/2
//	Y[j,j] += y       + jB/2
//	Y[i,j] -= y/conj(t)
//	Y[j,i] -= y/t
func BuildYBus(n *Network) [][]complex128 {
	nBus := len(n.Buses)
	y := make([][]complex128, nBus)
	for i := range y {
		y[i] = make([]complex128, nBus)
	}

	for _, br := range n.Branches {
		i, j := br.From, br.To
		admittance := 1 / br.ZPU
		tap := br.Tap
		if tap == 0 {
			tap = complex(1, 0)
		}
		shunt := complex(0, br.BPU/2)

		tapMagSq := real(tap)*real(tap) + imag(tap)*imag(tap)
		y[i][i] += admittance/complex(tapMagSq, 0) + shunt
		y[j][j] += admittance + shunt
		y[i][j] -= admittance / cmplx.Conj(tap)
		y[j][i] -= admittance / tap
	}
	return y
}
