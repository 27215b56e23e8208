package network

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MaxIterations is the default Newton-Raphson iteration cap (spec.md
// §4.4.2).
const MaxIterations = 30

// MismatchTolerance is the convergence threshold on the infinity norm of
// the stacked P/Q mismatch vector, in per-unit.
const MismatchTolerance = 1e-6

// voltage clamp bounds applied to PQ-bus |V| updates each iteration, for
// numerical stability on badly conditioned networks (spec.md §4.4.2).
const (
	vClampMin = 0.5
	vClampMax = 1.5
)

// BranchFlow is one branch's solved flow, in per-unit.
type BranchFlow struct {
	From, To     int
	PFromPU, QFromPU float64
	PToPU, QToPU     float64
	PLossPU, QLossPU float64
	LoadingPct       float64
}

// PowerFlowResult is the numeric solution of one power-flow call.
type PowerFlowResult struct {
	Converged   bool
	Iterations  int
	MaxMismatch float64
	VPU         []float64
	ThetaRad    []float64
	PInjectionPU []float64
	QInjectionPU []float64
	BranchFlows  []BranchFlow
	Method       string // "newton-raphson" or "dc-fallback"
}

// SolveAC runs Newton-Raphson AC power flow on n, per spec.md §4.4.2: flat
// start, dense Jacobian via gonum/mat, mismatch convergence 1e-6, up to
// MaxIterations.
func SolveAC(n *Network) (*PowerFlowResult, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	nBus := len(n.Buses)
	ybus := BuildYBus(n)
	g := make([][]float64, nBus)
	b := make([][]float64, nBus)
	for i := 0; i < nBus; i++ {
		g[i] = make([]float64, nBus)
		b[i] = make([]float64, nBus)
		for j := 0; j < nBus; j++ {
			g[i][j] = real(ybus[i][j])
			b[i][j] = imag(ybus[i][j])
		}
	}

	v := make([]float64, nBus)
	theta := make([]float64, nBus)
	pSpec := make([]float64, nBus)
	qSpec := make([]float64, nBus)
	slackIdx := -1
	var nonSlack, pqBuses []int
	for i, bus := range n.Buses {
		pSpec[i] = bus.PGenPU - bus.PLoadPU
		qSpec[i] = bus.QGenPU - bus.QLoadPU
		switch bus.Type {
		case Slack:
			v[i] = valOr(bus.VSetpointPU, 1.0)
			theta[i] = 0
			slackIdx = i
		case PV:
			v[i] = valOr(bus.VSetpointPU, 1.0)
			nonSlack = append(nonSlack, i)
		default: // PQ
			v[i] = 1.0
			nonSlack = append(nonSlack, i)
			pqBuses = append(pqBuses, i)
		}
	}
	if slackIdx < 0 {
		return nil, fmt.Errorf("network: no slack bus found")
	}

	nP := len(nonSlack)
	nQ := len(pqBuses)
	nDim := nP + nQ

	var iter int
	var maxMismatch float64
	converged := false

	for iter = 0; iter < MaxIterations; iter++ {
		pCalc := make([]float64, nBus)
		qCalc := make([]float64, nBus)
		for i := 0; i < nBus; i++ {
			var pSum, qSum float64
			for j := 0; j < nBus; j++ {
				cos := math.Cos(theta[i] - theta[j])
				sin := math.Sin(theta[i] - theta[j])
				pSum += v[j] * (g[i][j]*cos + b[i][j]*sin)
				qSum += v[j] * (g[i][j]*sin - b[i][j]*cos)
			}
			pCalc[i] = v[i] * pSum
			qCalc[i] = v[i] * qSum
		}

		mismatch := mat.NewVecDense(nDim, nil)
		maxMismatch = 0
		for k, i := range nonSlack {
			dp := pSpec[i] - pCalc[i]
			mismatch.SetVec(k, dp)
			if math.Abs(dp) > maxMismatch {
				maxMismatch = math.Abs(dp)
			}
		}
		for k, i := range pqBuses {
			dq := qSpec[i] - qCalc[i]
			mismatch.SetVec(nP+k, dq)
			if math.Abs(dq) > maxMismatch {
				maxMismatch = math.Abs(dq)
			}
		}

		if maxMismatch < MismatchTolerance {
			converged = true
			break
		}

		jac := mat.NewDense(nDim, nDim, nil)
		for a, i := range nonSlack {
			for bCol, j := range nonSlack {
				jac.Set(a, bCol, dPdTheta(i, j, v, theta, g, b, pCalc, qCalc))
			}
			for bCol, j := range pqBuses {
				jac.Set(a, nP+bCol, dPdV(i, j, v, theta, g, b, pCalc))
			}
		}
		for a, i := range pqBuses {
			for bCol, j := range nonSlack {
				jac.Set(nP+a, bCol, dQdTheta(i, j, v, theta, g, b, pCalc, qCalc))
			}
			for bCol, j := range pqBuses {
				jac.Set(nP+a, nP+bCol, dQdV(i, j, v, theta, g, b, qCalc))
			}
		}

		var delta mat.VecDense
		if err := delta.SolveVec(jac, mismatch); err != nil {
			return nil, fmt.Errorf("network: newton-raphson jacobian solve failed at iteration %d: %w", iter, err)
		}
		for k, i := range nonSlack {
			theta[i] += delta.AtVec(k)
		}
		for k, i := range pqBuses {
			v[i] += delta.AtVec(nP + k)
			v[i] = math.Max(vClampMin, math.Min(vClampMax, v[i]))
		}
	}

	pInj := make([]float64, nBus)
	qInj := make([]float64, nBus)
	for i := 0; i < nBus; i++ {
		var pSum, qSum float64
		for j := 0; j < nBus; j++ {
			cos := math.Cos(theta[i] - theta[j])
			sin := math.Sin(theta[i] - theta[j])
			pSum += v[j] * (g[i][j]*cos + b[i][j]*sin)
			qSum += v[j] * (g[i][j]*sin - b[i][j]*cos)
		}
		pInj[i] = v[i] * pSum
		qInj[i] = v[i] * qSum
	}

	return &PowerFlowResult{
		Converged: converged, Iterations: iter + 1, MaxMismatch: maxMismatch,
		VPU: v, ThetaRad: theta, PInjectionPU: pInj, QInjectionPU: qInj,
		BranchFlows: computeBranchFlows(n, v, theta),
		Method:      "newton-raphson",
	}, nil
}

// SolveDC implements the linear DC fallback spec.md §4.4.2 describes for
// when Newton-Raphson fails to converge: B'·Δθ = P_spec, flat |V| = 1.0.
func SolveDC(n *Network) (*PowerFlowResult, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	nBus := len(n.Buses)
	ybus := BuildYBus(n)

	slackIdx := n.SlackIndex()
	var nonSlack []int
	pSpec := make([]float64, nBus)
	for i, bus := range n.Buses {
		pSpec[i] = bus.PGenPU - bus.PLoadPU
		if i != slackIdx {
			nonSlack = append(nonSlack, i)
		}
	}

	nDim := len(nonSlack)
	bPrime := mat.NewDense(nDim, nDim, nil)
	for a, i := range nonSlack {
		for bCol, j := range nonSlack {
			bPrime.Set(a, bCol, -imag(ybus[i][j]))
		}
	}
	rhs := mat.NewVecDense(nDim, nil)
	for k, i := range nonSlack {
		rhs.SetVec(k, pSpec[i])
	}

	var dTheta mat.VecDense
	if err := dTheta.SolveVec(bPrime, rhs); err != nil {
		return nil, fmt.Errorf("network: dc fallback solve failed: %w", err)
	}

	theta := make([]float64, nBus)
	v := make([]float64, nBus)
	for i := range v {
		v[i] = 1.0
	}
	for k, i := range nonSlack {
		theta[i] = dTheta.AtVec(k)
	}

	pInj := make([]float64, nBus)
	for i := 0; i < nBus; i++ {
		var sum float64
		for j := 0; j < nBus; j++ {
			sum += -imag(ybus[i][j]) * (theta[i] - theta[j])
		}
		pInj[i] = sum
	}

	return &PowerFlowResult{
		Converged: true, Iterations: 1, MaxMismatch: 0,
		VPU: v, ThetaRad: theta, PInjectionPU: pInj, QInjectionPU: make([]float64, nBus),
		BranchFlows: computeBranchFlows(n, v, theta),
		Method:      "dc-fallback",
	}, nil
}

func computeBranchFlows(n *Network, v, theta []float64) []BranchFlow {
	flows := make([]BranchFlow, len(n.Branches))
	for idx, br := range n.Branches {
		i, j := br.From, br.To
		vi := complex(v[i]*math.Cos(theta[i]), v[i]*math.Sin(theta[i]))
		vj := complex(v[j]*math.Cos(theta[j]), v[j]*math.Sin(theta[j]))
		y := 1 / br.ZPU
		shunt := complex(0, br.BPU/2)

		iFrom := (vi-vj)*y + vi*shunt
		iTo := (vj-vi)*y + vj*shunt
		sFrom := vi * cconj(iFrom)
		sTo := vj * cconj(iTo)

		loadingPct := 0.0
		if br.ThermalMVA > 0 {
			apparent := math.Hypot(real(sFrom), imag(sFrom)) * n.SBaseMVA
			loadingPct = 100 * apparent / br.ThermalMVA
		}

		flows[idx] = BranchFlow{
			From: i, To: j,
			PFromPU: real(sFrom), QFromPU: imag(sFrom),
			PToPU: real(sTo), QToPU: imag(sTo),
			PLossPU: real(sFrom) + real(sTo), QLossPU: imag(sFrom) + imag(sTo),
			LoadingPct: loadingPct,
		}
	}
	return flows
}

func cconj(z complex128) complex128 { return complex(real(z), -imag(z)) }

func valOr(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}

func dPdTheta(i, j int, v, theta []float64, g, b [][]float64, pCalc, qCalc []float64) float64 {
	if i == j {
		return -qCalc[i] - b[i][i]*v[i]*v[i]
	}
	d := theta[i] - theta[j]
	return v[i] * v[j] * (g[i][j]*math.Sin(d) - b[i][j]*math.Cos(d))
}

func dPdV(i, j int, v, theta []float64, g, b [][]float64, pCalc []float64) float64 {
	if i == j {
		return pCalc[i]/v[i] + g[i][i]*v[i]
	}
	d := theta[i] - theta[j]
	return v[i] * (g[i][j]*math.Cos(d) + b[i][j]*math.Sin(d))
}

func dQdTheta(i, j int, v, theta []float64, g, b [][]float64, pCalc, qCalc []float64) float64 {
	if i == j {
		return pCalc[i] - g[i][i]*v[i]*v[i]
	}
	d := theta[i] - theta[j]
	return -v[i] * v[j] * (g[i][j]*math.Cos(d) + b[i][j]*math.Sin(d))
}

func dQdV(i, j int, v, theta []float64, g, b [][]float64, qCalc []float64) float64 {
	if i == j {
		return qCalc[i]/v[i] - b[i][i]*v[i]
	}
	d := theta[i] - theta[j]
	return v[i] * (g[i][j]*math.Sin(d) - b[i][j]*math.Cos(d))
}
