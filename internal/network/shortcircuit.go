package network

import (
	"fmt"
	"math"
)

// ShortCircuitMVA is one bus's simplified IEC 60909 fault level.
type ShortCircuitMVA struct {
	BusIndex  int
	IScPU     float64
	IScKA     float64
	SScMVA    float64
}

// sourceAdmittancePU converts a bus's short-circuit MVA rating into the
// equivalent source admittance seen at that bus, 1/Z where
// |Z| = S_base/Sc_MVA (a purely reactive Thevenin source, the standard
// simplification for screening-level fault studies).
func sourceAdmittancePU(scMVA, sBaseMVA float64) complex128 {
	if scMVA <= 0 {
		return 0
	}
	xPU := sBaseMVA / scMVA
	return 1 / complex(0, xPU)
}

// ShortCircuit implements the simplified IEC 60909 screening spec.md
// §4.4.3 describes: augment Y-bus with source admittances at buses
// carrying a nonzero sc_mva (or the slack bus), invert to Z-bus, and read
// the fault current off the diagonal.
func ShortCircuit(n *Network, vPreFaultPU float64) ([]ShortCircuitMVA, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	if vPreFaultPU <= 0 {
		vPreFaultPU = 1.0
	}
	nBus := len(n.Buses)
	ybus := BuildYBus(n)

	slackIdx := n.SlackIndex()
	for i, bus := range n.Buses {
		scMVA := bus.ScMVA
		if i == slackIdx && scMVA <= 0 {
			scMVA = n.SBaseMVA * 100 // stiff default source at the slack bus
		}
		ybus[i][i] += sourceAdmittancePU(scMVA, n.SBaseMVA)
	}

	zbus, err := invertComplex(ybus)
	if err != nil {
		return nil, fmt.Errorf("network: short-circuit Z-bus inversion failed: %w", err)
	}

	results := make([]ShortCircuitMVA, nBus)
	for k := 0; k < nBus; k++ {
		zkk := math.Hypot(real(zbus[k][k]), imag(zbus[k][k]))
		iScPU := vPreFaultPU / zkk

		bus := n.Buses[k]
		if bus.VBaseKV <= 0 {
			results[k] = ShortCircuitMVA{BusIndex: k, IScPU: iScPU}
			continue
		}
		iBaseKA := n.SBaseMVA / (math.Sqrt(3) * bus.VBaseKV)
		iScKA := iScPU * iBaseKA
		sScMVA := math.Sqrt(3) * bus.VBaseKV * iScKA

		results[k] = ShortCircuitMVA{BusIndex: k, IScPU: iScPU, IScKA: iScKA, SScMVA: sScMVA}
	}
	return results, nil
}
