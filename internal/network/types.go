// Package network implements the per-unit bus/branch power-system model
// spec.md §4.4 describes: Y-bus assembly, Newton-Raphson AC power flow with
// a DC fallback, IEC 60909 short-circuit screening, N-1 contingency
// analysis, and built-in grid codes. Grounded on the teacher's
// internal/tui package's state-machine iteration style for the NR loop and
// on gonum/mat (already a teacher dependency) for the real-valued dense
// Jacobian solve; complex Y-bus/Z-bus arithmetic is hand-rolled (§ design
// note below) since no complex-matrix solver ships in the retrieved gonum
// version.
package network

import (
	"fmt"
	"math"
)

// BusType tags a bus's role in the power-flow formulation.
type BusType int

const (
	Slack BusType = iota
	PV
	PQ
)

func (b BusType) String() string {
	switch b {
	case Slack:
		return "slack"
	case PV:
		return "pv"
	case PQ:
		return "pq"
	default:
		return "unknown"
	}
}

// Bus is one node of the network, in per-unit quantities.
type Bus struct {
	Index        int
	Name         string
	Type         BusType
	VBaseKV      float64
	VSetpointPU  float64 // used by Slack and PV buses
	VMinPU       float64
	VMaxPU       float64
	PGenPU       float64
	QGenPU       float64
	PLoadPU      float64
	QLoadPU      float64
	ScMVA        float64 // short-circuit source strength, 0 if none
}

// BranchType tags the physical element a branch models, which determines
// how its per-unit impedance is derived.
type BranchType int

const (
	Cable BranchType = iota
	Line
	Transformer
	Inverter
)

// Branch connects two buses by index.
type Branch struct {
	From, To     int
	Type         BranchType
	ZPU          complex128 // series impedance, per-unit
	BPU          float64    // total shunt susceptance, per-unit
	Tap          complex128 // complex tap ratio, 1+0i if untapped
	ThermalMVA   float64
}

// Network is the static graph a power-flow call consumes. Constructed
// fresh per invocation; N-1 screening works on deep copies (see
// contingency.go) so the original is untouched.
type Network struct {
	Buses      []Bus
	Branches   []Branch
	SBaseMVA   float64
}

// Validate checks the structural invariants spec.md §3 requires: exactly
// one slack bus and branch endpoints indexing valid buses.
func (n *Network) Validate() error {
	if n.SBaseMVA <= 0 {
		return fmt.Errorf("network: s_base_mva must be positive")
	}
	slackCount := 0
	for _, b := range n.Buses {
		if b.Type == Slack {
			slackCount++
		}
	}
	if slackCount != 1 {
		return fmt.Errorf("network: expected exactly one slack bus, found %d", slackCount)
	}
	nBus := len(n.Buses)
	for i, br := range n.Branches {
		if br.From < 0 || br.From >= nBus || br.To < 0 || br.To >= nBus {
			return fmt.Errorf("network: branch %d references out-of-range bus (from=%d to=%d, n_bus=%d)", i, br.From, br.To, nBus)
		}
	}
	return nil
}

// SlackIndex returns the bus index of the (unique, validated) slack bus.
func (n *Network) SlackIndex() int {
	for _, b := range n.Buses {
		if b.Type == Slack {
			return b.Index
		}
	}
	return -1
}

// ZBase returns the base impedance for a voltage zone, Ω.
func ZBase(vBaseKV, sBaseMVA float64) float64 {
	return vBaseKV * vBaseKV / sBaseMVA
}

// CableImpedancePU converts a cable's physical R+jX (Ω/km) and length (km)
// to per-unit impedance (spec.md §4.4.1).
func CableImpedancePU(rOhmPerKM, xOhmPerKM, lengthKM, vBaseKV, sBaseMVA float64) complex128 {
	zBase := ZBase(vBaseKV, sBaseMVA)
	r := rOhmPerKM * lengthKM / zBase
	x := xOhmPerKM * lengthKM / zBase
	return complex(r, x)
}

// TransformerImpedancePU converts a transformer's nameplate impedance
// percentage and MVA rating to system-base per-unit impedance, split into
// R and X by the given X/R ratio (spec.md §4.4.1).
func TransformerImpedancePU(impedancePct, ratingMVA, sBaseMVA, xOverR float64) complex128 {
	zMag := (impedancePct / 100) * (sBaseMVA / ratingMVA)
	// z_mag = sqrt(r^2+x^2), x = xOverR*r => r = z_mag/sqrt(1+xOverR^2)
	denom := math.Sqrt(1 + xOverR*xOverR)
	r := zMag / denom
	x := xOverR * r
	return complex(r, x)
}

// InverterImpedancePU models an inverter's coupling impedance: a lossy
// series resistance sized from its efficiency, plus a small reactance kept
// only for numerical conditioning (spec.md §4.4.1).
func InverterImpedancePU(efficiency, ratingMVA, sBaseMVA float64) complex128 {
	r := (1 - efficiency) * sBaseMVA / ratingMVA
	const xForConditioning = 1e-3
	return complex(r, xForConditioning)
}
