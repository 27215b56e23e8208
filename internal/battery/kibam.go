package battery

import "math"

// kibam implements the Kinetic Battery Model: capacity split into an
// available well q1 = c*Q and a bound well q2 = (1-c)*Q, coupled by rate
// constant k. Sustained high C-rates drain q1 faster than q2 can refill it,
// which is why high-rate discharge yields less total energy than low-rate
// discharge of the same nameplate capacity.
type kibam struct {
	c         float64 // available-well capacity fraction, (0,1)
	k         float64 // rate constant, 1/h
	nameplate float64 // kWh
}

func newKibam(c, k, nameplateKWh float64) kibam {
	return kibam{c: c, k: k, nameplate: nameplateKWh}
}

// maxDischargePower returns the instantaneous discharge power (kW) the
// KiBaM kinetic limit plus the bottom-15%-of-SOC taper allow, given the
// current SOC (normalized to the usable [min_soc, max_soc] window, as
// BatterySystem passes it) and an instantaneous-power ceiling
// (the rated discharge rate). Mirrors the original's direct well-balance
// derivation: the available well drains at q1*k/c, replenished by whatever
// the bound well can push through the conductance term.
func (m kibam) maxDischargePower(soc, ratedKW float64) float64 {
	soc = clamp01(soc)
	if soc <= 0 {
		return 0
	}
	c, k, qMax := m.c, m.k, m.nameplate
	qTotal := soc * qMax
	q1 := c * qTotal
	q2 := (1 - c) * qTotal

	var conductance float64
	if c < 1 {
		conductance = k * (q2/(1-c) - q1/c)
	}
	if conductance < 0 {
		conductance = 0
	}
	kinetic := q1*k/c + conductance
	if kinetic < 0 {
		kinetic = 0
	}
	if kinetic > ratedKW {
		kinetic = ratedKW
	}
	return math.Min(kinetic, ratedKW*bottomTaper(soc))
}

// maxChargePower is the symmetric charge-side cap: the available well's
// remaining headroom to fill, aided by the conductance draining charge
// onward into the bound well, tapered over the top 15% of SOC (85% ->
// 100%), per spec.md §4.2.1 and §9's preserved-taper note.
func (m kibam) maxChargePower(soc, ratedKW float64) float64 {
	soc = clamp01(soc)
	if soc >= 1 {
		return 0
	}
	c, k, qMax := m.c, m.k, m.nameplate
	qTotal := soc * qMax
	q1 := c * qTotal
	q2 := (1 - c) * qTotal

	q1Max := c * qMax
	q1Room := q1Max - q1

	var conductance float64
	if c < 1 {
		conductance = k * (q1/c - q2/(1-c))
	}
	kinetic := q1Room*k/c + conductance
	if kinetic < 0 {
		kinetic = 0
	}
	if kinetic > ratedKW {
		kinetic = ratedKW
	}
	return math.Min(kinetic, ratedKW*topTaper(soc))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// topTaper linearly rolls off the charge ceiling over the top 15% of SOC
// (85% -> 100%), per spec.md §9: this specific window, not a full-window
// taper, is part of the behavioural contract.
func topTaper(soc float64) float64 {
	const start = 0.85
	if soc <= start {
		return 1.0
	}
	if soc >= 1.0 {
		return 0.0
	}
	return 1.0 - (soc-start)/(1.0-start)
}

// bottomTaper is topTaper's discharge-side mirror: rolls off over the
// bottom 15% of SOC (0% -> 15%).
func bottomTaper(soc float64) float64 {
	const end = 0.15
	if soc >= end {
		return 1.0
	}
	if soc <= 0.0 {
		return 0.0
	}
	return soc / end
}
