package solar

import "math"

// InverterParams describes a Sandia-style inverter efficiency curve,
// reduced to a single weighted (CEC-style) efficiency peak plus a light
// load-dependent roll-off, adequate for the hourly (not sub-hourly) core.
type InverterParams struct {
	RatedACKW     float64
	PeakEfficiency float64 // fraction, e.g. 0.97
	NightTareKW   float64 // constant draw subtracted from every positive AC output (floored at 0)
}

// DefaultInverterParams returns a generic string-inverter efficiency
// profile sized to an AC rating slightly below the DC array's STC rating,
// matching common 1.1-1.2 DC/AC oversizing.
func DefaultInverterParams(dcCapacityKW float64) InverterParams {
	return InverterParams{
		RatedACKW:      dcCapacityKW / 1.15,
		PeakEfficiency: 0.97,
		NightTareKW:    dcCapacityKW * 0.0005,
	}
}

// ACOutput converts DC array power (kW) to AC output (kW) through the
// inverter's clipping and partial-load efficiency roll-off (a simplified
// Sandia CEC-efficiency shape: efficiency dips below 10% loading and is
// flat at the peak above it; output above the AC rating is clipped).
func (p InverterParams) ACOutput(dcKW float64) float64 {
	if dcKW <= 0 {
		return 0
	}
	loadFrac := dcKW / math.Max(p.RatedACKW, 1e-9)
	eff := p.PeakEfficiency
	switch {
	case loadFrac < 0.1:
		eff *= 0.5 + 5*loadFrac
	case loadFrac > 1.0:
		eff *= 1.0 // clipped below at the rating, not via efficiency
	}
	acKW := dcKW * eff
	if acKW > p.RatedACKW {
		acKW = p.RatedACKW // hard clipping at the inverter's AC rating
	}
	acKW -= p.NightTareKW
	if acKW < 0 {
		acKW = 0
	}
	return acKW
}

// BOSLosses are the fixed fractional balance-of-system derates applied
// uniformly across all hours (spec.md §4.2.4): soiling, shading, wiring,
// availability, and light-induced degradation (LID).
type BOSLosses struct {
	SoilingFrac   float64
	ShadingFrac   float64
	WiringFrac    float64
	AvailabilityFrac float64
	LIDFrac       float64
}

// DefaultBOSLosses are typical utility/commercial PV system loss factors.
var DefaultBOSLosses = BOSLosses{
	SoilingFrac:      0.02,
	ShadingFrac:      0.01,
	WiringFrac:       0.02,
	AvailabilityFrac: 0.03,
	LIDFrac:          0.015,
}

// CombinedDerate multiplies all BOS loss factors into one system derate
// (1-loss for each, compounded), applied multiplicatively to AC output.
func (b BOSLosses) CombinedDerate() float64 {
	return (1 - b.SoilingFrac) * (1 - b.ShadingFrac) * (1 - b.WiringFrac) *
		(1 - b.AvailabilityFrac) * (1 - b.LIDFrac)
}

// AnnualDegradation returns the output multiplier (1-rate)^yearIndex for a
// module fleet degrading at the given compound annual rate (yearIndex 0 =
// first operating year, multiplier 1).
func AnnualDegradation(annualRateFrac float64, yearIndex int) float64 {
	if annualRateFrac <= 0 {
		return 1.0
	}
	return math.Pow(1-annualRateFrac, float64(yearIndex))
}
