package network

// GridCode bundles the interconnection limits spec.md §4.4.5 describes.
// Only VMinPU/VMaxPU/ContingencyVMinPU/ContingencyVMaxPU/ThermalLimitPct
// are consumed by the power-flow and contingency solvers; the remaining
// fields travel through to reports unconsumed by the core.
type GridCode struct {
	Name                string
	VMinPU              float64
	VMaxPU              float64
	ContingencyVMinPU   float64
	ContingencyVMaxPU   float64
	ThermalLimitPct     float64
	FreqMinHz           float64
	FreqMaxHz           float64
	FaultLevelMinMVA    float64
	PowerFactorMin      float64
	ReconnectionDelaySec float64
}

// IECDefault is a generic IEC-aligned grid code: ±10% normal band, ±15%
// contingency band, 100% thermal limit.
var IECDefault = GridCode{
	Name: "iec_default",
	VMinPU: 0.90, VMaxPU: 1.10,
	ContingencyVMinPU: 0.85, ContingencyVMaxPU: 1.15,
	ThermalLimitPct: 100.0,
	FreqMinHz: 49.5, FreqMaxHz: 50.5,
	FaultLevelMinMVA: 0, PowerFactorMin: 0.95,
	ReconnectionDelaySec: 300,
}

// Fiji is the Fiji Electricity Authority distribution grid code profile:
// a tighter normal band reflecting weak rural feeders.
var Fiji = GridCode{
	Name: "fiji",
	VMinPU: 0.94, VMaxPU: 1.06,
	ContingencyVMinPU: 0.88, ContingencyVMaxPU: 1.10,
	ThermalLimitPct: 100.0,
	FreqMinHz: 49.0, FreqMaxHz: 51.0,
	FaultLevelMinMVA: 0, PowerFactorMin: 0.90,
	ReconnectionDelaySec: 300,
}

// IEEE1547 is the IEEE 1547-2018 distributed energy resource interconnect
// profile (60 Hz nominal), voltage bands per its Category II ride-through
// table.
var IEEE1547 = GridCode{
	Name: "ieee_1547",
	VMinPU: 0.88, VMaxPU: 1.10,
	ContingencyVMinPU: 0.70, ContingencyVMaxPU: 1.20,
	ThermalLimitPct: 100.0,
	FreqMinHz: 59.3, FreqMaxHz: 60.5,
	FaultLevelMinMVA: 0, PowerFactorMin: 0.90,
	ReconnectionDelaySec: 300,
}

// NewCustomGridCode builds a grid code from explicit limits, for sites
// whose interconnection agreement does not match a built-in profile.
func NewCustomGridCode(name string, vMinPU, vMaxPU, contingencyVMinPU, contingencyVMaxPU, thermalLimitPct float64) GridCode {
	return GridCode{
		Name: name,
		VMinPU: vMinPU, VMaxPU: vMaxPU,
		ContingencyVMinPU: contingencyVMinPU, ContingencyVMaxPU: contingencyVMaxPU,
		ThermalLimitPct: thermalLimitPct,
	}
}
