// Package dispatch implements the four hourly dispatch strategies spec.md
// §4.1 describes, coordinating RE surplus/deficit between the battery,
// diesel generator, and grid connection over 8,760 hourly steps. It
// generalizes the teacher's internal/simulator/engine.go central
// hour-by-hour stateful loop (an Engine owning battery/diesel/grid state,
// resetting them per run, writing one dense output array per quantity)
// from a realtime/replay model into a single synchronous pass over a fixed
// 8,760-step array, per spec.md §5.
package dispatch

import (
	"fmt"

	"microgridsim/internal/battery"
	"microgridsim/internal/diesel"
	"microgridsim/internal/gridconn"
	"microgridsim/internal/model"
)

// Result is the standard output set every dispatch strategy produces,
// spec.md §4.1: one 8,760-sample vector per quantity.
type Result struct {
	BatteryPower     []float64 // kW, + = discharge, - = charge
	BatterySOC       []float64 // fraction
	GeneratorOutput  []float64 // kW, >= 0
	GridImport       []float64 // kW, >= 0
	GridExport       []float64 // kW, >= 0
	Excess           []float64 // kW, >= 0, curtailed surplus
	Unmet            []float64 // kW, >= 0, unserved load
	DispatchMode     []int     // 0=load-following, 1=cycle-charging; combined only
}

func newResult(n int) Result {
	return Result{
		BatteryPower:    make([]float64, n),
		BatterySOC:      make([]float64, n),
		GeneratorOutput: make([]float64, n),
		GridImport:      make([]float64, n),
		GridExport:      make([]float64, n),
		Excess:          make([]float64, n),
		Unmet:           make([]float64, n),
	}
}

// Inputs bundles the physics objects and resource/load series every
// strategy consumes. Each run owns these objects exclusively: dispatch
// mutates them in place and the caller discards them after the run, per
// spec.md §3's ownership model.
type Inputs struct {
	Load     []float64 // kW, 8760
	REKW     []float64 // kW, pv_kw + wind_kw, 8760
	AmbientC []float64 // degrees C, 8760; nil defaults every hour to 25C
	Battery  *battery.BatterySystem // nil if no battery configured
	Gen      *diesel.Generator      // nil if no diesel configured
	Grid     *gridconn.Connection   // nil if no grid configured
}

// ambientAt returns the ambient temperature for hour t, defaulting to 25C
// when no weather-derived series was supplied.
func (in Inputs) ambientAt(t int) float64 {
	if in.AmbientC == nil {
		return 25.0
	}
	return in.AmbientC[t]
}

func (in Inputs) validate() error {
	if err := model.Vector8760("dispatch.load", in.Load); err != nil {
		return err
	}
	if err := model.Vector8760("dispatch.re_kw", in.REKW); err != nil {
		return err
	}
	return nil
}

// resetAll restores every owned physics object to its configured initial
// state, so repeated runs of the same scenario under different strategies
// are reproducible (spec.md §4.1's "before each run" reset requirement).
func (in Inputs) resetAll() {
	if in.Battery != nil {
		in.Battery.Reset()
	}
	if in.Gen != nil {
		in.Gen.Reset()
	}
	if in.Grid != nil {
		in.Grid.Reset()
	}
}

// batteryDischarge requests reqKW of discharge for one hour and returns the
// power actually delivered, or 0 if no battery is configured.
func batteryDischarge(b *battery.BatterySystem, reqKW, ambientC float64) float64 {
	if b == nil || reqKW <= 0 {
		return 0
	}
	return b.Discharge(reqKW, 1.0, ambientC)
}

// batteryCharge requests reqKW of charge for one hour and returns the power
// actually accepted, or 0 if no battery is configured.
func batteryCharge(b *battery.BatterySystem, reqKW, ambientC float64) float64 {
	if b == nil || reqKW <= 0 {
		return 0
	}
	return b.Charge(reqKW, 1.0, ambientC)
}

// genSimulateHour is the dispatch-facing wrapper spec.md §4.2.2 describes:
// stop (if running) on a non-positive request, else start-if-needed and
// dispatch, returning the power actually delivered.
func genSimulateHour(g *diesel.Generator, reqKW float64) float64 {
	if g == nil {
		return 0
	}
	return g.Dispatch(reqKW, 1.0)
}

func gridImport(g *gridconn.Connection, reqKW float64, hour, month int) float64 {
	if g == nil || reqKW <= 0 {
		return 0
	}
	return g.Import(reqKW, 1.0, hour, month)
}

func gridExport(g *gridconn.Connection, reqKW float64, hour, month int) float64 {
	if g == nil || reqKW <= 0 {
		return 0
	}
	return g.Export(reqKW, 1.0, hour, month)
}

func batterySOC(b *battery.BatterySystem) float64 {
	if b == nil {
		return 0
	}
	return b.SOC()
}

// CheckEnergyBalance verifies spec.md §8 property 1 for every hour: the
// supply/demand identity holds to within 1e-6 kWh. A violation is a
// contract violation (a bug), not a recoverable error.
func CheckEnergyBalance(load, re []float64, r Result) error {
	n := len(load)
	for t := 0; t < n; t++ {
		discharge := 0.0
		charge := 0.0
		if r.BatteryPower[t] > 0 {
			discharge = r.BatteryPower[t]
		} else {
			charge = -r.BatteryPower[t]
		}
		lhs := re[t] + r.GeneratorOutput[t] + r.GridImport[t] + discharge
		rhs := load[t] + charge + r.GridExport[t] + r.Excess[t] - r.Unmet[t]
		if diff := lhs - rhs; diff > 1e-6 || diff < -1e-6 {
			return fmt.Errorf("dispatch: energy balance violated at hour %d: lhs=%g rhs=%g diff=%g", t, lhs, rhs, diff)
		}
	}
	return nil
}

// CheckNonNegativity verifies spec.md §8 property 2.
func CheckNonNegativity(r Result) error {
	for t := range r.GeneratorOutput {
		if r.GeneratorOutput[t] < -1e-9 {
			return fmt.Errorf("dispatch: generator_output[%d] negative: %g", t, r.GeneratorOutput[t])
		}
		if r.GridImport[t] < -1e-9 {
			return fmt.Errorf("dispatch: grid_import[%d] negative: %g", t, r.GridImport[t])
		}
		if r.GridExport[t] < -1e-9 {
			return fmt.Errorf("dispatch: grid_export[%d] negative: %g", t, r.GridExport[t])
		}
		if r.Excess[t] < -1e-9 {
			return fmt.Errorf("dispatch: excess[%d] negative: %g", t, r.Excess[t])
		}
		if r.Unmet[t] < -1e-9 {
			return fmt.Errorf("dispatch: unmet[%d] negative: %g", t, r.Unmet[t])
		}
	}
	return nil
}
