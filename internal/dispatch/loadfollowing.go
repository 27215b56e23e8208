package dispatch

import "microgridsim/internal/model"

// RunLoadFollowing implements spec.md §4.1.1: the generator serves only
// the instantaneous residual deficit after battery discharge; on surplus,
// the battery charges first, then the grid exports, then the remainder is
// curtailed as excess.
func RunLoadFollowing(in Inputs) (Result, error) {
	if err := in.validate(); err != nil {
		return Result{}, err
	}
	in.resetAll()
	n := len(in.Load)
	r := newResult(n)

	for t := 0; t < n; t++ {
		hour, month := t%24, model.MonthOf(t)
		ambient := in.ambientAt(t)
		net := in.REKW[t] - in.Load[t]
		if net >= 0 {
			dispatchLFSurplus(in, t, hour, month, ambient, net, &r)
		} else {
			dispatchLFDeficit(in, t, hour, month, ambient, -net, &r)
		}
		r.BatterySOC[t] = batterySOC(in.Battery)
	}
	return r, nil
}

// dispatchLFSurplus handles one hour of RE surplus under the
// load-following priority order: battery charge, then grid export, then
// curtailment. The generator is stopped if it was running.
func dispatchLFSurplus(in Inputs, t, hour, month int, ambient, surplus float64, r *Result) {
	if in.Gen != nil {
		genSimulateHour(in.Gen, 0)
	}
	accepted := batteryCharge(in.Battery, surplus, ambient)
	r.BatteryPower[t] = -accepted
	remainder := surplus - accepted
	exported := gridExport(in.Grid, remainder, hour, month)
	r.GridExport[t] = exported
	r.Excess[t] = remainder - exported
}

// dispatchLFDeficit handles one hour of RE deficit under the
// load-following priority order: battery discharge, then generator (whose
// delivered output matches the residual, clamped to its own limits), then
// grid import, with any remainder recorded as unmet. Generator output held
// above the residual by its minimum-load floor is exported, then curtailed.
func dispatchLFDeficit(in Inputs, t, hour, month int, ambient, deficit float64, r *Result) {
	delivered := batteryDischarge(in.Battery, deficit, ambient)
	r.BatteryPower[t] = delivered
	deficit -= delivered

	genOut := genSimulateHour(in.Gen, deficit)
	r.GeneratorOutput[t] = genOut
	deficit -= genOut
	if deficit < 0 {
		over := -deficit
		exported := gridExport(in.Grid, over, hour, month)
		r.GridExport[t] = exported
		r.Excess[t] = over - exported
		return
	}

	imported := gridImport(in.Grid, deficit, hour, month)
	r.GridImport[t] = imported
	r.Unmet[t] = deficit - imported
}
