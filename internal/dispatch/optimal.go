package dispatch

import (
	"fmt"
	"math"

	"microgridsim/internal/lp"
	"microgridsim/internal/model"
)

// UnmetPenaltyPerKWh is the LP-optimal strategy's cost penalty for unserved
// load, spec.md §4.1.4.
const UnmetPenaltyPerKWh = 10.0

// varsPerHour is the column width of one hour's block: batt_charge,
// batt_discharge, gen_out, grid_imp, grid_exp, excess, unmet, soc.
const varsPerHour = 8

const (
	colBattCharge = iota
	colBattDischarge
	colGenOut
	colGridImp
	colGridExp
	colExcess
	colUnmet
	colSOC
)

// RunOptimal implements spec.md §4.1.4: a single global LP over all 8,760
// hours, minimizing total system cost subject to the energy-balance and
// SOC-continuity constraints, solved once rather than hour-by-hour. On
// success, the physics objects' running accumulators (fuel, grid cost) are
// replayed against the solved dispatch so economics sees the same
// bookkeeping the other three strategies produce.
func RunOptimal(in Inputs) (Result, error) {
	if err := in.validate(); err != nil {
		return Result{}, err
	}
	in.resetAll()
	n := len(in.Load)

	nCols := n * varsPerHour
	nRows := 2*n + 1

	lo := make([]float64, nCols)
	hi := make([]float64, nCols)
	cost := make([]float64, nCols)
	triplets := make([]lp.Triplet, 0, nCols*3)
	b := make([]float64, nRows)

	var battCfg model.BatteryConfig
	hasBattery := in.Battery != nil
	if hasBattery {
		battCfg = in.Battery.Config()
	}
	var genCfg model.DieselConfig
	hasGen := in.Gen != nil
	if hasGen {
		genCfg = in.Gen.Config()
	}
	var gridCfg model.GridConfig
	hasGrid := in.Grid != nil
	if hasGrid {
		gridCfg = in.Grid.Config()
	}

	capacityKWh := battCfg.CapacityKWh
	sqrtEta := math.Sqrt(math.Max(battCfg.RoundTripEfficiency, 1e-6))
	initialSOCKWh := battCfg.InitialSOC * capacityKWh

	genCostPerKW := 0.0
	if hasGen && genCfg.RatedPowerKW > 0 {
		genCostPerKW = genCfg.FuelCurveA0*genCfg.FuelPricePerLiter +
			genCfg.OMCostPerHour/genCfg.RatedPowerKW + genCfg.FuelCurveA1*genCfg.FuelPricePerLiter
	}

	for t := 0; t < n; t++ {
		base := t * varsPerHour
		hour, month := t%24, model.MonthOf(t)

		lo[base+colBattCharge], hi[base+colBattCharge] = 0, valOrZero(hasBattery, battCfg.MaxChargeRateKW)
		lo[base+colBattDischarge], hi[base+colBattDischarge] = 0, valOrZero(hasBattery, battCfg.MaxDischargeRateKW)
		lo[base+colGenOut], hi[base+colGenOut] = 0, valOrZero(hasGen, genCfg.RatedPowerKW)
		lo[base+colGridImp], hi[base+colGridImp] = 0, valOrZero(hasGrid, gridCfg.MaxImportKW)
		exportCap := 0.0
		if hasGrid && gridCfg.SellBackEnabled {
			exportCap = gridCfg.MaxExportKW
		}
		lo[base+colGridExp], hi[base+colGridExp] = 0, exportCap
		lo[base+colExcess], hi[base+colExcess] = 0, math.Inf(1)
		lo[base+colUnmet], hi[base+colUnmet] = 0, math.Inf(1)
		lo[base+colSOC] = battCfg.MinSOC * capacityKWh
		hi[base+colSOC] = valOrZero(hasBattery, battCfg.MaxSOC*capacityKWh)
		if !hasBattery {
			lo[base+colSOC], hi[base+colSOC] = 0, 0
		}

		cost[base+colGenOut] = genCostPerKW
		if hasGrid {
			cost[base+colGridImp] = in.Grid.BuyPrice(hour, month)
			if gridCfg.SellBackEnabled {
				cost[base+colGridExp] = -in.Grid.SellPrice(hour, month)
			}
		}
		cost[base+colUnmet] = UnmetPenaltyPerKWh

		// Energy balance row.
		balRow := t
		triplets = append(triplets,
			lp.Triplet{Row: balRow, Col: base + colBattDischarge, Value: 1},
			lp.Triplet{Row: balRow, Col: base + colGenOut, Value: 1},
			lp.Triplet{Row: balRow, Col: base + colGridImp, Value: 1},
			lp.Triplet{Row: balRow, Col: base + colBattCharge, Value: -1},
			lp.Triplet{Row: balRow, Col: base + colGridExp, Value: -1},
			lp.Triplet{Row: balRow, Col: base + colExcess, Value: -1},
			lp.Triplet{Row: balRow, Col: base + colUnmet, Value: 1},
		)
		b[balRow] = in.Load[t] - in.REKW[t]

		// SOC continuity row.
		contRow := n + t
		triplets = append(triplets,
			lp.Triplet{Row: contRow, Col: base + colSOC, Value: 1},
			lp.Triplet{Row: contRow, Col: base + colBattCharge, Value: -sqrtEta},
			lp.Triplet{Row: contRow, Col: base + colBattDischarge, Value: 1 / sqrtEta},
		)
		if t == 0 {
			b[contRow] = initialSOCKWh
		} else {
			prevBase := (t - 1) * varsPerHour
			triplets = append(triplets, lp.Triplet{Row: contRow, Col: prevBase + colSOC, Value: -1})
			b[contRow] = 0
		}
	}

	// Cyclic SOC constraint: soc[n-1] = initial_soc*capacity.
	cyclicRow := 2 * n
	lastBase := (n - 1) * varsPerHour
	triplets = append(triplets, lp.Triplet{Row: cyclicRow, Col: lastBase + colSOC, Value: 1})
	b[cyclicRow] = initialSOCKWh

	a := lp.BuildCSC(nRows, nCols, triplets)
	problem := lp.Problem{A: a, B: b, C: cost, Lo: lo, Hi: hi}

	solved, err := lp.Solve(problem)
	if err != nil {
		return Result{}, fmt.Errorf("dispatch: LP-optimal solve failed: %w", err)
	}
	if solved.Status != lp.Optimal {
		return Result{}, fmt.Errorf("dispatch: LP-optimal did not reach optimality (status %v)", solved.Status)
	}

	r := newResult(n)
	for t := 0; t < n; t++ {
		base := t * varsPerHour
		charge := clipNeg(solved.X[base+colBattCharge])
		discharge := clipNeg(solved.X[base+colBattDischarge])
		r.BatteryPower[t] = discharge - charge
		if capacityKWh > 0 {
			r.BatterySOC[t] = solved.X[base+colSOC] / capacityKWh
		}
		r.GeneratorOutput[t] = clipNeg(solved.X[base+colGenOut])
		r.GridImport[t] = clipNeg(solved.X[base+colGridImp])
		r.GridExport[t] = clipNeg(solved.X[base+colGridExp])
		r.Excess[t] = clipNeg(solved.X[base+colExcess])
		r.Unmet[t] = clipNeg(solved.X[base+colUnmet])
	}

	replayAccumulators(in, r)
	return r, nil
}

// replayAccumulators drives the owned physics objects' hour-by-hour
// accumulators (fuel consumed, running hours, grid cost) against the
// already-solved dispatch, so downstream economics sees the same running
// totals the other three strategies produce via their stateful calls.
func replayAccumulators(in Inputs, r Result) {
	n := len(in.Load)
	for t := 0; t < n; t++ {
		hour, month := t%24, model.MonthOf(t)
		if in.Gen != nil && r.GeneratorOutput[t] > 1e-9 {
			in.Gen.Dispatch(r.GeneratorOutput[t], 1.0)
		} else if in.Gen != nil {
			in.Gen.Dispatch(0, 1.0)
		}
		if in.Grid != nil {
			if r.GridImport[t] > 1e-9 {
				in.Grid.Import(r.GridImport[t], 1.0, hour, month)
			}
			if r.GridExport[t] > 1e-9 {
				in.Grid.Export(r.GridExport[t], 1.0, hour, month)
			}
		}
	}
}

func valOrZero(has bool, v float64) float64 {
	if !has {
		return 0
	}
	return v
}

func clipNeg(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
