package dispatch

import "microgridsim/internal/model"

// DefaultCycleChargingSigma is the SOC threshold below which the generator
// is kept running at rated power, per spec.md §4.1.2.
const DefaultCycleChargingSigma = 0.80

// RunCycleCharging implements spec.md §4.1.2. Unlike load-following, the
// generator — once eligible (SOC below sigma, or already running) — always
// runs at rated power rather than matching the residual deficit; its
// excess over the deficit cascades into battery charge, then grid export,
// then curtailment.
func RunCycleCharging(in Inputs, sigma float64) (Result, error) {
	if err := in.validate(); err != nil {
		return Result{}, err
	}
	if sigma <= 0 {
		sigma = DefaultCycleChargingSigma
	}
	in.resetAll()
	n := len(in.Load)
	r := newResult(n)

	for t := 0; t < n; t++ {
		hour, month := t%24, model.MonthOf(t)
		ambient := in.ambientAt(t)
		net := in.REKW[t] - in.Load[t]
		genWasRunning := in.Gen != nil && in.Gen.IsRunning()
		soc := batterySOC(in.Battery)

		if net >= 0 {
			dispatchCCSurplus(in, t, hour, month, ambient, net, genWasRunning, soc, sigma, &r)
		} else {
			dispatchCCDeficit(in, t, hour, month, ambient, -net, genWasRunning, soc, sigma, &r)
		}
		r.BatterySOC[t] = batterySOC(in.Battery)
	}
	return r, nil
}

func dispatchCCSurplus(in Inputs, t, hour, month int, ambient, surplus float64, genWasRunning bool, soc, sigma float64, r *Result) {
	eligible := genWasRunning && soc < sigma
	var genOut float64
	if eligible && in.Gen != nil {
		genOut = genSimulateHour(in.Gen, in.Gen.RatedKW())
	} else if in.Gen != nil {
		genSimulateHour(in.Gen, 0)
	}
	r.GeneratorOutput[t] = genOut

	pool := surplus + genOut
	accepted := batteryCharge(in.Battery, pool, ambient)
	r.BatteryPower[t] = -accepted
	remainder := pool - accepted
	exported := gridExport(in.Grid, remainder, hour, month)
	r.GridExport[t] = exported
	r.Excess[t] = remainder - exported
}

func dispatchCCDeficit(in Inputs, t, hour, month int, ambient, deficit float64, genWasRunning bool, soc, sigma float64, r *Result) {
	eligible := soc < sigma || genWasRunning

	if !eligible || in.Gen == nil {
		if in.Gen != nil {
			genSimulateHour(in.Gen, 0)
		}
		delivered := batteryDischarge(in.Battery, deficit, ambient)
		r.BatteryPower[t] = delivered
		deficit -= delivered
		imported := gridImport(in.Grid, deficit, hour, month)
		r.GridImport[t] = imported
		r.Unmet[t] = deficit - imported
		return
	}

	genOut := genSimulateHour(in.Gen, in.Gen.RatedKW())
	r.GeneratorOutput[t] = genOut
	netAfterGen := genOut - deficit

	if netAfterGen >= 0 {
		accepted := batteryCharge(in.Battery, netAfterGen, ambient)
		r.BatteryPower[t] = -accepted
		remainder := netAfterGen - accepted
		exported := gridExport(in.Grid, remainder, hour, month)
		r.GridExport[t] = exported
		r.Excess[t] = remainder - exported
		return
	}

	need := -netAfterGen
	delivered := batteryDischarge(in.Battery, need, ambient)
	r.BatteryPower[t] = delivered
	need -= delivered
	imported := gridImport(in.Grid, need, hour, month)
	r.GridImport[t] = imported
	r.Unmet[t] = need - imported
}
