// Package sim wires the full run pipeline spec.md §2 lays out: resource
// simulation (PV, wind) feeds dispatch, dispatch feeds economics, and an
// optional network topology is solved last. Grounded on the teacher's
// internal/simulator package, whose top-level Simulate function performs
// exactly this kind of single-pass orchestration over already-built
// component objects.
package sim

import (
	"fmt"

	"microgridsim/internal/battery"
	"microgridsim/internal/diesel"
	"microgridsim/internal/dispatch"
	"microgridsim/internal/economics"
	"microgridsim/internal/gridconn"
	"microgridsim/internal/model"
	"microgridsim/internal/network"
	"microgridsim/internal/solar"
	"microgridsim/internal/wind"
)

// Strategy names the dispatch algorithm a run selects (spec.md §4.1).
type Strategy string

const (
	LoadFollowing Strategy = "load_following"
	CycleCharging Strategy = "cycle_charging"
	Combined      Strategy = "combined"
	Optimal       Strategy = "optimal"
)

// Options carries the run-time knobs that aren't part of a component's own
// config: the dispatch strategy and its strategy-specific thresholds, the
// economic horizon, and the optional network topology/grid code pair for
// the power-flow phase.
type Options struct {
	Strategy              Strategy
	CycleChargingSigma    float64 // default dispatch.DefaultCycleChargingSigma
	CriticalSOC           float64 // default dispatch.DefaultCriticalSOC
	RecoverySOC           float64 // default dispatch.DefaultRecoverySOC
	LifetimeYears         float64
	DiscountRate          float64
	BaselineGridRatePerKWh float64
	Site                  solar.Site
	Network               *network.Network // nil skips the power-flow phase
	GridCode              network.GridCode
	YearIndex             int // 0 = commissioning year, for PV degradation
}

// Result is the full output of one run: the resource series, the dispatch
// arrays, the lifetime economics, and (if a topology was supplied) the
// power-flow and N-1 contingency results.
type Result struct {
	PVKW        []float64
	WindKW      []float64
	REKW        []float64
	Dispatch    dispatch.Result
	Economics   economics.Result
	PowerFlow   *network.PowerFlowResult
	Contingency *network.ContingencyResult
}

// Run executes the full pipeline against a decoded component list, weather
// bundle, and load profile.
func Run(components []model.Component, weather *model.WeatherBundle, load *model.LoadProfile, opt Options) (Result, error) {
	if err := weather.Validate(); err != nil {
		return Result{}, err
	}
	if err := load.Validate(); err != nil {
		return Result{}, err
	}

	pvKW := make([]float64, model.HoursPerYear)
	windKW := make([]float64, model.HoursPerYear)

	var batt *battery.BatterySystem
	var gen *diesel.Generator
	var grid *gridconn.Connection

	for _, c := range components {
		switch c.Kind {
		case model.KindSolarPV:
			if c.PV == nil {
				continue
			}
			out, err := solar.Simulate(*c.PV, weather, opt.Site, opt.YearIndex)
			if err != nil {
				return Result{}, fmt.Errorf("sim: pv simulate: %w", err)
			}
			addInto(pvKW, out)
		case model.KindWindTurbine:
			if c.Wind == nil {
				continue
			}
			out, err := wind.Simulate(*c.Wind, weather)
			if err != nil {
				return Result{}, fmt.Errorf("sim: wind simulate: %w", err)
			}
			addInto(windKW, out)
		case model.KindBattery:
			if c.Battery == nil {
				continue
			}
			b, err := battery.New(*c.Battery)
			if err != nil {
				return Result{}, fmt.Errorf("sim: battery init: %w", err)
			}
			batt = b
		case model.KindDiesel:
			if c.Diesel == nil {
				continue
			}
			g, err := diesel.New(*c.Diesel)
			if err != nil {
				return Result{}, fmt.Errorf("sim: diesel init: %w", err)
			}
			gen = g
		case model.KindGrid:
			if c.Grid == nil {
				continue
			}
			g, err := gridconn.New(*c.Grid)
			if err != nil {
				return Result{}, fmt.Errorf("sim: grid init: %w", err)
			}
			grid = g
		}
	}

	reKW := make([]float64, model.HoursPerYear)
	for t := range reKW {
		reKW[t] = pvKW[t] + windKW[t]
	}

	dispatchIn := dispatch.Inputs{
		Load: load.HourlyKW, REKW: reKW, AmbientC: weather.TAmbC,
		Battery: batt, Gen: gen, Grid: grid,
	}

	dispatchResult, err := runStrategy(dispatchIn, opt)
	if err != nil {
		return Result{}, err
	}
	if err := dispatch.CheckEnergyBalance(load.HourlyKW, reKW, dispatchResult); err != nil {
		return Result{}, err
	}
	if err := dispatch.CheckNonNegativity(dispatchResult); err != nil {
		return Result{}, err
	}

	econ := economics.Evaluate(economics.Inputs{
		Components: components, LifetimeYears: opt.LifetimeYears, DiscountRate: opt.DiscountRate,
		AnnualLoadKWh: load.AnnualKWh(), BaselineGridRatePerKWh: opt.BaselineGridRatePerKWh,
		Diesel: dieselUsage(gen), Grid: gridUsage(grid),
	})

	result := Result{PVKW: pvKW, WindKW: windKW, REKW: reKW, Dispatch: dispatchResult, Economics: econ}

	if opt.Network != nil {
		pf, err := network.SolveAC(opt.Network)
		if err != nil || !pf.Converged {
			pf, err = network.SolveDC(opt.Network)
			if err != nil {
				return Result{}, fmt.Errorf("sim: network power flow failed: %w", err)
			}
		}
		result.PowerFlow = pf

		contingency, err := network.RunNMinus1(opt.Network, opt.GridCode)
		if err != nil {
			return Result{}, fmt.Errorf("sim: n-1 contingency screening failed: %w", err)
		}
		result.Contingency = &contingency
	}

	return result, nil
}

func runStrategy(in dispatch.Inputs, opt Options) (dispatch.Result, error) {
	switch opt.Strategy {
	case CycleCharging:
		sigma := opt.CycleChargingSigma
		if sigma == 0 {
			sigma = dispatch.DefaultCycleChargingSigma
		}
		return dispatch.RunCycleCharging(in, sigma)
	case Combined:
		critical, recovery := opt.CriticalSOC, opt.RecoverySOC
		if critical == 0 {
			critical = dispatch.DefaultCriticalSOC
		}
		if recovery == 0 {
			recovery = dispatch.DefaultRecoverySOC
		}
		return dispatch.RunCombined(in, critical, recovery)
	case Optimal:
		return dispatch.RunOptimal(in)
	default:
		return dispatch.RunLoadFollowing(in)
	}
}

func dieselUsage(g *diesel.Generator) *economics.DieselUsage {
	if g == nil {
		return nil
	}
	state := g.GetState()
	cfg := g.Config()
	return &economics.DieselUsage{
		OutputKWh: state.EnergyKWh, FuelLitersUsed: state.FuelLitersUsed,
		HoursRun: state.HoursRun, FuelPricePerLiter: cfg.FuelPricePerLiter,
		OMCostPerHour: cfg.OMCostPerHour, StartCostTotal: state.StartCostTotal,
	}
}

func gridUsage(g *gridconn.Connection) *economics.GridUsage {
	if g == nil {
		return nil
	}
	state := g.GetState()
	return &economics.GridUsage{
		ImportKWh: state.ImportKWh, ImportCost: state.ImportCost,
		ExportRevenue: state.ExportRevenue, DemandChargeAnnual: g.DemandChargeCost(),
		GridIntensityKgPerKWh: g.Config().GridIntensityKgPerKWh,
	}
}

func addInto(dst, src []float64) {
	for i, v := range src {
		dst[i] += v
	}
}
