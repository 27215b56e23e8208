// Package diesel implements the diesel generator dispatch model spec.md
// §4.2.2 describes: a HOMER-convention linear fuel curve, a minimum-load
// ratio floor, and running accumulators for fuel consumed and hours run,
// following the accumulator style of the teacher's internal/simulator
// package (Summary's running kWh/PLN totals updated once per hour).
package diesel

import (
	"fmt"

	"microgridsim/internal/model"
)

// Generator is the stateful diesel genset model, mutated once per
// simulated hour.
type Generator struct {
	cfg model.DieselConfig

	running        bool
	hoursRun       float64
	fuelLitersUsed float64
	starts         int
	energyKWh      float64
	startCostTotal float64
}

// New constructs a Generator from its configuration, applying HOMER-curve
// defaults for any zero fuel-curve coefficients.
func New(cfg model.DieselConfig) (*Generator, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg}, nil
}

// MinLoadKW is the minimum dispatchable power the genset may be run at
// (spec.md §4.2.2's min_load_ratio floor).
func (g *Generator) MinLoadKW() float64 {
	return g.cfg.MinLoadRatio * g.cfg.RatedPowerKW
}

// RatedKW is the genset's nameplate capacity.
func (g *Generator) RatedKW() float64 { return g.cfg.RatedPowerKW }

// IsRunning reports whether the generator is running at the end of the
// most recently dispatched hour, used by strategies (cycle-charging,
// combined) that condition this hour's decision on the prior hour's state.
func (g *Generator) IsRunning() bool { return g.running }

// Config returns the generator's static configuration, for callers (such
// as the LP-optimal dispatch strategy) that build a cost model without
// driving the stateful dispatch contract.
func (g *Generator) Config() model.DieselConfig { return g.cfg }

// Dispatch runs the generator for dtHours at the requested power, clamping
// to [min_load, rated] when the request is nonzero, and returns the power
// actually delivered. A request of 0 stops the generator for the step.
func (g *Generator) Dispatch(reqKW, dtHours float64) float64 {
	if reqKW <= 0 || dtHours <= 0 {
		g.running = false
		return 0
	}

	deliveredKW := reqKW
	if deliveredKW < g.MinLoadKW() {
		deliveredKW = g.MinLoadKW()
	}
	if deliveredKW > g.cfg.RatedPowerKW {
		deliveredKW = g.cfg.RatedPowerKW
	}

	if !g.running {
		g.starts++
		g.startCostTotal += g.cfg.StartCost
	}
	g.running = true

	litersPerHour := g.fuelRateLitersPerHour(deliveredKW)
	g.fuelLitersUsed += litersPerHour * dtHours
	g.hoursRun += dtHours
	g.energyKWh += deliveredKW * dtHours

	return deliveredKW
}

// fuelRateLitersPerHour implements the HOMER linear fuel curve:
// F(P) = a0*P_rated + a1*P, the standard two-coefficient approximation
// (spec.md §4.2.2) with defaults a0=0.0845, a1=0.2460 L/hr/kW.
func (g *Generator) fuelRateLitersPerHour(deliveredKW float64) float64 {
	return g.cfg.FuelCurveA0*g.cfg.RatedPowerKW + g.cfg.FuelCurveA1*deliveredKW
}

// FuelEfficiencyLPerKWh returns the marginal fuel efficiency (liters per
// kWh delivered) at the given output power, used for dispatch comparisons.
func (g *Generator) FuelEfficiencyLPerKWh(deliveredKW float64) float64 {
	if deliveredKW <= 0 {
		return 0
	}
	return g.fuelRateLitersPerHour(deliveredKW) / deliveredKW
}

// State is the running-total snapshot exposed for reporting and economics.
type State struct {
	HoursRun       float64
	FuelLitersUsed float64
	Starts         int
	EnergyKWh      float64
	StartCostTotal float64
}

// GetState returns the current running totals.
func (g *Generator) GetState() State {
	return State{
		HoursRun:       g.hoursRun,
		FuelLitersUsed: g.fuelLitersUsed,
		Starts:         g.starts,
		EnergyKWh:      g.energyKWh,
		StartCostTotal: g.startCostTotal,
	}
}

// Reset clears the running totals for a fresh simulation pass.
func (g *Generator) Reset() {
	g.running = false
	g.hoursRun = 0
	g.fuelLitersUsed = 0
	g.starts = 0
	g.energyKWh = 0
	g.startCostTotal = 0
}

// CheckHours reports an error once the generator's running hours exceed its
// rated lifetime hours, the equivalent of the battery's cycle-life bound.
func (g *Generator) CheckHours() error {
	if g.cfg.LifetimeHours > 0 && g.hoursRun > g.cfg.LifetimeHours {
		return fmt.Errorf("diesel: %.1f running hours exceeds rated lifetime of %.1f", g.hoursRun, g.cfg.LifetimeHours)
	}
	return nil
}
