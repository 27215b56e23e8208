// Package battery implements the stateful rate-dependent battery model
// spec.md §4.2.1 describes: a KiBaM two-well kinetic power cap, a
// Coulomb-counting SOC tracker, and a simplified rainflow/Wöhler/Arrhenius
// degradation model, combined behind the charge/discharge contract the
// teacher's internal/simulator/battery.go establishes (a stateful object
// mutated once per hour, owned exclusively by its run).
package battery

import (
	"fmt"
	"math"

	"microgridsim/internal/model"
)

// State is the externally-visible snapshot get_state() returns.
type State struct {
	SOC              float64 // fraction, [min_soc, max_soc]
	CapacityRemaining float64 // kWh, after degradation fade
	Cycles           float64
	ThroughputKWh    float64
}

// BatterySystem is the run-owned, hour-by-hour mutated battery model.
type BatterySystem struct {
	cfg model.BatteryConfig

	kin   kibam
	deg   *degradation

	soc          float64 // fraction of nameplate capacity
	throughputKWh float64
	elapsedHours float64
}

// New constructs a BatterySystem at its configured initial SOC.
func New(cfg model.BatteryConfig) (*BatterySystem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &BatterySystem{
		cfg: cfg,
		kin: newKibam(cfg.KiBaMC, cfg.KiBaMK, cfg.CapacityKWh),
		deg: newDegradation(cfg.Chemistry, cfg.CycleLife),
		soc: cfg.InitialSOC,
	}, nil
}

// Reset returns the battery to its configured initial state, for
// reproducible re-runs of the same scenario under a different strategy.
func (b *BatterySystem) Reset() {
	b.soc = b.cfg.InitialSOC
	b.throughputKWh = 0
	b.elapsedHours = 0
	b.deg = newDegradation(b.cfg.Chemistry, b.cfg.CycleLife)
}

// SOC returns the current state of charge, a fraction in [min_soc, max_soc].
func (b *BatterySystem) SOC() float64 { return b.soc }

// Config returns the battery's static configuration, for callers (such as
// the LP-optimal dispatch strategy) that need the nameplate parameters
// without going through the stateful charge/discharge contract.
func (b *BatterySystem) Config() model.BatteryConfig { return b.cfg }

// capacityRemaining is the nameplate capacity derated by cumulative fade.
func (b *BatterySystem) capacityRemaining() float64 {
	return b.cfg.CapacityKWh * (1 - b.deg.fadeFraction())
}

// MaxDischargePower returns the KiBaM-kinetic, bottom-taper-limited
// instantaneous discharge power available at the current SOC.
func (b *BatterySystem) MaxDischargePower() float64 {
	return b.kin.maxDischargePower(b.normalizedSOC(), b.cfg.MaxDischargeRateKW)
}

// MaxChargePower returns the KiBaM-kinetic, top-taper-limited instantaneous
// charge power available at the current SOC.
func (b *BatterySystem) MaxChargePower() float64 {
	return b.kin.maxChargePower(b.normalizedSOC(), b.cfg.MaxChargeRateKW)
}

// normalizedSOC maps the working SOC (which lives in [min_soc,max_soc]) onto
// [0,1] of usable range for the KiBaM taper, which is referenced to the
// nameplate window the battery is allowed to cycle within.
func (b *BatterySystem) normalizedSOC() float64 {
	span := b.cfg.MaxSOC - b.cfg.MinSOC
	if span <= 0 {
		return 0
	}
	return (b.soc - b.cfg.MinSOC) / span
}

// Discharge requests P kW of discharge power sustained for dtHours, and
// returns the power actually delivered (kW, >= 0) after the KiBaM cap,
// degradation derate, and SOC-floor clamp are applied.
func (b *BatterySystem) Discharge(reqKW, dtHours, ambientC float64) float64 {
	if reqKW <= 0 || dtHours <= 0 {
		return 0
	}
	capKW := math.Min(reqKW, b.MaxDischargePower())
	fade := 1 - b.deg.fadeFraction()
	if fade < 0.2 {
		fade = 0.2
	}
	capKW *= fade

	capacityKWh := b.capacityRemaining()
	floorKWh := b.cfg.MinSOC * capacityKWh
	socKWh := b.soc * capacityKWh

	// Coulomb counting: delivering P*dt kWh at the bus draws P*dt/sqrt(eta)
	// from the internal store.
	sqrtEta := math.Sqrt(b.cfg.RoundTripEfficiency)
	maxDeliverableKWh := (socKWh - floorKWh) * sqrtEta
	requestedKWh := capKW * dtHours
	if requestedKWh > maxDeliverableKWh {
		requestedKWh = maxDeliverableKWh
		if dtHours > 0 {
			capKW = requestedKWh / dtHours
		} else {
			capKW = 0
		}
	}
	if requestedKWh < 0 {
		requestedKWh = 0
		capKW = 0
	}

	internalDrawKWh := requestedKWh / sqrtEta
	socKWh -= internalDrawKWh
	b.setSOCFromKWh(socKWh, capacityKWh)

	b.deg.recordSOC(b.soc)
	b.deg.recordHours(dtHours, ambientC)
	b.elapsedHours += dtHours
	b.throughputKWh += math.Abs(internalDrawKWh)

	return capKW
}

// Charge requests P kW of charge power sustained for dtHours, and returns
// the power actually accepted (kW, >= 0).
func (b *BatterySystem) Charge(reqKW, dtHours, ambientC float64) float64 {
	if reqKW <= 0 || dtHours <= 0 {
		return 0
	}
	capKW := math.Min(reqKW, b.MaxChargePower())
	fade := 1 - b.deg.fadeFraction()
	if fade < 0.2 {
		fade = 0.2
	}
	capKW *= fade

	capacityKWh := b.capacityRemaining()
	ceilKWh := b.cfg.MaxSOC * capacityKWh
	socKWh := b.soc * capacityKWh

	sqrtEta := math.Sqrt(b.cfg.RoundTripEfficiency)
	maxAcceptableKWh := (ceilKWh - socKWh) / sqrtEta
	requestedKWh := capKW * dtHours
	if requestedKWh > maxAcceptableKWh {
		requestedKWh = maxAcceptableKWh
		if dtHours > 0 {
			capKW = requestedKWh / dtHours
		} else {
			capKW = 0
		}
	}
	if requestedKWh < 0 {
		requestedKWh = 0
		capKW = 0
	}

	storedKWh := requestedKWh * sqrtEta
	socKWh += storedKWh
	b.setSOCFromKWh(socKWh, capacityKWh)

	b.deg.recordSOC(b.soc)
	b.deg.recordHours(dtHours, ambientC)
	b.elapsedHours += dtHours
	b.throughputKWh += math.Abs(storedKWh)

	return capKW
}

func (b *BatterySystem) setSOCFromKWh(socKWh, capacityKWh float64) {
	if capacityKWh <= 0 {
		b.soc = b.cfg.MinSOC
		return
	}
	soc := socKWh / capacityKWh
	if soc < b.cfg.MinSOC {
		soc = b.cfg.MinSOC
	}
	if soc > b.cfg.MaxSOC {
		soc = b.cfg.MaxSOC
	}
	b.soc = soc
}

// GetState refreshes the degradation model and returns a State snapshot.
func (b *BatterySystem) GetState() State {
	return State{
		SOC:               b.soc,
		CapacityRemaining: b.capacityRemaining(),
		Cycles:            b.deg.cycles(),
		ThroughputKWh:     b.throughputKWh,
	}
}

// CheckBounds verifies the SOC invariant from spec.md §3/§8: min_soc <= soc
// <= max_soc. A violation is a contract violation, not a recoverable error.
func (b *BatterySystem) CheckBounds() error {
	if b.soc < b.cfg.MinSOC-1e-9 || b.soc > b.cfg.MaxSOC+1e-9 {
		return fmt.Errorf("battery: SOC %g escaped bounds [%g,%g]", b.soc, b.cfg.MinSOC, b.cfg.MaxSOC)
	}
	return nil
}
