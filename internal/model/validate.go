package model

import "fmt"

// ConfigError identifies the offending field of a rejected component config.
type ConfigError struct {
	Field  string
	Detail string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Detail)
}

func cfgErr(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Detail: fmt.Sprintf(format, args...)}
}

// Validate checks a PVConfig against spec.md §6.1's required ranges.
func (c *PVConfig) Validate() error {
	if c.CapacityKWp <= 0 {
		return cfgErr("solar_pv.capacity_kwp", "must be > 0, got %g", c.CapacityKWp)
	}
	if c.TiltDeg < 0 || c.TiltDeg > 90 {
		return cfgErr("solar_pv.tilt_deg", "must be in [0,90], got %g", c.TiltDeg)
	}
	if c.AzimuthDeg < 0 || c.AzimuthDeg > 360 {
		return cfgErr("solar_pv.azimuth_deg", "must be in [0,360], got %g", c.AzimuthDeg)
	}
	return nil
}

// Validate checks a WindConfig.
func (c *WindConfig) Validate() error {
	if c.RatedPowerKW <= 0 {
		return cfgErr("wind_turbine.rated_power_kw", "must be > 0, got %g", c.RatedPowerKW)
	}
	if c.HubHeightM <= 0 {
		return cfgErr("wind_turbine.hub_height_m", "must be > 0, got %g", c.HubHeightM)
	}
	if c.RotorDiameterM <= 0 {
		return cfgErr("wind_turbine.rotor_diameter_m", "must be > 0, got %g", c.RotorDiameterM)
	}
	if c.CutInSpeed > 0 && c.RatedSpeed > 0 && c.CutInSpeed >= c.RatedSpeed {
		return cfgErr("wind_turbine.cut_in_speed", "must be < rated_speed")
	}
	if c.RatedSpeed > 0 && c.CutOutSpeed > 0 && c.RatedSpeed >= c.CutOutSpeed {
		return cfgErr("wind_turbine.rated_speed", "must be < cut_out_speed")
	}
	return nil
}

// Validate checks a BatteryConfig.
func (c *BatteryConfig) Validate() error {
	if c.CapacityKWh <= 0 {
		return cfgErr("battery.capacity_kwh", "must be > 0, got %g", c.CapacityKWh)
	}
	if c.MaxChargeRateKW <= 0 {
		return cfgErr("battery.max_charge_rate_kw", "must be > 0, got %g", c.MaxChargeRateKW)
	}
	if c.MaxDischargeRateKW <= 0 {
		return cfgErr("battery.max_discharge_rate_kw", "must be > 0, got %g", c.MaxDischargeRateKW)
	}
	if c.RoundTripEfficiency <= 0 || c.RoundTripEfficiency > 1 {
		return cfgErr("battery.round_trip_efficiency", "must be in (0,1], got %g", c.RoundTripEfficiency)
	}
	if c.MinSOC < 0 || c.MinSOC > 1 {
		return cfgErr("battery.min_soc", "must be in [0,1], got %g", c.MinSOC)
	}
	if c.MaxSOC < 0 || c.MaxSOC > 1 {
		return cfgErr("battery.max_soc", "must be in [0,1], got %g", c.MaxSOC)
	}
	if c.MinSOC >= c.MaxSOC {
		return cfgErr("battery.min_soc", "must be < max_soc (min=%g max=%g)", c.MinSOC, c.MaxSOC)
	}
	if c.InitialSOC < c.MinSOC || c.InitialSOC > c.MaxSOC {
		return cfgErr("battery.initial_soc", "must be in [min_soc,max_soc], got %g", c.InitialSOC)
	}
	if c.KiBaMC <= 0 || c.KiBaMC >= 1 {
		return cfgErr("battery.kibam_c", "must be in (0,1), got %g", c.KiBaMC)
	}
	if c.KiBaMK <= 0 {
		return cfgErr("battery.kibam_k", "must be > 0, got %g", c.KiBaMK)
	}
	return nil
}

// Validate checks a DieselConfig.
func (c *DieselConfig) Validate() error {
	if c.RatedPowerKW <= 0 {
		return cfgErr("diesel_generator.rated_power_kw", "must be > 0, got %g", c.RatedPowerKW)
	}
	if c.MinLoadRatio <= 0 || c.MinLoadRatio >= 1 {
		return cfgErr("diesel_generator.min_load_ratio", "must be in (0,1), got %g", c.MinLoadRatio)
	}
	if c.FuelPricePerLiter < 0 {
		return cfgErr("diesel_generator.fuel_price_per_liter", "must be >= 0, got %g", c.FuelPricePerLiter)
	}
	return nil
}

// Validate checks a GridConfig.
func (c *GridConfig) Validate() error {
	if c.MaxImportKW < 0 {
		return cfgErr("grid_connection.max_import_kw", "must be >= 0, got %g", c.MaxImportKW)
	}
	if c.MaxExportKW < 0 {
		return cfgErr("grid_connection.max_export_kw", "must be >= 0, got %g", c.MaxExportKW)
	}
	for i, p := range c.TOUSchedule {
		if p.Buy < p.Sell {
			return cfgErr("grid_connection.tou_schedule", "period %d (%s): buy (%g) must be >= sell (%g)", i, p.Name, p.Buy, p.Sell)
		}
	}
	return nil
}

// Validate dispatches to the variant's Validate method.
func (c *Component) Validate() error {
	switch c.Kind {
	case KindSolarPV:
		if c.PV == nil {
			return cfgErr("solar_pv", "missing config body")
		}
		return c.PV.Validate()
	case KindWindTurbine:
		if c.Wind == nil {
			return cfgErr("wind_turbine", "missing config body")
		}
		return c.Wind.Validate()
	case KindBattery:
		if c.Battery == nil {
			return cfgErr("battery", "missing config body")
		}
		return c.Battery.Validate()
	case KindDiesel:
		if c.Diesel == nil {
			return cfgErr("diesel_generator", "missing config body")
		}
		return c.Diesel.Validate()
	case KindGrid:
		if c.Grid == nil {
			return cfgErr("grid_connection", "missing config body")
		}
		return c.Grid.Validate()
	default:
		return cfgErr("component", "unknown kind %d", c.Kind)
	}
}

// WithDefaults returns a copy of c with zero-valued optional fields replaced
// by spec.md §6's documented defaults.
func (c BatteryConfig) WithDefaults() BatteryConfig {
	if c.RoundTripEfficiency == 0 {
		c.RoundTripEfficiency = 0.9
	}
	if c.MaxSOC == 0 {
		c.MaxSOC = 1.0
	}
	if c.InitialSOC == 0 {
		c.InitialSOC = c.MinSOC
	}
	if c.KiBaMC == 0 {
		c.KiBaMC = 0.5
	}
	if c.KiBaMK == 0 {
		c.KiBaMK = 2.0
	}
	return c
}

// WithDefaults fills in HOMER-convention fuel-curve defaults (spec.md §4.2.2).
func (c DieselConfig) WithDefaults() DieselConfig {
	if c.MinLoadRatio == 0 {
		c.MinLoadRatio = 0.3
	}
	if c.FuelCurveA0 == 0 {
		c.FuelCurveA0 = 0.0845
	}
	if c.FuelCurveA1 == 0 {
		c.FuelCurveA1 = 0.2460
	}
	return c
}
