// Package config decodes YAML scenario documents into validated
// internal/model types, following the teacher's go.mod dependency on
// gopkg.in/yaml.v3 (there pulled in transitively; here a direct, primary
// ingestion path for the tagged component-config union spec.md §6 defines).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"microgridsim/internal/model"
)

// Scenario is the top-level decoded document: component configs, the
// project horizon, and paths to the weather/load CSV inputs consumed by
// internal/ingest.
type Scenario struct {
	LifetimeYears float64          `yaml:"lifetime_years"`
	DiscountRate  float64          `yaml:"discount_rate"`
	Strategy      string           `yaml:"strategy"` // load_following | cycle_charging | combined | optimal
	CycleCharging CycleChargingCfg `yaml:"cycle_charging"`
	Combined      CombinedCfg      `yaml:"combined"`
	Components    []componentYAML  `yaml:"components"`
	WeatherCSV    string           `yaml:"weather_csv"`
	LoadCSV       string           `yaml:"load_csv"`
	Latitude      float64          `yaml:"latitude"`
	Longitude     float64          `yaml:"longitude"`
}

// CycleChargingCfg carries the cycle-charging strategy's SOC threshold.
type CycleChargingCfg struct {
	Sigma float64 `yaml:"sigma"` // default 0.80
}

// CombinedCfg carries the combined/hysteresis strategy's SOC band.
type CombinedCfg struct {
	CriticalSOC float64 `yaml:"critical_soc"` // default 0.30
	RecoverySOC float64 `yaml:"recovery_soc"` // default 0.70
}

// componentYAML is the tagged-union wire format: "type" selects which of
// the type-specific blocks is populated.
type componentYAML struct {
	Type    string               `yaml:"type"`
	PV      *model.PVConfig      `yaml:"pv,omitempty"`
	Wind    *windYAML            `yaml:"wind,omitempty"`
	Battery *model.BatteryConfig `yaml:"battery,omitempty"`
	Diesel  *model.DieselConfig  `yaml:"diesel,omitempty"`
	Grid    *gridYAML            `yaml:"grid,omitempty"`
}

type windYAML struct {
	RatedPowerKW     float64              `yaml:"rated_power_kw"`
	HubHeightM       float64              `yaml:"hub_height_m"`
	RotorDiameterM   float64              `yaml:"rotor_diameter_m"`
	CutInSpeed       float64              `yaml:"cut_in_speed"`
	RatedSpeed       float64              `yaml:"rated_speed"`
	CutOutSpeed      float64              `yaml:"cut_out_speed"`
	PowerCurve       []model.PowerCurvePoint `yaml:"power_curve"`
	Quantity         int                  `yaml:"quantity"`
	CapitalCostPerKW float64              `yaml:"capital_cost_per_kw"`
	OMCostPerKWYear  float64              `yaml:"om_cost_per_kw_year"`
	LifetimeYears    float64              `yaml:"lifetime_years"`
}

type gridYAML struct {
	MaxImportKW           float64           `yaml:"max_import_kw"`
	MaxExportKW            float64           `yaml:"max_export_kw"`
	SellBackEnabled         bool              `yaml:"sell_back_enabled"`
	NetMetering             bool              `yaml:"net_metering"`
	BuyRate                 float64           `yaml:"buy_rate"`
	SellRate                float64           `yaml:"sell_rate"`
	DemandChargePerKW       float64           `yaml:"demand_charge"`
	TOUSchedule             []model.TOUPeriod `yaml:"tou_schedule"`
	GridIntensityKgPerKWh   float64           `yaml:"grid_intensity_kg_per_kwh"`
}

// Load reads and decodes a scenario YAML file from path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := s.applyDefaults(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) applyDefaults() error {
	if s.CycleCharging.Sigma == 0 {
		s.CycleCharging.Sigma = 0.80
	}
	if s.Combined.CriticalSOC == 0 {
		s.Combined.CriticalSOC = 0.30
	}
	if s.Combined.RecoverySOC == 0 {
		s.Combined.RecoverySOC = 0.70
	}
	if s.Combined.CriticalSOC >= s.Combined.RecoverySOC {
		return fmt.Errorf("config: combined.critical_soc (%g) must be < combined.recovery_soc (%g)",
			s.Combined.CriticalSOC, s.Combined.RecoverySOC)
	}
	return nil
}

// Components converts the decoded YAML components into the tagged-union
// model.Component slice, validating each one.
func (s *Scenario) Components() ([]model.Component, error) {
	out := make([]model.Component, 0, len(s.Components))
	for i, c := range s.Components {
		comp, err := c.toModel()
		if err != nil {
			return nil, fmt.Errorf("config: components[%d]: %w", i, err)
		}
		if err := comp.Validate(); err != nil {
			return nil, fmt.Errorf("config: components[%d]: %w", i, err)
		}
		out = append(out, comp)
	}
	return out, nil
}

func (c *componentYAML) toModel() (model.Component, error) {
	switch c.Type {
	case "solar_pv":
		if c.PV == nil {
			return model.Component{}, fmt.Errorf("type solar_pv requires a pv: block")
		}
		return model.Component{Kind: model.KindSolarPV, PV: c.PV}, nil
	case "wind_turbine":
		if c.Wind == nil {
			return model.Component{}, fmt.Errorf("type wind_turbine requires a wind: block")
		}
		w := c.Wind
		return model.Component{Kind: model.KindWindTurbine, Wind: &model.WindConfig{
			RatedPowerKW: w.RatedPowerKW, HubHeightM: w.HubHeightM, RotorDiameterM: w.RotorDiameterM,
			CutInSpeed: w.CutInSpeed, RatedSpeed: w.RatedSpeed, CutOutSpeed: w.CutOutSpeed,
			PowerCurve: w.PowerCurve, Quantity: w.Quantity, CapitalCostPerKW: w.CapitalCostPerKW,
			OMCostPerKWYear: w.OMCostPerKWYear, LifetimeYears: w.LifetimeYears,
		}}, nil
	case "battery":
		if c.Battery == nil {
			return model.Component{}, fmt.Errorf("type battery requires a battery: block")
		}
		b := c.Battery.WithDefaults()
		return model.Component{Kind: model.KindBattery, Battery: &b}, nil
	case "diesel_generator":
		if c.Diesel == nil {
			return model.Component{}, fmt.Errorf("type diesel_generator requires a diesel: block")
		}
		d := c.Diesel.WithDefaults()
		return model.Component{Kind: model.KindDiesel, Diesel: &d}, nil
	case "grid_connection":
		g := c.Grid
		if g == nil {
			g = &gridYAML{}
		}
		return model.Component{Kind: model.KindGrid, Grid: &model.GridConfig{
			MaxImportKW: g.MaxImportKW, MaxExportKW: g.MaxExportKW, SellBackEnabled: g.SellBackEnabled,
			NetMetering: g.NetMetering, BuyRate: g.BuyRate, SellRate: g.SellRate,
			DemandChargePerKW: g.DemandChargePerKW, TOUSchedule: g.TOUSchedule,
			GridIntensityKgPerKWh: g.GridIntensityKgPerKWh,
		}}, nil
	default:
		return model.Component{}, fmt.Errorf("unknown component type %q", c.Type)
	}
}
