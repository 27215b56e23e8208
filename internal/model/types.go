// Package model holds the domain types shared across the simulation core:
// the weather/load inputs, the component-config tagged union, and the
// small time-range helper used by the ingestion and dispatch layers.
package model

import (
	"fmt"
	"time"
)

// HoursPerYear is the fixed length of every time series the core consumes
// or produces: one non-leap reference year, hour-ending samples.
const HoursPerYear = 8760

// MonthBoundaries gives the hour-of-year index at which each calendar month
// starts, terminated by 8760. Month m (0-indexed) covers
// [MonthBoundaries[m], MonthBoundaries[m+1]).
var MonthBoundaries = [13]int{0, 744, 1416, 2160, 2880, 3624, 4344, 5088, 5832, 6552, 7296, 8016, 8760}

// MonthOf returns the 0-indexed calendar month (0=Jan) containing hour-of-year t.
func MonthOf(t int) int {
	for m := 0; m < 12; m++ {
		if t >= MonthBoundaries[m] && t < MonthBoundaries[m+1] {
			return m
		}
	}
	return 11
}

// HourOfDay returns t's hour within its day, 0-23.
func HourOfDay(t int) int {
	return t % 24
}

// TimeRange is an inclusive-start, exclusive-end span of wall-clock time.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Vector8760 validates that v has exactly HoursPerYear samples.
func Vector8760(name string, v []float64) error {
	if len(v) != HoursPerYear {
		return fmt.Errorf("%s: expected %d samples, got %d", name, HoursPerYear, len(v))
	}
	return nil
}

// WeatherBundle holds one reference year of resource data, five dense
// 8,760-sample vectors. Built once at run start, read-only thereafter.
type WeatherBundle struct {
	GHI       []float64 // W/m^2, global horizontal irradiance
	DNI       []float64 // W/m^2, direct normal irradiance
	DHI       []float64 // W/m^2, diffuse horizontal irradiance
	TAmbC     []float64 // ambient temperature, degrees C
	WindSpeed []float64 // m/s at 10 m nominal measurement height
}

// Validate checks every vector has the required shape.
func (w *WeatherBundle) Validate() error {
	for name, v := range map[string][]float64{
		"ghi": w.GHI, "dni": w.DNI, "dhi": w.DHI,
		"t_amb": w.TAmbC, "wind_speed": w.WindSpeed,
	} {
		if err := Vector8760("weather."+name, v); err != nil {
			return err
		}
	}
	return nil
}

// LoadProfile is the demand signal for the reference year.
type LoadProfile struct {
	HourlyKW []float64
}

// Validate checks the shape and non-negativity of the load vector.
func (l *LoadProfile) Validate() error {
	if err := Vector8760("load.hourly_kw", l.HourlyKW); err != nil {
		return err
	}
	for i, v := range l.HourlyKW {
		if v < 0 {
			return fmt.Errorf("load.hourly_kw[%d]: negative load %g", i, v)
		}
	}
	return nil
}

// AnnualKWh sums the load profile over the year.
func (l *LoadProfile) AnnualKWh() float64 {
	var total float64
	for _, v := range l.HourlyKW {
		total += v
	}
	return total
}

// ComponentKind tags the variant carried by a Component.
type ComponentKind int

const (
	KindSolarPV ComponentKind = iota
	KindWindTurbine
	KindBattery
	KindDiesel
	KindGrid
)

func (k ComponentKind) String() string {
	switch k {
	case KindSolarPV:
		return "solar_pv"
	case KindWindTurbine:
		return "wind_turbine"
	case KindBattery:
		return "battery"
	case KindDiesel:
		return "diesel_generator"
	case KindGrid:
		return "grid_connection"
	default:
		return "unknown"
	}
}

// Component is a tagged union over the five component-config variants.
// Exactly one of the pointer fields matching Kind is non-nil.
type Component struct {
	Kind    ComponentKind
	PV      *PVConfig
	Wind    *WindConfig
	Battery *BatteryConfig
	Diesel  *DieselConfig
	Grid    *GridConfig
}

// PVConfig describes a fixed-tilt PV array. See spec.md §6.1.
type PVConfig struct {
	CapacityKWp         float64
	TiltDeg             float64
	AzimuthDeg          float64
	ModuleType          string
	InverterEfficiency  float64
	SystemLosses        float64
	DeratingFactor      float64
	CapitalCostPerKW    float64
	OMCostPerKWYear     float64
	LifetimeYears       float64
	AnnualDegradation   float64
}

// PowerCurvePoint is an explicit (wind speed, power) pair for a turbine.
type PowerCurvePoint struct {
	SpeedMS float64
	PowerKW float64
}

// WindConfig describes a wind turbine (or identical fleet of Quantity units).
type WindConfig struct {
	RatedPowerKW     float64
	HubHeightM       float64
	RotorDiameterM   float64
	CutInSpeed       float64
	RatedSpeed       float64
	CutOutSpeed      float64
	PowerCurve       []PowerCurvePoint // optional explicit curve, overrides generic cubic
	Quantity         int
	CapitalCostPerKW float64
	OMCostPerKWYear  float64
	LifetimeYears    float64
}

// BatteryConfig describes a stationary battery energy-storage system.
type BatteryConfig struct {
	CapacityKWh             float64
	MaxChargeRateKW          float64
	MaxDischargeRateKW       float64
	RoundTripEfficiency      float64
	MinSOC                   float64
	MaxSOC                   float64
	InitialSOC               float64
	Chemistry                string
	CycleLife                float64
	CapitalCostPerKWh        float64
	ReplacementCostPerKWh    float64
	OMCostPerKWhYear         float64
	LifetimeYears            float64
	KiBaMC                   float64 // capacity-ratio of the available well, (0,1)
	KiBaMK                   float64 // rate constant, 1/h
}

// DieselConfig describes a diesel genset.
type DieselConfig struct {
	RatedPowerKW     float64
	MinLoadRatio     float64
	FuelCurveA0      float64 // L/hr per kW rated
	FuelCurveA1      float64 // L/hr per kW output
	FuelPricePerLiter float64
	CapitalCostPerKW float64
	OMCostPerHour    float64
	LifetimeHours    float64
	StartCost        float64
}

// TOUPeriod names a time-of-use pricing window.
type TOUPeriod struct {
	Name    string
	Buy     float64
	Sell    float64
	Hours   []int // hour-of-day, 0-23
	Months  []int // 0-indexed calendar month
}

// GridConfig describes an optional utility interconnection.
type GridConfig struct {
	MaxImportKW     float64
	MaxExportKW     float64
	SellBackEnabled bool
	NetMetering     bool
	BuyRate         float64
	SellRate        float64
	DemandChargePerKW float64 // 0 disables demand charges
	TOUSchedule     []TOUPeriod
	GridIntensityKgPerKWh float64 // CO2 intensity of imported energy
}
