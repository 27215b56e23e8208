package economics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microgridsim/internal/model"
)

func TestAnnuityFactor_ZeroRateIsYears(t *testing.T) {
	assert.Equal(t, 25.0, AnnuityFactor(0, 25))
}

func TestAnnuityFactor_MatchesClosedForm(t *testing.T) {
	af := AnnuityFactor(0.08, 20)
	assert.InDelta(t, 9.818, af, 0.01)
}

func pvComponent() model.Component {
	return model.Component{Kind: model.KindSolarPV, PV: &model.PVConfig{
		CapacityKWp: 100, CapitalCostPerKW: 900, OMCostPerKWYear: 10, LifetimeYears: 25,
	}}
}

func batteryComponent() model.Component {
	return model.Component{Kind: model.KindBattery, Battery: &model.BatteryConfig{
		CapacityKWh: 200, CapitalCostPerKWh: 400, OMCostPerKWhYear: 5,
		ReplacementCostPerKWh: 300, LifetimeYears: 10,
	}}
}

func TestEvaluate_CapitalSummedByComponent(t *testing.T) {
	in := Inputs{
		Components:    []model.Component{pvComponent(), batteryComponent()},
		LifetimeYears: 25, DiscountRate: 0.08, AnnualLoadKWh: 200000,
	}
	r := Evaluate(in)
	require.Contains(t, r.CostBreakdown.CapitalByComponent, "solar_pv")
	require.Contains(t, r.CostBreakdown.CapitalByComponent, "battery")
	assert.InDelta(t, 90000, r.CostBreakdown.CapitalByComponent["solar_pv"], 1e-6)
	assert.InDelta(t, 80000, r.CostBreakdown.CapitalByComponent["battery"], 1e-6)
}

func TestEvaluate_BatteryReplacedMidLifeAddsReplacementNPV(t *testing.T) {
	in := Inputs{
		Components:    []model.Component{batteryComponent()},
		LifetimeYears: 25, DiscountRate: 0.08, AnnualLoadKWh: 100000,
	}
	r := Evaluate(in)
	assert.Positive(t, r.CostBreakdown.ReplacementNPV, "battery lifetime 10yr < project 25yr must trigger replacements")
}

func TestEvaluate_NoReplacementWhenLifetimeExceedsProject(t *testing.T) {
	in := Inputs{
		Components:    []model.Component{pvComponent()},
		LifetimeYears: 20, DiscountRate: 0.08, AnnualLoadKWh: 100000,
	}
	r := Evaluate(in)
	assert.Zero(t, r.CostBreakdown.ReplacementNPV)
	assert.Positive(t, r.CostBreakdown.SalvageNPV, "25yr PV retired early at year 20 must retain salvage value")
}

func TestEvaluate_LCOEPositiveWhenLoadNonzero(t *testing.T) {
	in := Inputs{
		Components:    []model.Component{pvComponent()},
		LifetimeYears: 25, DiscountRate: 0.08, AnnualLoadKWh: 150000,
		Grid: &GridUsage{ImportKWh: 50000, ImportCost: 10000},
	}
	r := Evaluate(in)
	assert.Positive(t, r.LCOE)
	assert.InDelta(t, 1-50000.0/150000, r.RenewableFraction, 1e-9)
}

func TestEvaluate_CO2FromFuelAndGrid(t *testing.T) {
	in := Inputs{
		LifetimeYears: 20, DiscountRate: 0.06, AnnualLoadKWh: 10000,
		Diesel: &DieselUsage{FuelLitersUsed: 1000, FuelPricePerLiter: 1.2, HoursRun: 500, OMCostPerHour: 0.1},
		Grid:   &GridUsage{ImportKWh: 2000, GridIntensityKgPerKWh: 0.5},
	}
	r := Evaluate(in)
	assert.InDelta(t, 1000*CO2PerLiterDiesel+2000*0.5, r.CO2EmissionsKg, 1e-6)
}

func TestEvaluate_StartCostAddsToOpexAndNPC(t *testing.T) {
	base := Inputs{
		LifetimeYears: 20, DiscountRate: 0.06, AnnualLoadKWh: 10000,
		Diesel: &DieselUsage{FuelLitersUsed: 1000, FuelPricePerLiter: 1.2, HoursRun: 500, OMCostPerHour: 0.1},
	}
	withStart := base
	withStart.Diesel = &DieselUsage{
		FuelLitersUsed: 1000, FuelPricePerLiter: 1.2, HoursRun: 500, OMCostPerHour: 0.1,
		StartCostTotal: 2000,
	}

	rBase := Evaluate(base)
	rStart := Evaluate(withStart)

	af := AnnuityFactor(0.06, 20)
	assert.InDelta(t, rBase.NPC+af*2000, rStart.NPC, 1e-6, "start cost must flow into NPC via the diesel O&M annuity term")
	assert.InDelta(t, rBase.CostBreakdown.OMNPV+af*2000, rStart.CostBreakdown.OMNPV, 1e-6)
}

func TestEvaluate_IRRNilWhenNeverProfitable(t *testing.T) {
	in := Inputs{
		Components:    []model.Component{pvComponent()},
		LifetimeYears: 25, DiscountRate: 0.08, AnnualLoadKWh: 1,
		BaselineGridRatePerKWh: 0,
	}
	r := Evaluate(in)
	assert.Nil(t, r.IRR, "zero revenue against nonzero capital must never break even")
	assert.Nil(t, r.PaybackYears)
}

func TestEvaluate_IRRFoundWhenClearlyProfitable(t *testing.T) {
	in := Inputs{
		Components:             []model.Component{{Kind: model.KindSolarPV, PV: &model.PVConfig{CapacityKWp: 10, CapitalCostPerKW: 500, LifetimeYears: 25}}},
		LifetimeYears:          25,
		DiscountRate:           0.08,
		AnnualLoadKWh:          100000,
		BaselineGridRatePerKWh: 0.30,
	}
	r := Evaluate(in)
	require.NotNil(t, r.IRR)
	assert.Greater(t, *r.IRR, -0.99)
	require.NotNil(t, r.PaybackYears)
	assert.Less(t, *r.PaybackYears, 25.0)
}
