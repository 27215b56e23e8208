package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microgridsim/internal/battery"
	"microgridsim/internal/diesel"
	"microgridsim/internal/gridconn"
	"microgridsim/internal/model"
)

func constVec(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func testBattery(t *testing.T) *battery.BatterySystem {
	cfg := model.BatteryConfig{
		CapacityKWh: 40, MaxChargeRateKW: 20, MaxDischargeRateKW: 20,
		RoundTripEfficiency: 0.9, MinSOC: 0.2, MaxSOC: 1.0, InitialSOC: 0.5,
		Chemistry: "li_ion", CycleLife: 3000,
	}.WithDefaults()
	b, err := battery.New(cfg)
	require.NoError(t, err)
	return b
}

func testDiesel(t *testing.T) *diesel.Generator {
	cfg := model.DieselConfig{RatedPowerKW: 10, MinLoadRatio: 0.3, FuelPricePerLiter: 1.2}.WithDefaults()
	g, err := diesel.New(cfg)
	require.NoError(t, err)
	return g
}

func TestLoadFollowing_EnergyBalanceHolds(t *testing.T) {
	n := model.HoursPerYear
	load := constVec(n, 5)
	re := make([]float64, n)
	for t := range re {
		if t%24 >= 8 && t%24 <= 16 {
			re[t] = 8
		}
	}
	in := Inputs{Load: load, REKW: re, Battery: testBattery(t), Gen: testDiesel(t)}
	r, err := RunLoadFollowing(in)
	require.NoError(t, err)
	require.NoError(t, CheckEnergyBalance(load, re, r))
	require.NoError(t, CheckNonNegativity(r))
	for _, soc := range r.BatterySOC {
		assert.GreaterOrEqual(t, soc, 0.2-1e-9)
		assert.LessOrEqual(t, soc, 1.0+1e-9)
	}
}

func TestLoadFollowing_ZeroRECollapsesToBatteryThenGenThenGrid(t *testing.T) {
	n := model.HoursPerYear
	load := constVec(n, 3)
	re := make([]float64, n)
	g := testGrid(t)
	in := Inputs{Load: load, REKW: re, Battery: testBattery(t), Gen: testDiesel(t), Grid: g}
	r, err := RunLoadFollowing(in)
	require.NoError(t, err)
	for _, e := range r.Excess {
		assert.Zero(t, e, "excess must be zero when RE is zero")
	}
}

func testGrid(t *testing.T) *gridconn.Connection {
	cfg := model.GridConfig{MaxImportKW: 50, MaxExportKW: 50, SellBackEnabled: true, BuyRate: 0.2, SellRate: 0.08}
	g, err := gridconn.New(cfg)
	require.NoError(t, err)
	return g
}

func TestNoComponents_UnmetEqualsLoadWhenREShort(t *testing.T) {
	n := model.HoursPerYear
	load := constVec(n, 3)
	re := constVec(n, 1)
	in := Inputs{Load: load, REKW: re}
	r, err := RunLoadFollowing(in)
	require.NoError(t, err)
	for i := range r.Unmet {
		assert.InDelta(t, 2.0, r.Unmet[i], 1e-9)
	}
}

func TestGridOnlySellBackDisabled_NoExport(t *testing.T) {
	n := model.HoursPerYear
	load := constVec(n, 3)
	re := constVec(n, 8)
	cfg := model.GridConfig{MaxImportKW: 50, MaxExportKW: 50, SellBackEnabled: false, BuyRate: 0.2, SellRate: 0.08}
	g, err := gridconn.New(cfg)
	require.NoError(t, err)
	in := Inputs{Load: load, REKW: re, Grid: g}
	r, err := RunLoadFollowing(in)
	require.NoError(t, err)
	for _, exp := range r.GridExport {
		assert.Zero(t, exp)
	}
	for h, exc := range r.Excess {
		assert.InDelta(t, 5.0, exc, 1e-9, "t=%d", h)
	}
}

func TestCombined_HysteresisBand(t *testing.T) {
	n := model.HoursPerYear
	load := constVec(n, 6)
	re := make([]float64, n)
	for t := range re {
		if t%24 >= 8 && t%24 <= 16 {
			re[t] = 10
		}
	}
	in := Inputs{Load: load, REKW: re, Battery: testBattery(t), Gen: testDiesel(t)}
	r, err := RunCombined(in, DefaultCriticalSOC, DefaultRecoverySOC)
	require.NoError(t, err)
	require.NoError(t, CheckEnergyBalance(load, re, r))

	for h := 1; h < n; h++ {
		mode := Mode(r.DispatchMode[h])
		prevMode := Mode(r.DispatchMode[h-1])
		if prevMode == ModeLoadFollowing && mode == ModeCycleCharging {
			assert.Less(t, r.BatterySOC[h-1], DefaultCriticalSOC+1e-6, "entry into cycle-charging must follow SOC < critical")
		}
		if prevMode == ModeCycleCharging && mode == ModeLoadFollowing {
			assert.GreaterOrEqual(t, r.BatterySOC[h-1], DefaultRecoverySOC-1e-6, "exit to load-following must follow SOC >= recovery")
		}
	}
}

func TestCombined_RejectsBadThresholds(t *testing.T) {
	n := model.HoursPerYear
	in := Inputs{Load: constVec(n, 1), REKW: constVec(n, 1), Battery: testBattery(t)}
	_, err := RunCombined(in, 0.7, 0.3)
	assert.Error(t, err)
}

func TestCycleCharging_GeneratorRunsAtRatedWhenEligible(t *testing.T) {
	n := model.HoursPerYear
	load := constVec(n, 6)
	re := constVec(n, 0)
	b := testBattery(t)
	in := Inputs{Load: load, REKW: re, Battery: b, Gen: testDiesel(t)}
	r, err := RunCycleCharging(in, 0.80)
	require.NoError(t, err)
	require.NoError(t, CheckEnergyBalance(load, re, r))
	for h, out := range r.GeneratorOutput {
		if out > 0 {
			assert.InDelta(t, 10.0, out, 1e-6, "hour %d", h)
		}
	}
}
