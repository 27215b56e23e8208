package diesel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microgridsim/internal/model"
)

func testConfig() model.DieselConfig {
	return model.DieselConfig{
		RatedPowerKW:      100,
		MinLoadRatio:      0.3,
		FuelPricePerLiter: 1.2,
		LifetimeHours:     15000,
	}
}

func TestGenerator_MinLoadFloor(t *testing.T) {
	g, err := New(testConfig())
	require.NoError(t, err)

	delivered := g.Dispatch(10, 1)
	assert.InDelta(t, g.MinLoadKW(), delivered, 1e-9, "request below min load should clamp up to the floor")
}

func TestGenerator_RatedCeiling(t *testing.T) {
	g, err := New(testConfig())
	require.NoError(t, err)

	delivered := g.Dispatch(500, 1)
	assert.InDelta(t, g.RatedKW(), delivered, 1e-9, "request above rated power should clamp down")
}

func TestGenerator_ZeroRequestStops(t *testing.T) {
	g, err := New(testConfig())
	require.NoError(t, err)

	g.Dispatch(50, 1)
	delivered := g.Dispatch(0, 1)
	assert.Equal(t, 0.0, delivered)
	st := g.GetState()
	assert.InDelta(t, 50, st.EnergyKWh, 1e-9)
}

func TestGenerator_FuelCurveIsLinear(t *testing.T) {
	g, err := New(testConfig())
	require.NoError(t, err)

	lowRate := g.fuelRateLitersPerHour(40)
	highRate := g.fuelRateLitersPerHour(80)
	assert.Greater(t, highRate, lowRate)

	// HOMER curve: F(P) = a0*rated + a1*P, linear in P.
	expectedSlope := g.cfg.FuelCurveA1 * 40
	assert.InDelta(t, expectedSlope, highRate-lowRate, 1e-9)
}

func TestGenerator_FuelEfficiencyImprovesWithLoad(t *testing.T) {
	g, err := New(testConfig())
	require.NoError(t, err)

	lowEff := g.FuelEfficiencyLPerKWh(30)
	highEff := g.FuelEfficiencyLPerKWh(90)
	assert.Less(t, highEff, lowEff, "specific fuel consumption should improve (fewer L/kWh) at higher load")
}

func TestGenerator_StartsCounted(t *testing.T) {
	g, err := New(testConfig())
	require.NoError(t, err)

	g.Dispatch(50, 1)
	g.Dispatch(0, 1)
	g.Dispatch(60, 1)
	st := g.GetState()
	assert.Equal(t, 2, st.Starts)
}

func TestGenerator_CheckHoursExceeded(t *testing.T) {
	cfg := testConfig()
	cfg.LifetimeHours = 10
	g, err := New(cfg)
	require.NoError(t, err)

	for i := 0; i < 11; i++ {
		g.Dispatch(50, 1)
	}
	assert.Error(t, g.CheckHours())
}

func TestGenerator_ResetClearsTotals(t *testing.T) {
	g, err := New(testConfig())
	require.NoError(t, err)

	g.Dispatch(50, 5)
	g.Reset()
	st := g.GetState()
	assert.Equal(t, 0.0, st.HoursRun)
	assert.Equal(t, 0.0, st.FuelLitersUsed)
	assert.Equal(t, 0, st.Starts)
	assert.Equal(t, 0.0, st.EnergyKWh)
	assert.Equal(t, 0.0, st.StartCostTotal)
}

func TestGenerator_StartCostAccumulatesPerStart(t *testing.T) {
	cfg := testConfig()
	cfg.StartCost = 25
	g, err := New(cfg)
	require.NoError(t, err)

	g.Dispatch(50, 1) // start 1
	g.Dispatch(0, 1)  // stop
	g.Dispatch(60, 1) // start 2
	st := g.GetState()
	assert.Equal(t, 2, st.Starts)
	assert.InDelta(t, 50, st.StartCostTotal, 1e-9, "start cost should charge once per stopped->running transition")

	g.Dispatch(70, 1) // still running, no new start
	st = g.GetState()
	assert.InDelta(t, 50, st.StartCostTotal, 1e-9, "continued running must not add another start cost")
}
