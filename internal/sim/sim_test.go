package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microgridsim/internal/model"
	"microgridsim/internal/solar"
)

func flatWeather() *model.WeatherBundle {
	n := model.HoursPerYear
	w := &model.WeatherBundle{
		GHI: make([]float64, n), DNI: make([]float64, n), DHI: make([]float64, n),
		TAmbC: make([]float64, n), WindSpeed: make([]float64, n),
	}
	for t := 0; t < n; t++ {
		if t%24 >= 8 && t%24 <= 16 {
			w.GHI[t], w.DNI[t], w.DHI[t] = 600, 700, 150
		}
		w.TAmbC[t] = 25
		w.WindSpeed[t] = 6
	}
	return w
}

func flatLoad(kw float64) *model.LoadProfile {
	n := model.HoursPerYear
	l := &model.LoadProfile{HourlyKW: make([]float64, n)}
	for i := range l.HourlyKW {
		l.HourlyKW[i] = kw
	}
	return l
}

func basicComponents() []model.Component {
	battCfg := model.BatteryConfig{
		CapacityKWh: 100, MaxChargeRateKW: 40, MaxDischargeRateKW: 40, RoundTripEfficiency: 0.9,
		MinSOC: 0.2, MaxSOC: 1.0, InitialSOC: 0.5, CapitalCostPerKWh: 400, ReplacementCostPerKWh: 300,
		LifetimeYears: 10,
	}.WithDefaults()
	dieselCfg := model.DieselConfig{RatedPowerKW: 20, CapitalCostPerKW: 600}.WithDefaults()
	return []model.Component{
		{Kind: model.KindSolarPV, PV: &model.PVConfig{CapacityKWp: 50, TiltDeg: 15, AzimuthDeg: 180}},
		{Kind: model.KindBattery, Battery: &battCfg},
		{Kind: model.KindDiesel, Diesel: &dieselCfg},
		{Kind: model.KindGrid, Grid: &model.GridConfig{MaxImportKW: 100, MaxExportKW: 100, SellBackEnabled: true, BuyRate: 0.25, SellRate: 0.08}},
	}
}

func defaultSite() solar.Site {
	return solar.Site{LatitudeDeg: -18.1, LongitudeDeg: 178.4, Albedo: 0.2}
}

func TestRun_LoadFollowingProducesConsistentResult(t *testing.T) {
	opt := Options{Strategy: LoadFollowing, LifetimeYears: 20, DiscountRate: 0.08, BaselineGridRatePerKWh: 0.3,
		Site: defaultSite()}
	r, err := Run(basicComponents(), flatWeather(), flatLoad(10), opt)
	require.NoError(t, err)
	assert.Len(t, r.Dispatch.BatteryPower, model.HoursPerYear)
	assert.Positive(t, r.Economics.NPC)
	assert.Nil(t, r.PowerFlow, "no network topology supplied must skip the power-flow phase")
}

func TestRun_DifferentStrategiesAllSucceed(t *testing.T) {
	for _, strat := range []Strategy{LoadFollowing, CycleCharging, Combined, Optimal} {
		opt := Options{Strategy: strat, LifetimeYears: 20, DiscountRate: 0.08, Site: defaultSite()}
		_, err := Run(basicComponents(), flatWeather(), flatLoad(10), opt)
		require.NoError(t, err, "strategy %s", strat)
	}
}
