package wind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microgridsim/internal/model"
)

func flatWeather(speed float64) *model.WeatherBundle {
	w := &model.WeatherBundle{
		GHI: make([]float64, model.HoursPerYear), DNI: make([]float64, model.HoursPerYear),
		DHI: make([]float64, model.HoursPerYear), TAmbC: make([]float64, model.HoursPerYear),
		WindSpeed: make([]float64, model.HoursPerYear),
	}
	for t := range w.WindSpeed {
		w.WindSpeed[t] = speed
		w.TAmbC[t] = 15
	}
	return w
}

func TestGenericPowerCurve_Boundaries(t *testing.T) {
	assert.Zero(t, GenericPowerCurve(2, 100, 3, 12, 25))
	assert.Zero(t, GenericPowerCurve(25, 100, 3, 12, 25))
	assert.InDelta(t, 100, GenericPowerCurve(12, 100, 3, 12, 25), 1e-9)
	assert.InDelta(t, 100, GenericPowerCurve(20, 100, 3, 12, 25), 1e-9)
	assert.Greater(t, GenericPowerCurve(8, 100, 3, 12, 25), 0.0)
}

func TestSimulate_ZeroBelowCutIn(t *testing.T) {
	w := flatWeather(1.0)
	cfg := model.WindConfig{RatedPowerKW: 500, HubHeightM: 80, RotorDiameterM: 90, CutInSpeed: 3, RatedSpeed: 12, CutOutSpeed: 25, Quantity: 1}
	out, err := Simulate(cfg, w)
	require.NoError(t, err)
	for _, v := range out {
		assert.Zero(t, v)
	}
}

func TestSimulate_QuantityScales(t *testing.T) {
	w := flatWeather(10.0)
	cfg1 := model.WindConfig{RatedPowerKW: 500, HubHeightM: 80, RotorDiameterM: 90, CutInSpeed: 3, RatedSpeed: 9, CutOutSpeed: 25, Quantity: 1}
	cfg3 := cfg1
	cfg3.Quantity = 3
	out1, err := Simulate(cfg1, w)
	require.NoError(t, err)
	out3, err := Simulate(cfg3, w)
	require.NoError(t, err)
	assert.InDelta(t, out1[100]*3, out3[100], 1e-6)
}

func TestFitMethodOfMoments_ReasonableShape(t *testing.T) {
	speeds := make([]float64, 1000)
	for i := range speeds {
		speeds[i] = 6 + float64(i%7)
	}
	p := FitMethodOfMoments(speeds)
	assert.Greater(t, p.Shape, 0.0)
	assert.Greater(t, p.Scale, 0.0)
}

func TestAnnualEnergyEstimate_Positive(t *testing.T) {
	p := WeibullParams{Shape: 2.0, Scale: 8.0}
	aep := AnnualEnergyEstimate(p, 500, 3, 12, 25, 1)
	assert.Greater(t, aep, 0.0)
	assert.Less(t, aep, 500*8760.0)
}
