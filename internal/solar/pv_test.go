package solar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microgridsim/internal/model"
)

func sunnyWeather() *model.WeatherBundle {
	w := &model.WeatherBundle{
		GHI: make([]float64, model.HoursPerYear), DNI: make([]float64, model.HoursPerYear),
		DHI: make([]float64, model.HoursPerYear), TAmbC: make([]float64, model.HoursPerYear),
		WindSpeed: make([]float64, model.HoursPerYear),
	}
	for t := range w.GHI {
		hod := t % 24
		if hod >= 7 && hod <= 18 {
			peak := 900.0 * (1 - absf(float64(hod)-12.5)/6.0)
			if peak < 0 {
				peak = 0
			}
			w.GHI[t] = peak
			w.DNI[t] = peak * 0.7
			w.DHI[t] = peak * 0.3
		}
		w.TAmbC[t] = 25
		w.WindSpeed[t] = 4
	}
	return w
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestSimulate_NightIsZero(t *testing.T) {
	w := sunnyWeather()
	cfg := model.PVConfig{CapacityKWp: 20, TiltDeg: 20, AzimuthDeg: 180}
	site := Site{LatitudeDeg: -17.7, LongitudeDeg: 168.3, TimezoneOffsetHours: 11}
	out, err := Simulate(cfg, w, site, 0)
	require.NoError(t, err)
	require.Len(t, out, model.HoursPerYear)
	for h, v := range out {
		if h%24 < 4 || h%24 > 21 {
			assert.Zero(t, v, "hour %d should be night", h)
		}
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestSimulate_ProducesDaytimePower(t *testing.T) {
	w := sunnyWeather()
	cfg := model.PVConfig{CapacityKWp: 20, TiltDeg: 20, AzimuthDeg: 180}
	site := Site{LatitudeDeg: -17.7, LongitudeDeg: 168.3, TimezoneOffsetHours: 11}
	out, err := Simulate(cfg, w, site, 0)
	require.NoError(t, err)
	var total float64
	for _, v := range out {
		total += v
	}
	assert.Greater(t, total, 0.0)
}

func TestSimulate_DegradationReducesOutput(t *testing.T) {
	w := sunnyWeather()
	cfg := model.PVConfig{CapacityKWp: 20, TiltDeg: 20, AzimuthDeg: 180, AnnualDegradation: 0.01}
	site := Site{LatitudeDeg: -17.7, LongitudeDeg: 168.3, TimezoneOffsetHours: 11}
	year0, err := Simulate(cfg, w, site, 0)
	require.NoError(t, err)
	year10, err := Simulate(cfg, w, site, 10)
	require.NoError(t, err)

	var sum0, sum10 float64
	for i := range year0 {
		sum0 += year0[i]
		sum10 += year10[i]
	}
	assert.Less(t, sum10, sum0)
}
