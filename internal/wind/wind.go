// Package wind implements the wind-turbine production pipeline spec.md
// §4.2.5 describes: log-law/power-law hub-height correction, cube-root
// air-density correction, and a piecewise cubic power curve, producing
// wind_kw[8760]. No wind-specific teacher or pack code exists in the
// retrieval corpus; this follows the same "resource -> per-hour output"
// shape internal/solar uses, kept in the teacher's plain-function idiom.
package wind

import (
	"math"

	"microgridsim/internal/model"
)

// HeightCorrectionMethod selects the wind-shear model used to translate
// measured wind speed to hub height.
type HeightCorrectionMethod int

const (
	LogLaw HeightCorrectionMethod = iota
	PowerLaw
)

// defaultRoughnessM is a generic open-terrain surface roughness length.
const defaultRoughnessM = 0.03

// defaultShearExponent is a generic power-law shear exponent for open
// terrain (Hellmann exponent).
const defaultShearExponent = 1.0 / 7.0

// measurementHeightM is the nominal weather-station anemometer height
// spec.md §6.2 documents for the wind-speed vector.
const measurementHeightM = 10.0

// CorrectToHubHeight translates a measured wind speed (m/s, at
// measurementHeightM) to hub height using the given method.
func CorrectToHubHeight(measuredMS, hubHeightM float64, method HeightCorrectionMethod) float64 {
	if measuredMS <= 0 || hubHeightM <= 0 {
		return 0
	}
	switch method {
	case PowerLaw:
		return measuredMS * math.Pow(hubHeightM/measurementHeightM, defaultShearExponent)
	default:
		return measuredMS * math.Log(hubHeightM/defaultRoughnessM) / math.Log(measurementHeightM/defaultRoughnessM)
	}
}

// AirDensityCorrection returns the cube-root density-ratio correction
// factor applied to a sea-level-rated power curve: rho/rho0 raised to the
// 1/3 power, the standard IEC 61400-12 approximation for power-curve air
// density adjustment in the transitional (not purely cubic, not flat)
// region of the curve.
func AirDensityCorrection(ambientC, pressureKPa float64) float64 {
	if pressureKPa <= 0 {
		pressureKPa = 101.325
	}
	tKelvin := ambientC + 273.15
	const rSpecific = 0.287058 // kJ/(kg.K), dry air
	rho := pressureKPa / (rSpecific * tKelvin)
	const rho0 = 1.225
	return math.Pow(rho/rho0, 1.0/3.0)
}

// GenericPowerCurve evaluates a piecewise cubic-then-flat generic power
// curve at the given (already height- and density-corrected) wind speed,
// for a turbine of the given rating and cut-in/rated/cut-out speeds. Below
// cut-in and at/above cut-out, output is zero; between cut-in and rated,
// output is rated power times the cube of (speed-cutIn)/(rated-cutIn);
// between rated and cut-out, output is flat at rated power.
func GenericPowerCurve(speedMS, ratedKW, cutIn, rated, cutOut float64) float64 {
	switch {
	case speedMS < cutIn || speedMS >= cutOut:
		return 0
	case speedMS >= rated:
		return ratedKW
	default:
		frac := (speedMS - cutIn) / (rated - cutIn)
		return ratedKW * frac * frac * frac
	}
}

// ExplicitPowerCurve linearly interpolates an explicit set of
// (speed, power) points, used when model.WindConfig.PowerCurve is supplied
// in place of the generic cubic shape. Output is zero below the first
// point's speed and at or above the last point's speed.
func ExplicitPowerCurve(speedMS float64, points []model.PowerCurvePoint) float64 {
	if len(points) == 0 {
		return 0
	}
	if speedMS <= points[0].SpeedMS {
		if speedMS < points[0].SpeedMS {
			return 0
		}
		return points[0].PowerKW
	}
	last := points[len(points)-1]
	if speedMS >= last.SpeedMS {
		return 0
	}
	for i := 1; i < len(points); i++ {
		if speedMS <= points[i].SpeedMS {
			lo, hi := points[i-1], points[i]
			frac := (speedMS - lo.SpeedMS) / (hi.SpeedMS - lo.SpeedMS)
			return lo.PowerKW + frac*(hi.PowerKW-lo.PowerKW)
		}
	}
	return 0
}

// Simulate runs the wind pipeline across an 8,760-hour weather bundle and
// returns wind_kw, the turbine-fleet output delivered each hour.
func Simulate(cfg model.WindConfig, weather *model.WeatherBundle) ([]float64, error) {
	if err := weather.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cutIn, rated, cutOut := cfg.CutInSpeed, cfg.RatedSpeed, cfg.CutOutSpeed
	if cutIn <= 0 {
		cutIn = 3.0
	}
	if rated <= 0 {
		rated = 12.0
	}
	if cutOut <= 0 {
		cutOut = 25.0
	}
	quantity := float64(cfg.Quantity)
	if quantity <= 0 {
		quantity = 1
	}

	out := make([]float64, model.HoursPerYear)
	for t := 0; t < model.HoursPerYear; t++ {
		hubSpeed := CorrectToHubHeight(weather.WindSpeed[t], cfg.HubHeightM, LogLaw)
		densityCorr := AirDensityCorrection(weather.TAmbC[t], 101.325)
		correctedSpeed := hubSpeed * densityCorr

		var perUnitKW float64
		if len(cfg.PowerCurve) > 0 {
			perUnitKW = ExplicitPowerCurve(correctedSpeed, cfg.PowerCurve)
		} else {
			perUnitKW = GenericPowerCurve(correctedSpeed, cfg.RatedPowerKW, cutIn, rated, cutOut)
		}
		out[t] = perUnitKW * quantity
	}
	return out, nil
}
