// Package solar implements the PV production pipeline spec.md §4.2.4
// describes: Spencer solar-position, Perez 1990 sky-diffuse transposition,
// NOCT cell-temperature correction, a De Soto single-diode model solved for
// its maximum power point via the Lambert W function, inverter efficiency,
// and system balance-of-system losses. It generalizes the teacher's
// internal/solar/pvprofile.go (an hourly shape normalized from measured
// readings) into a first-principles resource-to-power model, since the
// spec calls for arbitrary site/orientation combinations a measured-shape
// approach cannot cover.
package solar

import "math"

// SolarPosition is the sun's position for a given hour, in degrees.
type SolarPosition struct {
	ZenithDeg  float64
	AzimuthDeg float64
	ElevationDeg float64
}

// Position computes the solar position using Spencer's (1971) Fourier-series
// approximation for declination and the equation of time, for a given day
// of year (1-365/366), local standard-time hour [0,24) (converted to solar
// time from the longitude, timezone offset and equation of time), latitude
// and longitude in degrees.
func Position(dayOfYear int, hour float64, latDeg, lonDeg, timezoneOffsetHours float64) SolarPosition {
	gamma := 2 * math.Pi / 365 * (float64(dayOfYear) - 1)

	// Spencer (1971) declination, radians.
	decl := 0.006918 -
		0.399912*math.Cos(gamma) + 0.070257*math.Sin(gamma) -
		0.006758*math.Cos(2*gamma) + 0.000907*math.Sin(2*gamma) -
		0.002697*math.Cos(3*gamma) + 0.00148*math.Sin(3*gamma)

	// Equation of time, minutes.
	eot := 229.18 * (0.000075 +
		0.001868*math.Cos(gamma) - 0.032077*math.Sin(gamma) -
		0.014615*math.Cos(2*gamma) - 0.04089*math.Sin(2*gamma))

	stdMeridian := timezoneOffsetHours * 15.0
	timeCorrectionMin := 4*(lonDeg-stdMeridian) + eot
	solarHour := hour + timeCorrectionMin/60.0

	hourAngleDeg := 15.0 * (solarHour - 12.0)
	hourAngle := hourAngleDeg * math.Pi / 180.0
	lat := latDeg * math.Pi / 180.0

	cosZenith := math.Sin(lat)*math.Sin(decl) + math.Cos(lat)*math.Cos(decl)*math.Cos(hourAngle)
	cosZenith = clamp(cosZenith, -1, 1)
	zenith := math.Acos(cosZenith)

	// Solar azimuth, measured clockwise from north.
	sinAz := -math.Cos(decl) * math.Sin(hourAngle) / math.Max(math.Sin(zenith), 1e-6)
	cosAz := (math.Cos(zenith)*math.Sin(lat) - math.Sin(decl)) / math.Max(math.Cos(lat)*math.Sin(zenith), 1e-6)
	sinAz = clamp(sinAz, -1, 1)
	cosAz = clamp(cosAz, -1, 1)
	// cosAz above is the negated cosine of the north-referenced azimuth.
	az := math.Atan2(sinAz, -cosAz) * 180.0 / math.Pi
	if az < 0 {
		az += 360.0
	}

	return SolarPosition{
		ZenithDeg:    zenith * 180.0 / math.Pi,
		AzimuthDeg:   az,
		ElevationDeg: 90.0 - zenith*180.0/math.Pi,
	}
}

// AngleOfIncidence returns the angle (degrees) between the sun vector and a
// tilted plane's normal, given the plane's tilt and azimuth (both degrees,
// azimuth 0=N, 90=E, 180=S, 270=W matching model.PVConfig.AzimuthDeg).
func AngleOfIncidence(pos SolarPosition, tiltDeg, azimuthDeg float64) float64 {
	zenith := pos.ZenithDeg * math.Pi / 180.0
	tilt := tiltDeg * math.Pi / 180.0
	deltaAz := (pos.AzimuthDeg - azimuthDeg) * math.Pi / 180.0

	cosAOI := math.Cos(zenith)*math.Cos(tilt) + math.Sin(zenith)*math.Sin(tilt)*math.Cos(deltaAz)
	cosAOI = clamp(cosAOI, -1, 1)
	return math.Acos(cosAOI) * 180.0 / math.Pi
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
