package solar

import "math"

// PlaneOfArray holds the irradiance components resolved onto a tilted
// plane, all in W/m^2.
type PlaneOfArray struct {
	Beam    float64
	Diffuse float64
	Ground  float64
	Total   float64
}

// PerezTransposition implements the Perez 1990 anisotropic sky-diffuse
// model, transposing horizontal GHI/DNI/DHI onto a tilted plane of given
// tilt/azimuth. aoiDeg is the angle of incidence on the tilted plane and
// zenithDeg the solar zenith, both from Position/AngleOfIncidence.
func PerezTransposition(ghi, dni, dhi, zenithDeg, aoiDeg, tiltDeg, albedo float64) PlaneOfArray {
	if dni <= 0 && dhi <= 0 {
		return PlaneOfArray{}
	}
	zenith := zenithDeg * math.Pi / 180.0
	tilt := tiltDeg * math.Pi / 180.0
	aoi := aoiDeg * math.Pi / 180.0

	cosZenith := math.Max(math.Cos(zenith), 0.01745) // avoid blow-up near the horizon
	cosAOI := math.Cos(aoi)
	if cosAOI < 0 {
		cosAOI = 0
	}

	beam := dni * cosAOI
	if beam < 0 {
		beam = 0
	}

	// Perez brightness coefficients via the clearness (epsilon) and
	// brightness (delta) parameters.
	airMass := 1.0 / cosZenith
	delta := dhi * airMass / 1367.0

	kappa := 1.041 // radians^-3, for zenith in radians
	epsilon := ((dhi+dni)/math.Max(dhi, 1e-6) + kappa*zenith*zenith*zenith) / (1 + kappa*zenith*zenith*zenith)

	f11, f12, f13, f21, f22, f23 := perezCoefficients(epsilon)

	a := math.Max(0, cosAOI)
	b := math.Max(math.Cos(85.0*math.Pi/180.0), cosZenith)

	f1 := math.Max(0, f11+f12*delta+f13*zenith)
	f2 := f21 + f22*delta + f23*zenith

	diffuse := dhi * ((1-f1)*(1+math.Cos(tilt))/2 + f1*a/b + f2*math.Sin(tilt))
	if diffuse < 0 {
		diffuse = 0
	}

	ground := ghi * albedo * (1 - math.Cos(tilt)) / 2

	return PlaneOfArray{
		Beam:    beam,
		Diffuse: diffuse,
		Ground:  ground,
		Total:   beam + diffuse + ground,
	}
}

// perezCoefficients returns the Perez (1990) empirical brightness
// coefficient set for the clearness bin containing epsilon.
func perezCoefficients(epsilon float64) (f11, f12, f13, f21, f22, f23 float64) {
	type bin struct {
		upper                          float64
		f11, f12, f13, f21, f22, f23 float64
	}
	bins := []bin{
		{1.065, -0.0083117, 0.5877285, -0.0620636, -0.0596012, 0.0721249, -0.0220216},
		{1.230, 0.1299457, 0.6825954, -0.1513752, -0.0189325, 0.0659650, -0.0288748},
		{1.500, 0.3296958, 0.4868735, -0.2210958, 0.0554140, -0.0639588, -0.0260542},
		{1.950, 0.5682053, 0.1874525, -0.2951290, 0.1088631, -0.1519229, -0.0139754},
		{2.800, 0.8730280, -0.3920403, -0.3616149, 0.2255647, -0.4620442, 0.0012448},
		{4.500, 1.1326077, -1.2367284, -0.4118494, 0.2877813, -0.8230357, 0.0558651},
		{6.200, 1.0601591, -1.5999137, -0.3589221, 0.2642124, -1.1272340, 0.1310694},
		{math.Inf(1), 0.6777470, -0.3272588, -0.2504286, 0.1561313, -1.3765031, 0.2506212},
	}
	for _, b := range bins {
		if epsilon < b.upper {
			return b.f11, b.f12, b.f13, b.f21, b.f22, b.f23
		}
	}
	last := bins[len(bins)-1]
	return last.f11, last.f12, last.f13, last.f21, last.f22, last.f23
}
