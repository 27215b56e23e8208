package solar

// NOCTCellTemp estimates PV cell temperature (degrees C) from the Normal
// Operating Cell Temperature model: T_cell = T_amb + (NOCT-20)/800 * G_poa,
// where NOCT defaults to 45C for a typical crystalline-silicon module in
// open-rack mounting (spec.md §4.2.4).
func NOCTCellTemp(ambientC, poaIrradiance, noctC float64) float64 {
	if noctC <= 0 {
		noctC = 45.0
	}
	return ambientC + (noctC-20.0)/800.0*poaIrradiance
}
