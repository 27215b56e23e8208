package solar

import "math"

// DiodeParams are the De Soto five-parameter single-diode model parameters
// at a given cell temperature and irradiance, referenced to one cell.
type DiodeParams struct {
	IL    float64 // photocurrent, A
	I0    float64 // diode saturation current, A
	Rs    float64 // series resistance, ohm
	Rsh   float64 // shunt resistance, ohm
	A     float64 // modified ideality factor (n*Ns*Vt), V
}

// These constants hold the single reference cell's STC (1000 W/m^2, 25C)
// characteristics this model scales from: a generic 60-cell monocrystalline
// module's per-cell figures.
const (
	stcIscRefA   = 9.0   // short-circuit current at STC, A
	stcVocRefV   = 0.64  // open-circuit voltage per cell at STC, V
	stcImpRefA   = 8.4   // current at max power, A
	stcVmpRefV   = 0.52  // voltage at max power per cell, V
	alphaIscPerK = 0.0005 // Isc temperature coefficient, fraction/K
	egApproxEV   = 1.121  // silicon bandgap, eV
	boltzmannEV  = 8.617333262e-5
)

// DeSotoParams computes the five single-diode parameters at the given
// plane-of-array irradiance (W/m^2) and cell temperature (C), following
// the De Soto et al. (2006) translation from STC reference values.
func DeSotoParams(poaIrradiance, cellTempC float64) DiodeParams {
	if poaIrradiance <= 0 {
		return DiodeParams{}
	}
	tCellK := cellTempC + 273.15
	tRefK := 25.0 + 273.15
	gRatio := poaIrradiance / 1000.0

	il := gRatio * (stcIscRefA + alphaIscPerK*stcIscRefA*(tCellK-tRefK))

	// Ideality-scaled thermal voltage a = n*Ns*k*T/q; n taken as 1.1 for a
	// single cell (Ns=1 here, since this model is evaluated per cell and
	// scaled up afterward).
	const n = 1.1
	a := n * boltzmannEV * tCellK

	// Reference saturation current from STC Voc/Isc, then Arrhenius-scaled
	// to cell temperature via the bandgap term.
	aRef := n * boltzmannEV * tRefK
	i0Ref := stcIscRefA / (math.Exp(stcVocRefV/aRef) - 1)
	i0 := i0Ref * math.Pow(tCellK/tRefK, 3) * math.Exp(egApproxEV/aRef*(1-tRefK/tCellK))

	rs := (stcVocRefV - stcVmpRefV) / stcImpRefA * 0.35
	rsh := stcVocRefV / (stcIscRefA * 0.02) * (1000.0 / math.Max(poaIrradiance, 1))

	return DiodeParams{IL: il, I0: i0, Rs: rs, Rsh: rsh, A: a}
}

// lambertW0 evaluates the principal branch of the Lambert W function via
// Halley's method, starting from an asymptotic seed. Used to close the
// single-diode I-V equation's implicit form for an explicit MPP solve.
func lambertW0(x float64) float64 {
	if x <= -1/math.E {
		return -1
	}
	var w float64
	switch {
	case x < 1:
		w = x * (1 - x + 1.5*x*x)
	default:
		lx := math.Log(x)
		w = lx - math.Log(math.Max(lx, 1e-9))
	}
	for i := 0; i < 20; i++ {
		ew := math.Exp(w)
		f := w*ew - x
		denom := ew*(w+1) - (w+2)*f/(2*w+2)
		if denom == 0 {
			break
		}
		wNext := w - f/denom
		if math.Abs(wNext-w) < 1e-12 {
			w = wNext
			break
		}
		w = wNext
	}
	return w
}

// MPP finds the single-diode model's maximum power point for nSeries cells
// in series and nParallel strings in parallel by a bounded golden-section
// search on P(V), with the current at each trial voltage taken from the
// Lambert W explicit form of the diode equation (Jain & Kapoor 2004).
// Returns (Vmp, Imp) for the full array at these parameters.
func MPP(p DiodeParams, nSeries, nParallel float64) (vmp, imp float64) {
	if p.IL <= 0 || p.I0 <= 0 || p.A <= 0 {
		return 0, 0
	}
	// A closed-form MPP voltage is numerically awkward for the generalized
	// Rs/Rsh case, so a bounded golden-section search on P(V) over [0, Voc)
	// is used; current at each trial V uses the Lambert-W inversion of the
	// implicit diode equation.
	vocCell := p.A * math.Log(p.IL/p.I0+1)
	voc := vocCell * nSeries

	currentAt := func(v float64) float64 {
		vCell := v / nSeries
		// Lambert-W solution of I = IL - I0*(exp((V+I*Rs)/A)-1) - (V+I*Rs)/Rsh
		argNum := p.Rs * p.I0 / (p.A) * math.Exp((p.Rs*(p.IL+p.I0)+vCell)/(p.A*(1+p.Rs/p.Rsh)))
		w := lambertW0(argNum)
		i := (p.Rsh*(p.IL+p.I0) - vCell) / (p.Rsh + p.Rs) - (p.A / p.Rs) * w
		if i < 0 {
			i = 0
		}
		return i * nParallel
	}

	lo, hi := 0.0, voc*0.999
	const phi = 0.6180339887498949
	for iter := 0; iter < 60; iter++ {
		v1 := hi - phi*(hi-lo)
		v2 := lo + phi*(hi-lo)
		p1 := v1 * currentAt(v1)
		p2 := v2 * currentAt(v2)
		if p1 < p2 {
			lo = v1
		} else {
			hi = v2
		}
	}
	vmp = (lo + hi) / 2
	imp = currentAt(vmp)
	return vmp, imp
}
