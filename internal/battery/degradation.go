package battery

import "math"

// degradation implements a simplified rainflow-count + Wöhler-style cycle
// fade plus an Arrhenius-style calendar fade, following spec.md §4.2.1.
// It tracks a compact SOC history rather than the full series (a real
// rainflow counter would need the full trace; this keeps the essential
// peak/trough counting behaviour with O(1) memory per reversal).
type degradation struct {
	chemistry string
	cycleLife float64 // rated full-equivalent-cycles to end of life

	// Rainflow-ish reversal tracking: a small ascending/descending stack
	// of recent SOC extrema, closed into half-cycles as they complete.
	history []float64

	cumulativeDamage float64 // fraction of life consumed by cycling, [0, ~1]
	elapsedHours     float64
	avgTempC         float64
	tempSamples      int
}

func newDegradation(chemistry string, cycleLife float64) *degradation {
	if cycleLife <= 0 {
		cycleLife = 3000
	}
	return &degradation{chemistry: chemistry, cycleLife: cycleLife, avgTempC: 25}
}

// recordSOC appends a sample to the reversal history and, whenever a local
// extremum completes a half-cycle, folds its depth into cumulative cycle
// damage via an inverse power law (Wöhler curve): damage per half-cycle of
// depth d is (d / D_ref)^m / (2*cycleLife), D_ref = 1.0 (full DoD).
func (d *degradation) recordSOC(soc float64) {
	d.history = append(d.history, soc)
	if len(d.history) < 3 {
		return
	}
	n := len(d.history)
	a, b, c := d.history[n-3], d.history[n-2], d.history[n-1]
	// A reversal at b completed a half-cycle of depth |b-a| when the slope
	// changes sign.
	if (b-a)*(c-b) < 0 {
		depth := math.Abs(b - a)
		const wohlerExponent = 1.8
		damage := math.Pow(depth, wohlerExponent) / (2 * d.cycleLife)
		d.cumulativeDamage += damage
		// Keep only the trailing point so the stack doesn't grow unbounded.
		d.history = d.history[n-1:]
	}
}

// recordHours accumulates elapsed operating time and ambient temperature
// for the calendar-fade term.
func (d *degradation) recordHours(hours, ambientC float64) {
	d.elapsedHours += hours
	d.tempSamples++
	d.avgTempC += (ambientC - d.avgTempC) / float64(d.tempSamples)
}

// fadeFraction returns 1 - capacity_remaining/nameplate: cycling damage plus
// an Arrhenius-style calendar term referenced to 25C with an activation
// temperature of 20C (a fade doubling roughly every 14C above reference,
// consistent with common Li-ion calendar-aging fits).
func (d *degradation) fadeFraction() float64 {
	const referenceTempC = 25.0
	const activationTempC = 20.0
	years := d.elapsedHours / 8760.0
	calendarFade := 0.02 * years * math.Exp((d.avgTempC-referenceTempC)/activationTempC)
	total := d.cumulativeDamage + calendarFade
	if total > 0.8 {
		total = 0.8 // capacity never faded to zero; clamp to a retirement floor
	}
	if total < 0 {
		total = 0
	}
	return total
}

// cycles returns an estimate of equivalent full cycles from cumulative
// damage, inverting the Wöhler relation at full depth of discharge.
func (d *degradation) cycles() float64 {
	return d.cumulativeDamage * d.cycleLife
}
