package dispatch

import (
	"fmt"

	"microgridsim/internal/model"
)

// Mode is the combined/hysteresis strategy's active dispatch branch.
type Mode int

const (
	ModeLoadFollowing Mode = iota
	ModeCycleCharging
)

// DefaultCriticalSOC and DefaultRecoverySOC are spec.md §4.1.3's default
// hysteresis thresholds.
const (
	DefaultCriticalSOC = 0.30
	DefaultRecoverySOC = 0.70
)

// RunCombined implements spec.md §4.1.3: a mode variable that starts in
// LOAD_FOLLOWING, drops into CYCLE_CHARGING when SOC falls below
// criticalSOC, and recovers to LOAD_FOLLOWING once SOC reaches
// recoverySOC, dispatching each hour with the active mode's algorithm
// (cycle-charging uses recoverySOC as its sigma threshold).
func RunCombined(in Inputs, criticalSOC, recoverySOC float64) (Result, error) {
	if err := in.validate(); err != nil {
		return Result{}, err
	}
	if criticalSOC <= 0 {
		criticalSOC = DefaultCriticalSOC
	}
	if recoverySOC <= 0 {
		recoverySOC = DefaultRecoverySOC
	}
	if criticalSOC >= recoverySOC {
		return Result{}, fmt.Errorf("dispatch: critical_soc (%g) must be strictly less than recovery_soc (%g)", criticalSOC, recoverySOC)
	}
	in.resetAll()
	n := len(in.Load)
	r := newResult(n)
	r.DispatchMode = make([]int, n)

	mode := ModeLoadFollowing
	for t := 0; t < n; t++ {
		hour, month := t%24, model.MonthOf(t)
		ambient := in.ambientAt(t)
		soc := batterySOC(in.Battery)

		switch mode {
		case ModeLoadFollowing:
			if soc < criticalSOC {
				mode = ModeCycleCharging
			}
		case ModeCycleCharging:
			if soc >= recoverySOC {
				mode = ModeLoadFollowing
			}
		}
		r.DispatchMode[t] = int(mode)

		net := in.REKW[t] - in.Load[t]
		genWasRunning := in.Gen != nil && in.Gen.IsRunning()

		switch mode {
		case ModeLoadFollowing:
			if net >= 0 {
				dispatchLFSurplus(in, t, hour, month, ambient, net, &r)
			} else {
				dispatchLFDeficit(in, t, hour, month, ambient, -net, &r)
			}
		case ModeCycleCharging:
			if net >= 0 {
				dispatchCCSurplus(in, t, hour, month, ambient, net, genWasRunning, soc, recoverySOC, &r)
			} else {
				dispatchCCDeficit(in, t, hour, month, ambient, -net, genWasRunning, soc, recoverySOC, &r)
			}
		}
		r.BatterySOC[t] = batterySOC(in.Battery)
	}
	return r, nil
}
