package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoBusNetwork is a slack bus feeding a PQ bus over a single cable, the
// simplest topology that exercises Y-bus assembly, NR convergence, and
// branch-flow computation.
func twoBusNetwork(loadPU float64) *Network {
	z := CableImpedancePU(0.2, 0.1, 1.0, 11.0, 1.0)
	return &Network{
		SBaseMVA: 1.0,
		Buses: []Bus{
			{Index: 0, Name: "slack", Type: Slack, VBaseKV: 11, VSetpointPU: 1.0},
			{Index: 1, Name: "load", Type: PQ, VBaseKV: 11, PLoadPU: loadPU, QLoadPU: loadPU * 0.2, ScMVA: 50},
		},
		Branches: []Branch{
			{From: 0, To: 1, Type: Cable, ZPU: z, Tap: complex(1, 0), ThermalMVA: 5},
		},
	}
}

func TestValidate_RejectsMissingSlack(t *testing.T) {
	n := &Network{SBaseMVA: 1, Buses: []Bus{{Type: PQ}}}
	assert.Error(t, n.Validate())
}

func TestValidate_RejectsOutOfRangeBranch(t *testing.T) {
	n := &Network{SBaseMVA: 1, Buses: []Bus{{Type: Slack}}, Branches: []Branch{{From: 0, To: 5}}}
	assert.Error(t, n.Validate())
}

func TestBuildYBus_NonzeroDiagonalAndSymmetricForRadialFeeder(t *testing.T) {
	n := twoBusNetwork(0.1)
	y := BuildYBus(n)
	assert.NotZero(t, y[0][0])
	assert.NotZero(t, y[1][1])
	assert.Equal(t, y[0][1], y[1][0])
}

func TestSolveAC_ConvergesOnRadialFeeder(t *testing.T) {
	n := twoBusNetwork(0.1)
	pf, err := SolveAC(n)
	require.NoError(t, err)
	assert.True(t, pf.Converged)
	assert.Less(t, pf.MaxMismatch, MismatchTolerance)
	assert.InDelta(t, 1.0, pf.VPU[0], 1e-9, "slack voltage must hold at setpoint")
	assert.Less(t, pf.VPU[1], 1.0, "load bus voltage must sag below the slack")
}

func TestSolveAC_HeavierLoadSagsVoltageMore(t *testing.T) {
	light, err := SolveAC(twoBusNetwork(0.05))
	require.NoError(t, err)
	heavy, err := SolveAC(twoBusNetwork(0.3))
	require.NoError(t, err)
	assert.Less(t, heavy.VPU[1], light.VPU[1])
}

func TestSolveDC_ReturnsFlatVoltageAndOneIteration(t *testing.T) {
	n := twoBusNetwork(0.1)
	pf, err := SolveDC(n)
	require.NoError(t, err)
	assert.True(t, pf.Converged)
	assert.Equal(t, 1, pf.Iterations)
	for _, v := range pf.VPU {
		assert.Equal(t, 1.0, v)
	}
}

func TestShortCircuit_StrongerSourceGivesHigherFaultLevel(t *testing.T) {
	n := twoBusNetwork(0.1)
	results, err := ShortCircuit(n, 1.0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Greater(t, results[0].SScMVA, results[1].SScMVA, "fault level must attenuate moving away from the stiff slack source")
}

func TestRunNMinus1_SingleRadialBranchCausesIslanding(t *testing.T) {
	n := twoBusNetwork(0.1)
	result, err := RunNMinus1(n, IECDefault)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Islanded, "removing the only branch to a radial bus must island it")
	assert.True(t, result.Branches[0].CausesIslanding)
}

func TestRunNMinus1_MeshedNetworkSurvivesBranchLoss(t *testing.T) {
	z := CableImpedancePU(0.2, 0.1, 1.0, 11.0, 1.0)
	n := &Network{
		SBaseMVA: 1.0,
		Buses: []Bus{
			{Index: 0, Type: Slack, VBaseKV: 11, VSetpointPU: 1.0, ScMVA: 100},
			{Index: 1, Type: PQ, VBaseKV: 11, PLoadPU: 0.1, QLoadPU: 0.02},
			{Index: 2, Type: PQ, VBaseKV: 11, PLoadPU: 0.1, QLoadPU: 0.02},
		},
		Branches: []Branch{
			{From: 0, To: 1, Type: Cable, ZPU: z, Tap: complex(1, 0), ThermalMVA: 5},
			{From: 1, To: 2, Type: Cable, ZPU: z, Tap: complex(1, 0), ThermalMVA: 5},
			{From: 0, To: 2, Type: Cable, ZPU: z, Tap: complex(1, 0), ThermalMVA: 5},
		},
	}
	result, err := RunNMinus1(n, IECDefault)
	require.NoError(t, err)
	assert.Zero(t, result.Islanded, "the ring topology must stay connected after any single branch loss")
}

func TestNewCustomGridCode_CarriesExplicitLimits(t *testing.T) {
	gc := NewCustomGridCode("site-x", 0.92, 1.08, 0.85, 1.15, 110)
	assert.Equal(t, "site-x", gc.Name)
	assert.Equal(t, 110.0, gc.ThermalLimitPct)
}
