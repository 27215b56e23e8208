package network

import "fmt"

// BranchContingency is one branch's N-1 screening outcome.
type BranchContingency struct {
	BranchIndex    int
	CausesIslanding bool
	Passed          bool
	MaxVoltagePU    float64
	MinVoltagePU    float64
	MaxLoadingPct   float64
	Violations      []string
}

// ContingencyResult aggregates the full N-1 sweep.
type ContingencyResult struct {
	Branches []BranchContingency
	Passed   int
	Failed   int
	Islanded int
}

// RunNMinus1 implements spec.md §4.4.4: for each branch, remove it from a
// deep copy of the network, check islanding by BFS from the slack bus,
// solve power flow (AC falling back to DC on divergence), and compare the
// result against the grid code's contingency limits.
func RunNMinus1(n *Network, code GridCode) (ContingencyResult, error) {
	if err := n.Validate(); err != nil {
		return ContingencyResult{}, err
	}

	result := ContingencyResult{Branches: make([]BranchContingency, len(n.Branches))}
	for idx := range n.Branches {
		clone := cloneWithoutBranch(n, idx)

		if !reachableFromSlack(clone) {
			result.Branches[idx] = BranchContingency{BranchIndex: idx, CausesIslanding: true, Passed: false}
			result.Islanded++
			result.Failed++
			continue
		}

		pf, err := SolveAC(clone)
		if err != nil || !pf.Converged {
			pf, err = SolveDC(clone)
			if err != nil {
				return ContingencyResult{}, fmt.Errorf("network: contingency %d: both AC and DC solves failed: %w", idx, err)
			}
		}

		bc := evaluateContingency(idx, clone, pf, code)
		result.Branches[idx] = bc
		if bc.Passed {
			result.Passed++
		} else {
			result.Failed++
		}
	}
	return result, nil
}

func cloneWithoutBranch(n *Network, skip int) *Network {
	clone := &Network{SBaseMVA: n.SBaseMVA}
	clone.Buses = append(clone.Buses, n.Buses...)
	for i, br := range n.Branches {
		if i == skip {
			continue
		}
		clone.Branches = append(clone.Branches, br)
	}
	return clone
}

// reachableFromSlack runs a breadth-first search over the branch adjacency
// from the slack bus and reports whether every bus is reachable.
func reachableFromSlack(n *Network) bool {
	nBus := len(n.Buses)
	adj := make([][]int, nBus)
	for _, br := range n.Branches {
		adj[br.From] = append(adj[br.From], br.To)
		adj[br.To] = append(adj[br.To], br.From)
	}

	visited := make([]bool, nBus)
	slack := n.SlackIndex()
	if slack < 0 {
		return false
	}
	queue := []int{slack}
	visited[slack] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	for _, v := range visited {
		if !v {
			return false
		}
	}
	return true
}

func evaluateContingency(idx int, n *Network, pf *PowerFlowResult, code GridCode) BranchContingency {
	bc := BranchContingency{BranchIndex: idx, Passed: true}
	bc.MinVoltagePU = pf.VPU[0]
	bc.MaxVoltagePU = pf.VPU[0]
	for i, v := range pf.VPU {
		if v < bc.MinVoltagePU {
			bc.MinVoltagePU = v
		}
		if v > bc.MaxVoltagePU {
			bc.MaxVoltagePU = v
		}
		if v < code.ContingencyVMinPU || v > code.ContingencyVMaxPU {
			bc.Passed = false
			bc.Violations = append(bc.Violations, fmt.Sprintf("bus %d voltage %.4f pu outside contingency band [%.3f, %.3f]", i, v, code.ContingencyVMinPU, code.ContingencyVMaxPU))
		}
	}
	for _, flow := range pf.BranchFlows {
		if flow.LoadingPct > bc.MaxLoadingPct {
			bc.MaxLoadingPct = flow.LoadingPct
		}
		if flow.LoadingPct > code.ThermalLimitPct {
			bc.Passed = false
			bc.Violations = append(bc.Violations, fmt.Sprintf("branch %d-%d loading %.1f%% exceeds thermal limit %.1f%%", flow.From, flow.To, flow.LoadingPct, code.ThermalLimitPct))
		}
	}
	return bc
}
