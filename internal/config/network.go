package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"microgridsim/internal/network"
)

// busYAML and branchYAML mirror network.Bus/network.Branch in a flat,
// string-tagged wire format (bus/branch type spelled out rather than an
// int enum), for the network-topology YAML document cmd/powerflow loads.
type busYAML struct {
	Name        string  `yaml:"name"`
	Type        string  `yaml:"type"` // slack | pv | pq
	VBaseKV     float64 `yaml:"v_base_kv"`
	VSetpointPU float64 `yaml:"v_setpoint_pu"`
	VMinPU      float64 `yaml:"v_min_pu"`
	VMaxPU      float64 `yaml:"v_max_pu"`
	PGenPU      float64 `yaml:"p_gen_pu"`
	QGenPU      float64 `yaml:"q_gen_pu"`
	PLoadPU     float64 `yaml:"p_load_pu"`
	QLoadPU     float64 `yaml:"q_load_pu"`
	ScMVA       float64 `yaml:"sc_mva"`
}

type branchYAML struct {
	From         string  `yaml:"from"`
	To           string  `yaml:"to"`
	Type         string  `yaml:"type"` // cable | line | transformer | inverter
	ROhmPerKM    float64 `yaml:"r_ohm_per_km"`
	XOhmPerKM    float64 `yaml:"x_ohm_per_km"`
	LengthKM     float64 `yaml:"length_km"`
	ImpedancePct float64 `yaml:"impedance_pct"`
	RatingMVA    float64 `yaml:"rating_mva"`
	XOverR       float64 `yaml:"x_over_r"`
	Efficiency   float64 `yaml:"efficiency"`
	BPU          float64 `yaml:"b_pu"`
	ThermalMVA   float64 `yaml:"thermal_mva"`
}

// NetworkTopology is the decoded network-topology YAML document.
type NetworkTopology struct {
	SBaseMVA float64      `yaml:"s_base_mva"`
	Buses    []busYAML    `yaml:"buses"`
	Branches []branchYAML `yaml:"branches"`
}

// LoadNetwork reads and decodes a network-topology YAML file into a
// network.Network, resolving branch endpoints by bus name.
func LoadNetwork(path string) (*network.Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var doc NetworkTopology
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	byName := make(map[string]int, len(doc.Buses))
	n := &network.Network{SBaseMVA: doc.SBaseMVA}
	for i, b := range doc.Buses {
		byName[b.Name] = i
		n.Buses = append(n.Buses, network.Bus{
			Index: i, Name: b.Name, Type: busTypeOf(b.Type),
			VBaseKV: b.VBaseKV, VSetpointPU: b.VSetpointPU,
			VMinPU: b.VMinPU, VMaxPU: b.VMaxPU,
			PGenPU: b.PGenPU, QGenPU: b.QGenPU, PLoadPU: b.PLoadPU, QLoadPU: b.QLoadPU,
			ScMVA: b.ScMVA,
		})
	}

	for _, br := range doc.Branches {
		from, ok := byName[br.From]
		if !ok {
			return nil, fmt.Errorf("config: %s: branch references unknown bus %q", path, br.From)
		}
		to, ok := byName[br.To]
		if !ok {
			return nil, fmt.Errorf("config: %s: branch references unknown bus %q", path, br.To)
		}
		z, err := branchImpedance(br, n.Buses[from].VBaseKV, doc.SBaseMVA)
		if err != nil {
			return nil, fmt.Errorf("config: %s: branch %s-%s: %w", path, br.From, br.To, err)
		}
		n.Branches = append(n.Branches, network.Branch{
			From: from, To: to, Type: branchTypeOf(br.Type),
			ZPU: z, BPU: br.BPU, Tap: complex(1, 0), ThermalMVA: br.ThermalMVA,
		})
	}

	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return n, nil
}

func branchImpedance(br branchYAML, vBaseKV, sBaseMVA float64) (complex128, error) {
	switch branchTypeOf(br.Type) {
	case network.Transformer:
		xOverR := br.XOverR
		if xOverR == 0 {
			xOverR = 10
		}
		return network.TransformerImpedancePU(br.ImpedancePct, br.RatingMVA, sBaseMVA, xOverR), nil
	case network.Inverter:
		return network.InverterImpedancePU(br.Efficiency, br.RatingMVA, sBaseMVA), nil
	default: // cable, line
		return network.CableImpedancePU(br.ROhmPerKM, br.XOhmPerKM, br.LengthKM, vBaseKV, sBaseMVA), nil
	}
}

func busTypeOf(s string) network.BusType {
	switch s {
	case "slack":
		return network.Slack
	case "pv":
		return network.PV
	default:
		return network.PQ
	}
}

func branchTypeOf(s string) network.BranchType {
	switch s {
	case "transformer":
		return network.Transformer
	case "inverter":
		return network.Inverter
	case "line":
		return network.Line
	default:
		return network.Cable
	}
}
