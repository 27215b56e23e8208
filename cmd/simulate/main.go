// Command simulate runs one full scenario end to end: resource simulation,
// dispatch, lifetime economics, and (if a -network topology file is given)
// the network power-flow phase, printing the result as JSON. Grounded on
// cmd/server's flag-driven CSV-loading entry point, generalized from
// "serve a websocket" to "run once and print."
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"microgridsim/internal/config"
	"microgridsim/internal/ingest"
	"microgridsim/internal/network"
	"microgridsim/internal/sim"
	"microgridsim/internal/solar"
)

func main() {
	scenarioPath := flag.String("scenario", "", "path to the scenario YAML file (required)")
	networkPath := flag.String("network", "", "path to a network topology YAML file (optional)")
	gridCode := flag.String("grid-code", "iec_default", "grid code for the contingency phase: iec_default | fiji | ieee_1547")
	baselineRate := flag.Float64("baseline-grid-rate", 0, "baseline grid rate per kWh, for the IRR cashflow baseline")
	flag.Parse()

	if *scenarioPath == "" {
		log.Fatal("missing -scenario")
	}

	scenario, err := config.Load(*scenarioPath)
	if err != nil {
		log.Fatalf("loading scenario: %v", err)
	}
	components, err := scenario.Components()
	if err != nil {
		log.Fatalf("decoding components: %v", err)
	}

	weather, err := ingest.LoadWeatherCSV(scenario.WeatherCSV, ingest.DefaultWeatherColumns)
	if err != nil {
		log.Fatalf("loading weather csv: %v", err)
	}
	load, err := ingest.LoadLoadCSV(scenario.LoadCSV, ingest.DefaultLoadColumns)
	if err != nil {
		log.Fatalf("loading load csv: %v", err)
	}

	opt := sim.Options{
		Strategy:               sim.Strategy(scenario.Strategy),
		CycleChargingSigma:     scenario.CycleCharging.Sigma,
		CriticalSOC:            scenario.Combined.CriticalSOC,
		RecoverySOC:            scenario.Combined.RecoverySOC,
		LifetimeYears:          scenario.LifetimeYears,
		DiscountRate:           scenario.DiscountRate,
		BaselineGridRatePerKWh: *baselineRate,
		Site:                   solar.Site{LatitudeDeg: scenario.Latitude, LongitudeDeg: scenario.Longitude},
		GridCode:               resolveGridCode(*gridCode),
	}

	if *networkPath != "" {
		topology, err := config.LoadNetwork(*networkPath)
		if err != nil {
			log.Fatalf("loading network topology: %v", err)
		}
		opt.Network = topology
	}

	result, err := sim.Run(components, weather, load, opt)
	if err != nil {
		log.Fatalf("simulation failed: %v", err)
	}

	log.Printf("dispatch complete: npc=%.2f lcoe=%.4f renewable_fraction=%.3f",
		result.Economics.NPC, result.Economics.LCOE, result.Economics.RenewableFraction)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("encoding result: %v", err)
	}
}

func resolveGridCode(name string) network.GridCode {
	switch name {
	case "fiji":
		return network.Fiji
	case "ieee_1547":
		return network.IEEE1547
	default:
		return network.IECDefault
	}
}
