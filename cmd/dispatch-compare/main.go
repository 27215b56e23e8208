// Command dispatch-compare runs every dispatch strategy against one
// scenario and tabulates the resulting cost and energy metrics side by
// side. Grounded on cmd/battery-compare's capacity-sweep-and-tabulate
// shape, generalized from sweeping battery capacities to sweeping dispatch
// strategies.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"microgridsim/internal/config"
	"microgridsim/internal/ingest"
	"microgridsim/internal/sim"
	"microgridsim/internal/solar"
)

var strategies = []sim.Strategy{sim.LoadFollowing, sim.CycleCharging, sim.Combined, sim.Optimal}

func main() {
	scenarioPath := flag.String("scenario", "", "path to the scenario YAML file (required)")
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

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "strategy\tnpc\tlcoe\trenewable_fraction\tunmet_kwh\texcess_kwh")

	for _, strat := range strategies {
		opt := sim.Options{
			Strategy: strat, CycleChargingSigma: scenario.CycleCharging.Sigma,
			CriticalSOC: scenario.Combined.CriticalSOC, RecoverySOC: scenario.Combined.RecoverySOC,
			LifetimeYears: scenario.LifetimeYears, DiscountRate: scenario.DiscountRate,
			BaselineGridRatePerKWh: *baselineRate,
			Site:                   solar.Site{LatitudeDeg: scenario.Latitude, LongitudeDeg: scenario.Longitude},
		}
		result, err := sim.Run(components, weather, load, opt)
		if err != nil {
			log.Fatalf("strategy %s: %v", strat, err)
		}
		var unmet, excess float64
		for i := range result.Dispatch.Unmet {
			unmet += result.Dispatch.Unmet[i]
			excess += result.Dispatch.Excess[i]
		}
		fmt.Fprintf(w, "%s\t%.2f\t%.4f\t%.3f\t%.1f\t%.1f\n",
			strat, result.Economics.NPC, result.Economics.LCOE, result.Economics.RenewableFraction, unmet, excess)
	}

	if err := w.Flush(); err != nil {
		log.Fatalf("writing report: %v", err)
	}
}
