// Command unmet-report flags hours and days where a scenario's dispatch run
// leaves load unserved above a threshold, aggregating hour-level deviations
// into day-level summaries. Grounded on cmd/anomaly-detect's
// deviation-flagging shape, generalized from a predicted-vs-actual NN
// comparison to a dispatched-vs-served gap.
package main

import (
	"flag"
	"fmt"
	"log"

	"microgridsim/internal/config"
	"microgridsim/internal/ingest"
	"microgridsim/internal/sim"
	"microgridsim/internal/solar"
)

type dayUnmet struct {
	day      int
	hours    int
	totalKWh float64
	peakKW   float64
}

func main() {
	scenarioPath := flag.String("scenario", "", "path to the scenario YAML file (required)")
	thresholdKW := flag.Float64("threshold-kw", 0.01, "minimum unmet power in an hour to flag it")
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
		Strategy: sim.Strategy(scenario.Strategy), CycleChargingSigma: scenario.CycleCharging.Sigma,
		CriticalSOC: scenario.Combined.CriticalSOC, RecoverySOC: scenario.Combined.RecoverySOC,
		LifetimeYears: scenario.LifetimeYears, DiscountRate: scenario.DiscountRate,
		Site: solar.Site{LatitudeDeg: scenario.Latitude, LongitudeDeg: scenario.Longitude},
	}
	result, err := sim.Run(components, weather, load, opt)
	if err != nil {
		log.Fatalf("simulation failed: %v", err)
	}

	days := make(map[int]*dayUnmet)
	flaggedHours := 0
	var totalUnmetKWh float64
	for t, kw := range result.Dispatch.Unmet {
		totalUnmetKWh += kw
		if kw < *thresholdKW {
			continue
		}
		flaggedHours++
		dayIdx := t / 24
		bucket, ok := days[dayIdx]
		if !ok {
			bucket = &dayUnmet{day: dayIdx}
			days[dayIdx] = bucket
		}
		bucket.hours++
		bucket.totalKWh += kw
		if kw > bucket.peakKW {
			bucket.peakKW = kw
		}
	}

	fmt.Printf("total_unmet_kwh\t%.2f\n", totalUnmetKWh)
	fmt.Printf("flagged_hours\t%d\n", flaggedHours)
	fmt.Printf("flagged_days\t%d\n", len(days))
	fmt.Println("day\thours_flagged\ttotal_kwh\tpeak_kw")
	for dayIdx := 0; dayIdx < 365; dayIdx++ {
		b, ok := days[dayIdx]
		if !ok {
			continue
		}
		fmt.Printf("%d\t%d\t%.2f\t%.2f\n", b.day, b.hours, b.totalKWh, b.peakKW)
	}
}
