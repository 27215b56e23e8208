// Command load-profile reports peak demand, load factor, and monthly
// energy totals for an hourly load CSV. Grounded on cmd/load-analysis's
// CSV-driven, flag-configured analysis shape, stripped of its heat-pump/COP
// and PLN-tariff-specific bucketing.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"microgridsim/internal/ingest"
	"microgridsim/internal/model"
	"microgridsim/internal/timeseries"
)

func main() {
	csvPath := flag.String("load-csv", "", "path to the hourly load CSV file (required)")
	timestampCol := flag.String("timestamp-column", ingest.DefaultLoadColumns.Timestamp, "timestamp column name")
	kwCol := flag.String("kw-column", ingest.DefaultLoadColumns.KW, "load (kW) column name")
	flag.Parse()

	if *csvPath == "" {
		log.Fatal("missing -load-csv")
	}

	load, err := ingest.LoadLoadCSV(*csvPath, ingest.LoadProfileColumns{Timestamp: *timestampCol, KW: *kwCol})
	if err != nil {
		log.Fatalf("loading load csv: %v", err)
	}

	annualKWh := load.AnnualKWh()
	peak := peakKW(load.HourlyKW)
	loadFactor := 0.0
	if peak > 0 {
		loadFactor = (annualKWh / model.HoursPerYear) / peak
	}

	monthly := timeseries.MonthlySums(load.HourlyKW, model.MonthBoundaries)

	fmt.Printf("annual_energy_kwh\t%.1f\n", annualKWh)
	fmt.Printf("peak_kw\t%.2f\n", peak)
	fmt.Printf("load_factor\t%.4f\n", loadFactor)
	fmt.Println("month\tenergy_kwh")
	for m, kwh := range monthly {
		fmt.Printf("%s\t%.1f\n", time.Month(m+1), kwh)
	}
}

func peakKW(v []float64) float64 {
	var peak float64
	for _, x := range v {
		if x > peak {
			peak = x
		}
	}
	return peak
}
