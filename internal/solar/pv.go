package solar

import (
	"math"
	"time"

	"microgridsim/internal/model"
)

// ArraySizing auto-scales a single-string module count so the system meets
// capacity_kwp at STC, per spec.md §4.2.4: module count is derived, not a
// user input.
type ArraySizing struct {
	ModuleCount    float64
	SeriesPerString float64
	ParallelStrings float64
	ModuleWp       float64
}

// defaultModuleWp is the per-module STC nameplate this sizing assumes (a
// generic 60-cell crystalline-silicon module).
const defaultModuleWp = 400.0

// sizeArray derives the module count from capacity_kwp and defaultModuleWp
// and lays it out as a near-square grid: round(sqrt(count)) modules in
// series per string, and enough parallel strings to reach the count.
func sizeArray(capacityKWp float64) ArraySizing {
	moduleCount := math.Max(1, math.Round(capacityKWp*1000/defaultModuleWp))
	seriesPerString := math.Max(1, math.Round(math.Sqrt(moduleCount)))
	parallelStrings := math.Max(1, math.Round(moduleCount/seriesPerString))
	return ArraySizing{
		ModuleCount:     seriesPerString * parallelStrings,
		SeriesPerString: seriesPerString,
		ParallelStrings: parallelStrings,
		ModuleWp:        defaultModuleWp,
	}
}

// Site carries the site/array geometry Simulate needs beyond the weather
// bundle.
type Site struct {
	LatitudeDeg         float64
	LongitudeDeg        float64
	TimezoneOffsetHours float64
	Albedo              float64 // ground reflectance, default 0.2
}

// Simulate runs the full PV pipeline spec.md §4.2.4 describes across an
// 8,760-hour weather bundle and returns pv_kw, the AC-bus power delivered
// each hour.
func Simulate(cfg model.PVConfig, weather *model.WeatherBundle, site Site, yearIndex int) ([]float64, error) {
	if err := weather.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if site.Albedo <= 0 {
		site.Albedo = 0.2
	}

	sizing := sizeArray(cfg.CapacityKWp)
	inv := DefaultInverterParams(cfg.CapacityKWp)
	if cfg.InverterEfficiency > 0 {
		inv.PeakEfficiency = cfg.InverterEfficiency
	}
	bos := DefaultBOSLosses
	if cfg.SystemLosses > 0 {
		// A single user-supplied system-loss fraction overrides the
		// itemized BOS breakdown, folded entirely into wiring.
		bos = BOSLosses{WiringFrac: cfg.SystemLosses}
	}
	derate := bos.CombinedDerate()
	if cfg.DeratingFactor > 0 {
		derate *= cfg.DeratingFactor
	}
	degrade := AnnualDegradation(cfg.AnnualDegradation, yearIndex)

	base := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC) // an arbitrary non-leap reference year
	out := make([]float64, model.HoursPerYear)

	for t := 0; t < model.HoursPerYear; t++ {
		ts := base.Add(time.Duration(t) * time.Hour)
		dayOfYear := ts.YearDay()
		hourOfDay := float64(ts.Hour()) + 0.5 // hour-midpoint convention for solar position

		pos := Position(dayOfYear, hourOfDay, site.LatitudeDeg, site.LongitudeDeg, site.TimezoneOffsetHours)
		if pos.ZenithDeg >= 90 {
			continue // night: short-circuits to zero per spec.md §4.2.4
		}

		aoi := AngleOfIncidence(pos, cfg.TiltDeg, cfg.AzimuthDeg)
		poa := PerezTransposition(weather.GHI[t], weather.DNI[t], weather.DHI[t], pos.ZenithDeg, aoi, cfg.TiltDeg, site.Albedo)
		if poa.Total <= 0 {
			continue
		}

		cellTemp := NOCTCellTemp(weather.TAmbC[t], poa.Total, 45.0)
		params := DeSotoParams(poa.Total, cellTemp)
		vmp, imp := MPP(params, sizing.SeriesPerString, sizing.ParallelStrings)
		dcKW := vmp * imp / 1000.0
		if dcKW < 0 {
			dcKW = 0
		}

		acKW := inv.ACOutput(dcKW)
		acKW *= derate * degrade
		if acKW < 0 {
			acKW = 0
		}
		out[t] = acKW
	}
	return out, nil
}
