package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"microgridsim/internal/model"
)

// WeatherColumns names the CSV header columns LoadWeatherCSV expects, in
// addition to a "timestamp" column. Defaults match the column names a TMY
// export typically uses.
type WeatherColumns struct {
	Timestamp string
	GHI       string
	DNI       string
	DHI       string
	TAmb      string
	WindSpeed string
}

// DefaultWeatherColumns is the column naming LoadWeatherCSV assumes when
// none is supplied.
var DefaultWeatherColumns = WeatherColumns{
	Timestamp: "timestamp",
	GHI:       "ghi",
	DNI:       "dni",
	DHI:       "dhi",
	TAmb:      "t_amb",
	WindSpeed: "wind_speed",
}

// LoadWeatherCSV reads an hourly TMY-style CSV file (one row per hour, a
// timestamp column plus GHI/DNI/DHI/T_amb/wind_speed columns) into a
// model.WeatherBundle. The file must contain exactly 8,760 data rows.
func LoadWeatherCSV(path string, cols WeatherColumns) (*model.WeatherBundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: opening %s: %w", path, err)
	}
	defer f.Close()

	idx, rows, err := readCSVWithHeader(f)
	if err != nil {
		return nil, fmt.Errorf("ingest: %s: %w", path, err)
	}

	bundle := &model.WeatherBundle{
		GHI:       make([]float64, 0, len(rows)),
		DNI:       make([]float64, 0, len(rows)),
		DHI:       make([]float64, 0, len(rows)),
		TAmbC:     make([]float64, 0, len(rows)),
		WindSpeed: make([]float64, 0, len(rows)),
	}
	for i, row := range rows {
		ghi, err := col(row, idx, cols.GHI)
		if err != nil {
			return nil, fmt.Errorf("ingest: %s: row %d: %w", path, i, err)
		}
		dni, err := col(row, idx, cols.DNI)
		if err != nil {
			return nil, fmt.Errorf("ingest: %s: row %d: %w", path, i, err)
		}
		dhi, err := col(row, idx, cols.DHI)
		if err != nil {
			return nil, fmt.Errorf("ingest: %s: row %d: %w", path, i, err)
		}
		tamb, err := col(row, idx, cols.TAmb)
		if err != nil {
			return nil, fmt.Errorf("ingest: %s: row %d: %w", path, i, err)
		}
		ws, err := col(row, idx, cols.WindSpeed)
		if err != nil {
			return nil, fmt.Errorf("ingest: %s: row %d: %w", path, i, err)
		}
		bundle.GHI = append(bundle.GHI, ghi)
		bundle.DNI = append(bundle.DNI, dni)
		bundle.DHI = append(bundle.DHI, dhi)
		bundle.TAmbC = append(bundle.TAmbC, tamb)
		bundle.WindSpeed = append(bundle.WindSpeed, ws)
	}

	if err := bundle.Validate(); err != nil {
		return nil, fmt.Errorf("ingest: %s: %w", path, err)
	}
	return bundle, nil
}

// LoadProfileColumns names the CSV header columns LoadLoadCSV expects.
type LoadProfileColumns struct {
	Timestamp string
	KW        string
}

// DefaultLoadColumns is the column naming LoadLoadCSV assumes when none is
// supplied.
var DefaultLoadColumns = LoadProfileColumns{Timestamp: "timestamp", KW: "load_kw"}

// LoadLoadCSV reads an hourly demand CSV file into a model.LoadProfile.
func LoadLoadCSV(path string, cols LoadProfileColumns) (*model.LoadProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: opening %s: %w", path, err)
	}
	defer f.Close()

	idx, rows, err := readCSVWithHeader(f)
	if err != nil {
		return nil, fmt.Errorf("ingest: %s: %w", path, err)
	}

	profile := &model.LoadProfile{HourlyKW: make([]float64, 0, len(rows))}
	for i, row := range rows {
		kw, err := col(row, idx, cols.KW)
		if err != nil {
			return nil, fmt.Errorf("ingest: %s: row %d: %w", path, i, err)
		}
		profile.HourlyKW = append(profile.HourlyKW, kw)
	}

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("ingest: %s: %w", path, err)
	}
	return profile, nil
}

func readCSVWithHeader(r io.Reader) (map[string]int, [][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading row: %w", err)
		}
		rows = append(rows, row)
	}
	return idx, rows, nil
}

func col(row []string, idx map[string]int, name string) (float64, error) {
	i, ok := idx[name]
	if !ok {
		return 0, fmt.Errorf("missing column %q", name)
	}
	if i >= len(row) {
		return 0, fmt.Errorf("row too short for column %q", name)
	}
	v, err := strconv.ParseFloat(row[i], 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", name, err)
	}
	return v, nil
}

// ParseTimestamp parses a timestamp cell using RFC3339, falling back to the
// common "2006-01-02 15:04:05" layout TMY exports often use.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
