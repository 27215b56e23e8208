package ingest

import (
	"io"

	"microgridsim/internal/timeseries"
)

// Parser reads irregularly-spaced resource or load readings from a source,
// for use with timeseries.BuildHourly8760.
type Parser interface {
	Parse(r io.Reader) ([]timeseries.Reading, error)
}
