// Package gridconn implements the optional utility grid connection spec.md
// §4.2.3 describes: import/export metering, flat and time-of-use tariffs,
// demand charges, and net-metering vs default-sell-rate crediting. The
// tariff/effective-price split follows the teacher corpus's evcc tariff.go
// (grid vs feed-in rate lookup, an effective blended price) and the
// teacher's own net-metering credit-bank accounting in engine.go.
package gridconn

import (
	"fmt"

	"microgridsim/internal/model"
)

// Connection is the stateful grid interconnection, mutated once per
// simulated hour.
type Connection struct {
	cfg model.GridConfig

	importKWh     float64
	exportKWh     float64
	peakImportKW  float64
	creditBankKWh float64 // net-metering banked export, kWh

	importCost    float64
	exportRevenue float64
}

// New constructs a Connection from its configuration.
func New(cfg model.GridConfig) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Connection{cfg: cfg}, nil
}

// Import draws reqKW from the grid for dtHours, clamped to the import
// capacity limit, and returns the power actually drawn.
func (c *Connection) Import(reqKW, dtHours float64, hourOfYear, month int) float64 {
	if reqKW <= 0 || dtHours <= 0 {
		return 0
	}
	deliveredKW := reqKW
	if c.cfg.MaxImportKW > 0 && deliveredKW > c.cfg.MaxImportKW {
		deliveredKW = c.cfg.MaxImportKW
	}
	if deliveredKW > c.peakImportKW {
		c.peakImportKW = deliveredKW
	}

	kwh := deliveredKW * dtHours
	rate := c.buyRate(hourOfYear, month)
	if c.cfg.NetMetering && c.creditBankKWh > 0 {
		// Net metering: banked export energy offsets import 1:1 before any
		// cash changes hands.
		offset := kwh
		if offset > c.creditBankKWh {
			offset = c.creditBankKWh
		}
		c.creditBankKWh -= offset
		kwh -= offset
	}
	c.importKWh += deliveredKW * dtHours
	c.importCost += kwh * rate

	return deliveredKW
}

// Export sells reqKW of surplus to the grid for dtHours, clamped to the
// export capacity limit (and to zero if export is disabled), and returns
// the power actually exported.
func (c *Connection) Export(reqKW, dtHours float64, hourOfYear, month int) float64 {
	if !c.cfg.SellBackEnabled || reqKW <= 0 || dtHours <= 0 {
		return 0
	}
	deliveredKW := reqKW
	if c.cfg.MaxExportKW > 0 && deliveredKW > c.cfg.MaxExportKW {
		deliveredKW = c.cfg.MaxExportKW
	}

	kwh := deliveredKW * dtHours
	c.exportKWh += kwh

	if c.cfg.NetMetering {
		c.creditBankKWh += kwh
		return deliveredKW
	}

	rate := c.sellRate(hourOfYear, month)
	c.exportRevenue += kwh * rate
	return deliveredKW
}

// buyRate returns the applicable per-kWh purchase price: the matching
// time-of-use period if one applies to this hour and month, else the flat
// buy rate.
func (c *Connection) buyRate(hourOfYear, month int) float64 {
	if p := c.matchTOU(hourOfYear, month); p != nil {
		return p.Buy
	}
	return c.cfg.BuyRate
}

// sellRate returns the applicable per-kWh default sell price (used only
// when net metering is disabled).
func (c *Connection) sellRate(hourOfYear, month int) float64 {
	if p := c.matchTOU(hourOfYear, month); p != nil {
		return p.Sell
	}
	return c.cfg.SellRate
}

func (c *Connection) matchTOU(hourOfYear, month int) *model.TOUPeriod {
	hod := hourOfYear % 24
	for i := range c.cfg.TOUSchedule {
		p := &c.cfg.TOUSchedule[i]
		if !containsInt(p.Months, month) {
			continue
		}
		if containsInt(p.Hours, hod) {
			return p
		}
	}
	return nil
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// Config returns the connection's static configuration, for callers (such
// as the LP-optimal dispatch strategy) that need tariff parameters without
// driving the stateful import/export contract.
func (c *Connection) Config() model.GridConfig { return c.cfg }

// BuyPrice exposes the per-kWh purchase price lookup used internally by
// Import, for callers that price hours without metering them.
func (c *Connection) BuyPrice(hourOfYear, month int) float64 { return c.buyRate(hourOfYear, month) }

// SellPrice exposes the per-kWh default sell price lookup used internally
// by Export, for callers that price hours without metering them.
func (c *Connection) SellPrice(hourOfYear, month int) float64 { return c.sellRate(hourOfYear, month) }

// DemandChargeCost returns the demand charge for the peak import power
// observed since the last Reset or ResetDemandPeak, times the per-kW demand
// rate.
func (c *Connection) DemandChargeCost() float64 {
	return c.peakImportKW * c.cfg.DemandChargePerKW
}

// ResetDemandPeak clears the tracked peak import. Connection never calls it
// itself: without a call, the peak spans every Import since the last Reset.
func (c *Connection) ResetDemandPeak() {
	c.peakImportKW = 0
}

// State is the running-total snapshot used by economics and reporting.
type State struct {
	ImportKWh      float64
	ExportKWh      float64
	PeakImportKW   float64
	CreditBankKWh  float64
	ImportCost     float64
	ExportRevenue  float64
	NetCost        float64
	CO2EmittedKg   float64
}

// GetState returns the current running totals, including grid-intensity
// CO2 emissions attributable to imported energy.
func (c *Connection) GetState() State {
	return State{
		ImportKWh:     c.importKWh,
		ExportKWh:     c.exportKWh,
		PeakImportKW:  c.peakImportKW,
		CreditBankKWh: c.creditBankKWh,
		ImportCost:    c.importCost,
		ExportRevenue: c.exportRevenue,
		NetCost:       c.importCost - c.exportRevenue,
		CO2EmittedKg:  c.importKWh * c.cfg.GridIntensityKgPerKWh,
	}
}

// Reset clears all running totals for a fresh simulation pass.
func (c *Connection) Reset() {
	c.importKWh = 0
	c.exportKWh = 0
	c.peakImportKW = 0
	c.creditBankKWh = 0
	c.importCost = 0
	c.exportRevenue = 0
}

// CheckImportLimit returns an error if requestedKW exceeds the connection's
// import capacity (a zero MaxImportKW means no limit).
func (c *Connection) CheckImportLimit(requestedKW float64) error {
	if c.cfg.MaxImportKW > 0 && requestedKW > c.cfg.MaxImportKW+1e-6 {
		return fmt.Errorf("gridconn: requested import %.3f kW exceeds limit %.3f kW", requestedKW, c.cfg.MaxImportKW)
	}
	return nil
}
