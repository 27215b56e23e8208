package gridconn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microgridsim/internal/model"
)

func flatConfig() model.GridConfig {
	return model.GridConfig{
		MaxImportKW:           50,
		MaxExportKW:           50,
		SellBackEnabled:       true,
		BuyRate:               0.25,
		SellRate:              0.08,
		DemandChargePerKW:     10,
		GridIntensityKgPerKWh: 0.45,
	}
}

func TestConnection_ImportClampedToLimit(t *testing.T) {
	c, err := New(flatConfig())
	require.NoError(t, err)

	delivered := c.Import(100, 1, 0, 1)
	assert.InDelta(t, 50, delivered, 1e-9)
}

func TestConnection_ExportDisabled(t *testing.T) {
	cfg := flatConfig()
	cfg.SellBackEnabled = false
	c, err := New(cfg)
	require.NoError(t, err)

	delivered := c.Export(20, 1, 0, 1)
	assert.Equal(t, 0.0, delivered)
}

func TestConnection_FlatRateCost(t *testing.T) {
	c, err := New(flatConfig())
	require.NoError(t, err)

	c.Import(10, 2, 0, 1)
	st := c.GetState()
	assert.InDelta(t, 20, st.ImportKWh, 1e-9)
	assert.InDelta(t, 20*0.25, st.ImportCost, 1e-9)
}

func TestConnection_NetMeteringBanksExport(t *testing.T) {
	cfg := flatConfig()
	cfg.NetMetering = true
	c, err := New(cfg)
	require.NoError(t, err)

	c.Export(10, 1, 0, 1)
	st := c.GetState()
	assert.InDelta(t, 10, st.CreditBankKWh, 1e-9)
	assert.Equal(t, 0.0, st.ExportRevenue, "net metering credits kWh, not cash, at export time")

	delivered := c.Import(10, 1, 1, 1)
	assert.InDelta(t, 10, delivered, 1e-9)
	st = c.GetState()
	assert.InDelta(t, 0, st.CreditBankKWh, 1e-9, "import should have been offset by the banked credit")
	assert.InDelta(t, 0, st.ImportCost, 1e-9, "fully offset import incurs no cost")
}

func TestConnection_DefaultSellPricing(t *testing.T) {
	c, err := New(flatConfig())
	require.NoError(t, err)

	c.Export(10, 1, 0, 1)
	st := c.GetState()
	assert.InDelta(t, 10*0.08, st.ExportRevenue, 1e-9)
}

func TestConnection_TOUOverridesFlatRate(t *testing.T) {
	cfg := flatConfig()
	cfg.TOUSchedule = []model.TOUPeriod{
		{Name: "peak", Buy: 0.50, Sell: 0.20, Hours: []int{17, 18, 19}, Months: []int{1, 2, 3}},
	}
	c, err := New(cfg)
	require.NoError(t, err)

	// hourOfYear=17 falls in TOU hour-of-day 17, month 1: should use peak buy rate.
	c.Import(10, 1, 17, 1)
	st := c.GetState()
	assert.InDelta(t, 10*0.50, st.ImportCost, 1e-9)
}

func TestConnection_DemandCharge(t *testing.T) {
	c, err := New(flatConfig())
	require.NoError(t, err)

	c.Import(30, 1, 0, 1)
	c.Import(45, 1, 1, 1)
	c.Import(20, 1, 2, 1)

	assert.InDelta(t, 45*10, c.DemandChargeCost(), 1e-9)

	c.ResetDemandPeak()
	assert.Equal(t, 0.0, c.DemandChargeCost())
}

func TestConnection_CO2Emissions(t *testing.T) {
	c, err := New(flatConfig())
	require.NoError(t, err)

	c.Import(10, 10, 0, 1)
	st := c.GetState()
	assert.InDelta(t, 100*0.45, st.CO2EmittedKg, 1e-9)
}

func TestConnection_CheckImportLimit(t *testing.T) {
	c, err := New(flatConfig())
	require.NoError(t, err)

	assert.NoError(t, c.CheckImportLimit(50))
	assert.Error(t, c.CheckImportLimit(51))
}
