package quantify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/riskquant/internal/modules/metrics"
)

func analysisRecords() []Record {
	return []Record{
		{RiskID: "A", Category: "Cyber", Summary: metrics.Summary{Mean: 100, VaR95: 500, VaR99: 900, TVaR95: 700, TVaR99: 1100}},
		{RiskID: "B", Category: "Ops", Summary: metrics.Summary{Mean: 300, VaR95: 800, VaR99: 1200, TVaR95: 1000, TVaR99: 1500}},
		{RiskID: "C", Category: "Fin", Summary: metrics.Summary{Mean: 200, VaR95: 600, VaR99: 1000, TVaR95: 900, TVaR99: 1300}},
		{RiskID: PortfolioTotalID, Category: "Portfolio", Summary: metrics.Summary{Mean: 600, Median: 550, Std: 120, VaR95: 1500, VaR99: 2500, TVaR95: 2000, TVaR99: 3000}},
	}
}

func TestTopExposures_ByMean(t *testing.T) {
	exposures, err := TopExposures(analysisRecords(), "mean", 2)
	require.NoError(t, err)
	require.Len(t, exposures, 2)

	assert.Equal(t, "B", exposures[0].RiskID)
	assert.Equal(t, 300.0, exposures[0].Value)
	assert.InDelta(t, 50.0, exposures[0].PctOfTotal, 1e-9)

	assert.Equal(t, "C", exposures[1].RiskID)
	assert.InDelta(t, 33.333, exposures[1].PctOfTotal, 0.01)
}

func TestTopExposures_ByVaR(t *testing.T) {
	exposures, err := TopExposures(analysisRecords(), "var_95", 0)
	require.NoError(t, err)
	// Default topN is 5, so all three individual risks are returned.
	require.Len(t, exposures, 3)
	assert.Equal(t, "B", exposures[0].RiskID)
	assert.Equal(t, 800.0, exposures[0].Value)
}

func TestTopExposures_UnknownMetric(t *testing.T) {
	_, err := TopExposures(analysisRecords(), "kurtosis", 5)
	assert.Error(t, err)
}

func TestTopExposures_NoPortfolioRecord(t *testing.T) {
	records := analysisRecords()[:3]
	_, err := TopExposures(records, "mean", 5)
	assert.Error(t, err)
}

func TestInherentVsResidual(t *testing.T) {
	reg := quantifyRegister(t)

	records := []Record{
		{RiskID: "CYB-001", Category: "Cyber", Summary: metrics.Summary{Mean: 100}},
		{RiskID: "OPS-001", Category: "Operations", Summary: metrics.Summary{Mean: 200}},
		{RiskID: "FIN-001", Category: "Financial", Summary: metrics.Summary{Mean: 50}},
		{RiskID: PortfolioTotalID, Category: "Portfolio", Summary: metrics.Summary{Mean: 350}},
	}

	rows, err := InherentVsResidual(reg, records)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	for _, row := range rows {
		// Controls only reduce losses, so inherent >= residual.
		assert.GreaterOrEqual(t, row.InherentLoss, row.ResidualLoss, row.RiskID)
		assert.GreaterOrEqual(t, row.MitigationPct, 0.0, row.RiskID)
		assert.LessOrEqual(t, row.MitigationPct, 100.0, row.RiskID)
	}

	// control 0.4, residual factor 1: inherent = mean / (1 * 0.61).
	assert.InDelta(t, 100/0.61, rows[0].InherentLoss, 1e-9)
}

func TestInherentVsResidual_UnknownRecord(t *testing.T) {
	reg := quantifyRegister(t)
	records := []Record{
		{RiskID: "GHOST", Summary: metrics.Summary{Mean: 10}},
		{RiskID: PortfolioTotalID, Summary: metrics.Summary{Mean: 10}},
	}

	_, err := InherentVsResidual(reg, records)
	assert.Error(t, err)
}

func TestSummarizeKPIs(t *testing.T) {
	reg := quantifyRegister(t)

	records := []Record{
		{RiskID: "CYB-001", Category: "Cyber", Summary: metrics.Summary{Mean: 300}},
		{RiskID: "OPS-001", Category: "Operations", Summary: metrics.Summary{Mean: 100}},
		{RiskID: "FIN-001", Category: "Financial", Summary: metrics.Summary{Mean: 200}},
		{RiskID: PortfolioTotalID, Category: "Portfolio", Summary: metrics.Summary{
			Mean: 600, Median: 550, Std: 100,
			VaR95: 1500, VaR99: 2500, TVaR95: 2000, TVaR99: 3000,
		}},
	}

	kpis, err := SummarizeKPIs(reg, records)
	require.NoError(t, err)

	assert.Equal(t, 3, kpis.NumberOfRisks)
	assert.Equal(t, 600.0, kpis.TotalResidualLoss)
	assert.Equal(t, 600.0, kpis.ExpectedLoss)
	assert.Equal(t, 550.0, kpis.MedianLoss)
	assert.Equal(t, 100.0, kpis.StdDev)
	assert.Equal(t, 1500.0, kpis.PortfolioVaR95)
	assert.Equal(t, 3000.0, kpis.PortfolioTVaR99)
	assert.InDelta(t, 200.0, kpis.AverageRiskSize, 1e-9)

	// All risks share control 0.4 and residual factor 1.
	assert.InDelta(t, 40.0, kpis.AvgControlEffectiveness, 1e-9)
	assert.InDelta(t, 100.0, kpis.AvgResidualFactor, 1e-9)
	assert.InDelta(t, 600/0.61, kpis.TotalInherentLoss, 1e-9)
	assert.Greater(t, kpis.MitigationAmount, 0.0)

	// CYB-001 has the largest mean.
	assert.Equal(t, "CYB-001", kpis.TopRiskID)
	assert.Equal(t, "Cyber", kpis.TopRiskCategory)
	assert.Equal(t, 300.0, kpis.TopRiskMean)
	assert.InDelta(t, 50.0, kpis.TopRiskContributionPct, 1e-9)

	// Only three risks, so the top-3 concentration covers everything.
	assert.InDelta(t, 100.0, kpis.ConcentrationRatioPct, 1e-9)
}

func TestSummarizeKPIs_NoIndividualRecords(t *testing.T) {
	reg := quantifyRegister(t)
	records := []Record{
		{RiskID: PortfolioTotalID, Summary: metrics.Summary{Mean: 10}},
	}

	_, err := SummarizeKPIs(reg, records)
	assert.Error(t, err)
}
