package quantify

import (
	"fmt"
	"sort"

	"github.com/aristath/riskquant/internal/modules/register"
)

// Exposure is one row of a top-exposures ranking.
type Exposure struct {
	RiskID     string  `json:"risk_id"`
	Category   string  `json:"category"`
	Value      float64 `json:"value"`
	PctOfTotal float64 `json:"pct_of_total"`
}

// metricValue extracts a rankable metric from a record by name.
func metricValue(r Record, metric string) (float64, error) {
	switch metric {
	case "mean":
		return r.Mean, nil
	case "var_95":
		return r.VaR95, nil
	case "var_99":
		return r.VaR99, nil
	case "tvar_95":
		return r.TVaR95, nil
	case "tvar_99":
		return r.TVaR99, nil
	default:
		return 0, fmt.Errorf("unknown exposure metric %q", metric)
	}
}

// TopExposures ranks the individual risks by the named metric (mean, var_95,
// var_99, tvar_95, tvar_99) and reports each as a percentage of the portfolio
// total for the same metric.
func TopExposures(records []Record, metric string, topN int) ([]Exposure, error) {
	portfolio, err := portfolioRecord(records)
	if err != nil {
		return nil, err
	}
	total, err := metricValue(portfolio, metric)
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = 5
	}

	individuals := individualRecords(records)
	exposures := make([]Exposure, 0, len(individuals))
	for _, r := range individuals {
		v, err := metricValue(r, metric)
		if err != nil {
			return nil, err
		}
		e := Exposure{RiskID: r.RiskID, Category: r.Category, Value: v}
		if total > 0 {
			e.PctOfTotal = v / total * 100
		}
		exposures = append(exposures, e)
	}

	sort.Slice(exposures, func(i, j int) bool {
		if exposures[i].Value != exposures[j].Value {
			return exposures[i].Value > exposures[j].Value
		}
		return exposures[i].RiskID < exposures[j].RiskID
	})
	if topN < len(exposures) {
		exposures = exposures[:topN]
	}
	return exposures, nil
}

// InherentResidualRow compares one risk's loss before and after controls.
type InherentResidualRow struct {
	RiskID        string  `json:"risk_id"`
	Category      string  `json:"category"`
	InherentLoss  float64 `json:"inherent_loss"`
	ResidualLoss  float64 `json:"residual_loss"`
	MitigationPct float64 `json:"mitigation_pct"`
}

// InherentVsResidual estimates each risk's inherent (pre-control) loss by
// reversing the control scaling applied during simulation. The 0.01 offset in
// the denominator keeps fully-controlled risks finite; the estimate is a
// reporting approximation, not a re-simulation.
func InherentVsResidual(reg *register.Register, records []Record) ([]InherentResidualRow, error) {
	rows := make([]InherentResidualRow, 0, reg.Len())
	for _, r := range individualRecords(records) {
		risk, ok := reg.Find(r.RiskID)
		if !ok {
			return nil, fmt.Errorf("record %s not present in register", r.RiskID)
		}

		denom := risk.ResidualFactor * (1 - risk.ControlEffectiveness + 0.01)
		if denom <= 0 {
			denom = 0.01
		}

		row := InherentResidualRow{
			RiskID:       r.RiskID,
			Category:     r.Category,
			InherentLoss: r.Mean / denom,
			ResidualLoss: r.Mean,
		}
		if row.InherentLoss > 0 {
			row.MitigationPct = (row.InherentLoss - row.ResidualLoss) / row.InherentLoss * 100
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// KPISummary aggregates portfolio-level performance and risk indicators.
type KPISummary struct {
	TotalInherentLoss       float64 `json:"total_inherent_loss"`
	TotalResidualLoss       float64 `json:"total_residual_loss"`
	MitigationEffectivePct  float64 `json:"mitigation_effectiveness_pct"`
	MitigationAmount        float64 `json:"mitigation_amount"`
	AvgControlEffectiveness float64 `json:"avg_control_effectiveness_pct"`
	AvgResidualFactor       float64 `json:"avg_residual_factor_pct"`
	PortfolioVaR95          float64 `json:"portfolio_var_95"`
	PortfolioVaR99          float64 `json:"portfolio_var_99"`
	PortfolioTVaR95         float64 `json:"portfolio_tvar_95"`
	PortfolioTVaR99         float64 `json:"portfolio_tvar_99"`
	TopRiskID               string  `json:"top_risk_id"`
	TopRiskCategory         string  `json:"top_risk_category"`
	TopRiskMean             float64 `json:"top_risk_mean"`
	TopRiskContributionPct  float64 `json:"top_risk_contribution_pct"`
	ConcentrationRatioPct   float64 `json:"concentration_ratio_pct"`
	NumberOfRisks           int     `json:"number_of_risks"`
	AverageRiskSize         float64 `json:"average_risk_size"`
	ExpectedLoss            float64 `json:"expected_loss"`
	MedianLoss              float64 `json:"median_loss"`
	StdDev                  float64 `json:"std_dev"`
}

// SummarizeKPIs builds the KPI/KRI summary from a quantified register. The
// inherent total reverses the average control scaling across risks, which is
// a deliberate simplification for headline reporting.
func SummarizeKPIs(reg *register.Register, records []Record) (KPISummary, error) {
	portfolio, err := portfolioRecord(records)
	if err != nil {
		return KPISummary{}, err
	}

	individuals := individualRecords(records)
	if len(individuals) == 0 {
		return KPISummary{}, fmt.Errorf("no individual risk records present")
	}

	var avgControl, avgResidual float64
	for _, risk := range reg.Risks {
		avgControl += risk.ControlEffectiveness
		avgResidual += risk.ResidualFactor
	}
	avgControl /= float64(reg.Len())
	avgResidual /= float64(reg.Len())

	totalResidual := portfolio.Mean
	totalInherent := totalResidual / (avgResidual * (1 - avgControl + 0.01))

	sorted := make([]Record, len(individuals))
	copy(sorted, individuals)
	sortByMeanDesc(sorted)

	top := sorted[0]
	top3 := 0.0
	for i := 0; i < 3 && i < len(sorted); i++ {
		top3 += sorted[i].Mean
	}

	summary := KPISummary{
		TotalInherentLoss:       totalInherent,
		TotalResidualLoss:       totalResidual,
		MitigationAmount:        totalInherent - totalResidual,
		AvgControlEffectiveness: avgControl * 100,
		AvgResidualFactor:       avgResidual * 100,
		PortfolioVaR95:          portfolio.VaR95,
		PortfolioVaR99:          portfolio.VaR99,
		PortfolioTVaR95:         portfolio.TVaR95,
		PortfolioTVaR99:         portfolio.TVaR99,
		TopRiskID:               top.RiskID,
		TopRiskCategory:         top.Category,
		TopRiskMean:             top.Mean,
		NumberOfRisks:           len(individuals),
		AverageRiskSize:         totalResidual / float64(len(individuals)),
		ExpectedLoss:            portfolio.Mean,
		MedianLoss:              portfolio.Median,
		StdDev:                  portfolio.Std,
	}
	if totalInherent > 0 {
		summary.MitigationEffectivePct = (totalInherent - totalResidual) / totalInherent * 100
	}
	if totalResidual > 0 {
		summary.TopRiskContributionPct = top.Mean / totalResidual * 100
		summary.ConcentrationRatioPct = top3 / totalResidual * 100
	}

	return summary, nil
}
