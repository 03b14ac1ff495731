package metrics

import (
	"fmt"
	"sort"

	"github.com/aristath/riskquant/internal/modules/register"
	"github.com/aristath/riskquant/pkg/formulas"
)

// Contribution describes one risk's share of the portfolio's expected loss.
type Contribution struct {
	RiskID          string  `json:"risk_id"`
	MeanLoss        float64 `json:"mean_loss"`
	StdLoss         float64 `json:"std_loss"`
	VaR95           float64 `json:"var_95"`
	ContributionPct float64 `json:"contribution_pct"`
}

// ContributionAnalysis ranks risks by mean loss descending and reports each
// risk's percentage of the portfolio mean.
func ContributionAnalysis(portfolio []float64, byRisk map[string][]float64, topN int) ([]Contribution, error) {
	if len(portfolio) == 0 {
		return nil, fmt.Errorf("portfolio losses must not be empty")
	}

	portfolioMean := formulas.Mean(portfolio)

	contributions := make([]Contribution, 0, len(byRisk))
	for id, losses := range byRisk {
		c := Contribution{
			RiskID:   id,
			MeanLoss: formulas.Mean(losses),
			StdLoss:  formulas.StdDev(losses),
		}
		if v, err := VaR(losses, 0.95); err == nil {
			c.VaR95 = v
		}
		if portfolioMean > 0 {
			c.ContributionPct = c.MeanLoss / portfolioMean * 100
		}
		contributions = append(contributions, c)
	}

	sort.Slice(contributions, func(i, j int) bool {
		if contributions[i].MeanLoss != contributions[j].MeanLoss {
			return contributions[i].MeanLoss > contributions[j].MeanLoss
		}
		return contributions[i].RiskID < contributions[j].RiskID
	})

	if topN > 0 && topN < len(contributions) {
		contributions = contributions[:topN]
	}
	return contributions, nil
}

// MarginalContributionToVaR computes a risk's dVaR: its average loss across
// the trials where the portfolio is in its own tail (portfolio loss at or
// beyond portfolio VaR at level q).
//
// This is a simplified conditional tail mean, not a Euler/Shapley
// decomposition; the per-risk dVaR values need not sum to the portfolio TVaR.
// Risks with zero variance contribute 0.
func MarginalContributionToVaR(portfolio, riskLosses []float64, q float64) (float64, error) {
	if len(portfolio) != len(riskLosses) {
		return 0, fmt.Errorf("array length mismatch: portfolio %d, risk %d", len(portfolio), len(riskLosses))
	}

	if formulas.Variance(riskLosses) == 0 {
		return 0, nil
	}

	threshold, err := VaR(portfolio, q)
	if err != nil {
		return 0, err
	}

	sum := 0.0
	count := 0
	for i, p := range portfolio {
		if p >= threshold {
			sum += riskLosses[i]
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return sum / float64(count), nil
}

// TornadoRow is one row of the tornado ranking.
type TornadoRow struct {
	RiskID   string  `json:"risk_id"`
	Category string  `json:"category"`
	MeanLoss float64 `json:"mean_loss"`
	DVaR     float64 `json:"dvar"`
}

// TornadoData ranks risks for tornado charting: the union of the top-N risks
// by mean loss and the top-N by dVaR, sorted by mean loss descending.
func TornadoData(reg *register.Register, portfolio []float64, byRisk map[string][]float64, q float64, topN int) ([]TornadoRow, error) {
	if reg == nil || reg.Len() == 0 {
		return nil, register.ErrEmptyRegister
	}
	if topN <= 0 {
		topN = 10
	}

	rows := make([]TornadoRow, 0, len(byRisk))
	for id, losses := range byRisk {
		dvar, err := MarginalContributionToVaR(portfolio, losses, q)
		if err != nil {
			return nil, fmt.Errorf("dVaR for risk %s: %w", id, err)
		}

		row := TornadoRow{
			RiskID:   id,
			MeanLoss: formulas.Mean(losses),
			DVaR:     dvar,
		}
		if risk, ok := reg.Find(id); ok {
			row.Category = risk.Category
		}
		rows = append(rows, row)
	}

	selected := make(map[string]bool, topN*2)
	markTop := func(less func(i, j int) bool) {
		sort.Slice(rows, less)
		for i := 0; i < topN && i < len(rows); i++ {
			selected[rows[i].RiskID] = true
		}
	}
	markTop(func(i, j int) bool { return rows[i].MeanLoss > rows[j].MeanLoss })
	markTop(func(i, j int) bool { return rows[i].DVaR > rows[j].DVaR })

	out := make([]TornadoRow, 0, len(selected))
	for _, row := range rows {
		if selected[row.RiskID] {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanLoss != out[j].MeanLoss {
			return out[i].MeanLoss > out[j].MeanLoss
		}
		return out[i].RiskID < out[j].RiskID
	})

	return out, nil
}

// CorrelationMatrix computes pairwise Pearson correlations between the
// per-risk loss arrays, keyed by risk identifier. With independent sampling
// the off-diagonal entries should be near zero, which makes this a useful
// independence diagnostic.
func CorrelationMatrix(byRisk map[string][]float64) map[string]map[string]float64 {
	ids := make([]string, 0, len(byRisk))
	for id := range byRisk {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make(map[string]map[string]float64, len(ids))
	for _, a := range ids {
		out[a] = make(map[string]float64, len(ids))
		for _, b := range ids {
			if a == b {
				out[a][b] = 1
				continue
			}
			out[a][b] = formulas.Correlation(byRisk[a], byRisk[b])
		}
	}
	return out
}
