package quantify

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// TrendPoint is one synthetic period of portfolio-level trend data.
type TrendPoint struct {
	Period        int     `json:"period"`
	Label         string  `json:"label"`
	MeanLoss      float64 `json:"mean_loss"`
	VaR95         float64 `json:"var_95"`
	Concentration float64 `json:"concentration"`
}

// TrendData generates a synthetic period-over-period series around the
// current portfolio metrics: a seeded random walk with a slight upward drift,
// intended for trend visualizations when no real history exists yet. The
// walk runs on an explicit seeded source so the series is reproducible.
func TrendData(records []Record, nPeriods int, periodLabel string, volatility float64, seed uint64) ([]TrendPoint, error) {
	if nPeriods <= 0 {
		nPeriods = 8
	}
	if periodLabel == "" {
		periodLabel = "Quarter"
	}
	if volatility <= 0 {
		volatility = 0.15
	}

	portfolio, err := portfolioRecord(records)
	if err != nil {
		return nil, err
	}
	individuals := individualRecords(records)
	if len(individuals) == 0 {
		return nil, fmt.Errorf("no individual risk records present")
	}

	sorted := make([]Record, len(individuals))
	copy(sorted, individuals)
	sortByMeanDesc(sorted)

	top3 := 0.0
	for i := 0; i < 3 && i < len(sorted); i++ {
		top3 += sorted[i].Mean
	}
	baseConcentration := 0.0
	if portfolio.Mean > 0 {
		baseConcentration = top3 / portfolio.Mean * 100
	}

	noise := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(seed, 0)}

	points := make([]TrendPoint, 0, nPeriods)
	for i := 0; i < nPeriods; i++ {
		meanFactor := 1 + noise.Rand()*volatility - volatility*0.5
		varFactor := 1 + noise.Rand()*volatility*1.2 - volatility*0.6
		concFactor := 1 + noise.Rand()*volatility*0.5

		concentration := baseConcentration * concFactor
		if concentration > 100 {
			concentration = 100
		}

		points = append(points, TrendPoint{
			Period:        i + 1,
			Label:         fmt.Sprintf("%s %d", periodLabel, i+1),
			MeanLoss:      portfolio.Mean * meanFactor * (1 + float64(i)*0.02),
			VaR95:         portfolio.VaR95 * varFactor * (1 + float64(i)*0.025),
			Concentration: concentration,
		})
	}

	return points, nil
}
