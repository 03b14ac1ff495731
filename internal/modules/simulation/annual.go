package simulation

import (
	"fmt"
	"math/rand/v2"

	"github.com/aristath/riskquant/internal/modules/register"
)

// SimulateAnnualLoss runs nSims Monte Carlo trials for a single risk and
// returns one annual loss per trial.
//
// Process per trial:
//  1. draw an event count from the risk's frequency distribution
//  2. draw that many severities from the severity distribution and sum them
//  3. scale the sum by residual_factor * (1 - control_effectiveness)
//
// Trials with zero events produce exactly 0. The same seed yields
// bit-identical output.
func SimulateAnnualLoss(risk register.Risk, nSims int, seed uint64) ([]float64, error) {
	return simulateAnnualLoss(risk, nSims, rand.NewPCG(seed, 0))
}

// simulateAnnualLoss is the source-threaded core shared with the portfolio
// aggregator, which supplies per-risk derived sub-seed sources.
func simulateAnnualLoss(risk register.Risk, nSims int, src rand.Source) ([]float64, error) {
	if nSims <= 0 {
		return nil, fmt.Errorf("n_sims must be > 0, got %d", nSims)
	}
	if err := risk.Validate(); err != nil {
		return nil, err
	}

	eventCounts, err := SampleFrequency(risk.Frequency, nSims, src)
	if err != nil {
		return nil, err
	}

	scale := risk.ResidualFactor * (1 - risk.ControlEffectiveness)
	losses := make([]float64, nSims)

	for i, k := range eventCounts {
		if k <= 0 {
			continue
		}

		severities, err := SampleSeverity(risk.Severity, k, src)
		if err != nil {
			return nil, err
		}

		total := 0.0
		for _, s := range severities {
			total += s
		}
		losses[i] = total * scale
	}

	return losses, nil
}
