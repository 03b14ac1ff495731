// Package metrics computes actuarial risk measures from simulated loss
// arrays: percentile statistics, Value at Risk, Tail Value at Risk,
// contribution analysis, and marginal tail contribution (dVaR).
package metrics

import (
	"fmt"
	"sort"

	"github.com/aristath/riskquant/pkg/formulas"
)

// VaR calculates Value at Risk at the given confidence level: the loss not
// exceeded with probability confidence, via linear-interpolation percentile.
func VaR(losses []float64, confidence float64) (float64, error) {
	if confidence <= 0 || confidence >= 1 {
		return 0, fmt.Errorf("confidence must be in (0, 1), got %v", confidence)
	}
	if len(losses) == 0 {
		return 0, fmt.Errorf("losses must not be empty")
	}
	return formulas.Percentile(losses, confidence*100), nil
}

// TVaR calculates Tail Value at Risk (Expected Shortfall): the mean loss
// among trials at or beyond the VaR threshold. For a degenerate tail with no
// qualifying values, TVaR falls back to VaR, so TVaR >= VaR always holds.
func TVaR(losses []float64, confidence float64) (float64, error) {
	threshold, err := VaR(losses, confidence)
	if err != nil {
		return 0, err
	}

	sum := 0.0
	count := 0
	for _, v := range losses {
		if v >= threshold {
			sum += v
			count++
		}
	}
	if count == 0 {
		return threshold, nil
	}
	return sum / float64(count), nil
}

// Summary holds the full set of summary statistics for one loss distribution.
type Summary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
	VaR95  float64 `json:"var_95"`
	VaR99  float64 `json:"var_99"`
	TVaR95 float64 `json:"tvar_95"`
	TVaR99 float64 `json:"tvar_99"`
}

// Summarize computes the summary statistics for a loss array with a single
// sort. Recomputing from the same array is idempotent.
func Summarize(losses []float64) (Summary, error) {
	if len(losses) == 0 {
		return Summary{}, fmt.Errorf("losses must not be empty")
	}

	sorted := make([]float64, len(losses))
	copy(sorted, losses)
	sort.Float64s(sorted)

	s := Summary{
		Mean:   formulas.Mean(losses),
		Std:    formulas.StdDev(losses),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		P50:    formulas.PercentileSorted(sorted, 50),
		P90:    formulas.PercentileSorted(sorted, 90),
		P95:    formulas.PercentileSorted(sorted, 95),
		P99:    formulas.PercentileSorted(sorted, 99),
		VaR95:  formulas.PercentileSorted(sorted, 95),
		VaR99:  formulas.PercentileSorted(sorted, 99),
		TVaR95: tailMeanSorted(sorted, formulas.PercentileSorted(sorted, 95)),
		TVaR99: tailMeanSorted(sorted, formulas.PercentileSorted(sorted, 99)),
	}
	s.Median = s.P50

	return s, nil
}

// Percentiles calculates the loss value at each probability p in (0, 1).
func Percentiles(losses []float64, probs []float64) (map[float64]float64, error) {
	if len(losses) == 0 {
		return nil, fmt.Errorf("losses must not be empty")
	}

	sorted := make([]float64, len(losses))
	copy(sorted, losses)
	sort.Float64s(sorted)

	out := make(map[float64]float64, len(probs))
	for _, p := range probs {
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("probability must be in [0, 1], got %v", p)
		}
		out[p] = formulas.PercentileSorted(sorted, p*100)
	}
	return out, nil
}

// tailMeanSorted computes the mean of the values >= threshold from an
// ascending-sorted array, falling back to the threshold itself for an empty
// tail.
func tailMeanSorted(sorted []float64, threshold float64) float64 {
	// First index at or beyond the threshold.
	i := sort.SearchFloat64s(sorted, threshold)
	if i >= len(sorted) {
		return threshold
	}

	sum := 0.0
	for _, v := range sorted[i:] {
		sum += v
	}
	return sum / float64(len(sorted)-i)
}
