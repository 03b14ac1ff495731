// Package lec generates loss-exceedance curves: the mapping from a loss
// threshold to the probability that an annual loss meets or exceeds it.
package lec

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/aristath/riskquant/pkg/formulas"
)

// Point is one row of a loss-exceedance curve.
type Point struct {
	Prob float64 `json:"prob"`
	Loss float64 `json:"loss"`
}

// Points builds a curve of nPoints evenly spaced loss thresholds between the
// minimum and maximum observed loss, each annotated with its exceedance
// probability. Rows are sorted by probability descending.
//
// A zero-range array (all losses equal) collapses to a two-point curve at the
// constant value instead of dividing the range into thresholds.
func Points(losses []float64, nPoints int) ([]Point, error) {
	if len(losses) == 0 {
		return nil, fmt.Errorf("losses must not be empty")
	}
	if nPoints < 2 {
		nPoints = 100
	}

	sorted := make([]float64, len(losses))
	copy(sorted, losses)
	sort.Float64s(sorted)

	minLoss := sorted[0]
	maxLoss := sorted[len(sorted)-1]

	if minLoss == maxLoss {
		return []Point{
			{Prob: 1.0, Loss: minLoss},
			{Prob: 0.0, Loss: minLoss},
		}, nil
	}

	thresholds := make([]float64, nPoints)
	floats.Span(thresholds, minLoss, maxLoss)

	n := float64(len(sorted))
	points := make([]Point, nPoints)
	for i, threshold := range thresholds {
		// Count of trials >= threshold via the sorted array.
		idx := sort.SearchFloat64s(sorted, threshold)
		points[i] = Point{
			Prob: float64(len(sorted)-idx) / n,
			Loss: threshold,
		}
	}

	sortByProbDesc(points)
	return points, nil
}

// AtProbabilities returns the exact loss threshold for each requested
// exceedance probability, via the (1-p) percentile. Rows are sorted by
// probability descending.
func AtProbabilities(losses []float64, probs []float64) ([]Point, error) {
	if len(losses) == 0 {
		return nil, fmt.Errorf("losses must not be empty")
	}

	sorted := make([]float64, len(losses))
	copy(sorted, losses)
	sort.Float64s(sorted)

	points := make([]Point, 0, len(probs))
	for _, p := range probs {
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("probability must be in [0, 1], got %v", p)
		}
		points = append(points, Point{
			Prob: p,
			Loss: formulas.PercentileSorted(sorted, (1-p)*100),
		})
	}

	sortByProbDesc(points)
	return points, nil
}

// ExceedanceProb returns the fraction of trials with loss at or beyond the
// threshold.
func ExceedanceProb(losses []float64, threshold float64) float64 {
	if len(losses) == 0 {
		return 0
	}
	count := 0
	for _, v := range losses {
		if v >= threshold {
			count++
		}
	}
	return float64(count) / float64(len(losses))
}

// ReturnPeriod returns the expected number of years between losses at or
// beyond the threshold: the inverse of the exceedance probability, or +Inf
// when the threshold is never reached.
func ReturnPeriod(losses []float64, threshold float64) float64 {
	prob := ExceedanceProb(losses, threshold)
	if prob == 0 {
		return math.Inf(1)
	}
	return 1.0 / prob
}

func sortByProbDesc(points []Point) {
	sort.Slice(points, func(i, j int) bool {
		if points[i].Prob != points[j].Prob {
			return points[i].Prob > points[j].Prob
		}
		return points[i].Loss < points[j].Loss
	})
}
