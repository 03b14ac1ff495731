// Package simulation implements the Monte Carlo engine: frequency and
// severity sampling, per-risk annual-loss simulation, and portfolio
// aggregation with reproducible per-risk sub-seeding.
package simulation

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aristath/riskquant/internal/modules/register"
)

// pertShape is the standard PERT shape parameter (lambda) used in the
// PERT-to-Beta moment mapping.
const pertShape = 4.0

// SampleFrequency draws n event counts from the given frequency specification
// using the supplied random source. The spec is validated before any draw.
func SampleFrequency(spec register.FrequencySpec, n int, src rand.Source) ([]int, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if n == 0 {
		return []int{}, nil
	}

	counts := make([]int, n)

	switch spec.Model {
	case register.FreqPoisson:
		if spec.Param1 == 0 {
			return counts, nil
		}
		pois := distuv.Poisson{Lambda: spec.Param1, Src: src}
		for i := range counts {
			counts[i] = int(pois.Rand())
		}

	case register.FreqNegBin:
		r, p := spec.Param1, spec.Param2
		if p == 1 {
			// NegBin(r, 1) is degenerate at zero failures.
			return counts, nil
		}
		// Gamma-Poisson mixture: lambda ~ Gamma(shape=r, rate=p/(1-p)),
		// count ~ Poisson(lambda) gives NegBin(r, p) exactly.
		gamma := distuv.Gamma{Alpha: r, Beta: p / (1 - p), Src: src}
		for i := range counts {
			lambda := gamma.Rand()
			if lambda <= 0 {
				continue
			}
			counts[i] = int(distuv.Poisson{Lambda: lambda, Src: src}.Rand())
		}
	}

	return counts, nil
}

// SampleSeverity draws n per-event loss amounts from the given severity
// specification using the supplied random source. A request for zero events
// returns an empty slice without touching the distribution.
func SampleSeverity(spec register.SeveritySpec, n int, src rand.Source) ([]float64, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if n == 0 {
		return []float64{}, nil
	}

	losses := make([]float64, n)

	switch spec.Model {
	case register.SevLognormal:
		dist := distuv.LogNormal{Mu: spec.Param1, Sigma: spec.Param2, Src: src}
		for i := range losses {
			losses[i] = dist.Rand()
		}

	case register.SevNormal:
		// Truncation, not resampling: negative draws are clamped to zero.
		dist := distuv.Normal{Mu: spec.Param1, Sigma: spec.Param2, Src: src}
		for i := range losses {
			v := dist.Rand()
			if v < 0 {
				v = 0
			}
			losses[i] = v
		}

	case register.SevPERT:
		samplePERT(spec.Param1, spec.Param2, spec.Param3, losses, src)
	}

	return losses, nil
}

// samplePERT fills out with draws from the PERT(min, mode, max) distribution
// via the standard 4-shape-parameter Beta moment mapping. The degenerate case
// min == max returns the constant.
func samplePERT(min, mode, max float64, out []float64, src rand.Source) {
	if min == max {
		for i := range out {
			out[i] = min
		}
		return
	}

	mu := (min + pertShape*mode + max) / (pertShape + 2)

	var alpha, beta float64
	if mu == mode {
		// Symmetric case: the general moment formula degenerates to 0/0.
		alpha = 1 + pertShape/2
		beta = alpha
	} else {
		alpha = ((mu - min) * (2*mode - min - max)) / ((mode - mu) * (max - min))
		beta = alpha * (max - mu) / (mu - min)
	}

	// Guard against numerically degenerate shapes near the boundaries.
	if alpha < 0.1 {
		alpha = 0.1
	}
	if beta < 0.1 {
		beta = 0.1
	}

	dist := distuv.Beta{Alpha: alpha, Beta: beta, Src: src}
	for i := range out {
		out[i] = min + dist.Rand()*(max-min)
	}
}
