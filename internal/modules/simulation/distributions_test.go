package simulation

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/riskquant/internal/modules/register"
)

func newSrc(seed uint64) rand.Source {
	return rand.NewPCG(seed, 0)
}

func TestSampleFrequency_Poisson(t *testing.T) {
	spec := register.FrequencySpec{Model: register.FreqPoisson, Param1: 3.0}

	counts, err := SampleFrequency(spec, 20_000, newSrc(1))
	require.NoError(t, err)
	require.Len(t, counts, 20_000)

	sum := 0
	for _, c := range counts {
		assert.GreaterOrEqual(t, c, 0)
		sum += c
	}
	mean := float64(sum) / float64(len(counts))
	assert.InDelta(t, 3.0, mean, 0.1)
}

func TestSampleFrequency_PoissonZeroLambda(t *testing.T) {
	spec := register.FrequencySpec{Model: register.FreqPoisson, Param1: 0}

	counts, err := SampleFrequency(spec, 100, newSrc(1))
	require.NoError(t, err)
	for _, c := range counts {
		assert.Equal(t, 0, c)
	}
}

func TestSampleFrequency_NegBinMoments(t *testing.T) {
	// NegBin(r, p) has mean r(1-p)/p and variance r(1-p)/p^2.
	r, p := 5.0, 0.6
	spec := register.FrequencySpec{Model: register.FreqNegBin, Param1: r, Param2: p}

	counts, err := SampleFrequency(spec, 50_000, newSrc(7))
	require.NoError(t, err)

	sum := 0.0
	for _, c := range counts {
		sum += float64(c)
	}
	mean := sum / float64(len(counts))

	varSum := 0.0
	for _, c := range counts {
		d := float64(c) - mean
		varSum += d * d
	}
	variance := varSum / float64(len(counts))

	wantMean := r * (1 - p) / p
	wantVar := r * (1 - p) / (p * p)
	assert.InDelta(t, wantMean, mean, wantMean*0.05)
	assert.InDelta(t, wantVar, variance, wantVar*0.1)
}

func TestSampleFrequency_NegBinDegenerateP(t *testing.T) {
	spec := register.FrequencySpec{Model: register.FreqNegBin, Param1: 5, Param2: 1}

	counts, err := SampleFrequency(spec, 500, newSrc(1))
	require.NoError(t, err)
	for _, c := range counts {
		assert.Equal(t, 0, c)
	}
}

func TestSampleFrequency_Validation(t *testing.T) {
	_, err := SampleFrequency(register.FrequencySpec{Model: register.FreqPoisson, Param1: -1}, 10, newSrc(1))
	assert.Error(t, err)

	_, err = SampleFrequency(register.FrequencySpec{Model: "Binomial", Param1: 1}, 10, newSrc(1))
	assert.ErrorIs(t, err, register.ErrUnknownModel)
}

func TestSampleFrequency_ZeroN(t *testing.T) {
	counts, err := SampleFrequency(register.FrequencySpec{Model: register.FreqPoisson, Param1: 2}, 0, newSrc(1))
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestSampleSeverity_LognormalPositive(t *testing.T) {
	spec := register.SeveritySpec{Model: register.SevLognormal, Param1: 10, Param2: 1}

	losses, err := SampleSeverity(spec, 10_000, newSrc(3))
	require.NoError(t, err)

	sum := 0.0
	for _, v := range losses {
		assert.Greater(t, v, 0.0)
		sum += v
	}
	// Lognormal mean is exp(mu + sigma^2/2).
	wantMean := math.Exp(10 + 0.5)
	assert.InDelta(t, wantMean, sum/float64(len(losses)), wantMean*0.1)
}

func TestSampleSeverity_NormalClampedAtZero(t *testing.T) {
	// Heavily negative mean: most draws land below zero and must clamp.
	spec := register.SeveritySpec{Model: register.SevNormal, Param1: -100, Param2: 10}

	losses, err := SampleSeverity(spec, 1_000, newSrc(3))
	require.NoError(t, err)
	for _, v := range losses {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestSampleSeverity_PERTWithinBounds(t *testing.T) {
	min, mode, max := 1_000.0, 5_000.0, 20_000.0
	spec := register.SeveritySpec{Model: register.SevPERT, Param1: min, Param2: mode, Param3: max}

	losses, err := SampleSeverity(spec, 10_000, newSrc(5))
	require.NoError(t, err)

	sum := 0.0
	for _, v := range losses {
		assert.GreaterOrEqual(t, v, min)
		assert.LessOrEqual(t, v, max)
		sum += v
	}
	// PERT mean is (min + 4*mode + max)/6.
	wantMean := (min + 4*mode + max) / 6
	assert.InDelta(t, wantMean, sum/float64(len(losses)), wantMean*0.05)
}

func TestSampleSeverity_PERTSymmetric(t *testing.T) {
	// Symmetric min/max around the mode exercises the degenerate moment case.
	spec := register.SeveritySpec{Model: register.SevPERT, Param1: 0, Param2: 50, Param3: 100}

	losses, err := SampleSeverity(spec, 20_000, newSrc(5))
	require.NoError(t, err)

	sum := 0.0
	for _, v := range losses {
		sum += v
	}
	assert.InDelta(t, 50.0, sum/float64(len(losses)), 1.0)
}

func TestSampleSeverity_PERTDegeneratePoint(t *testing.T) {
	spec := register.SeveritySpec{Model: register.SevPERT, Param1: 42, Param2: 42, Param3: 42}

	losses, err := SampleSeverity(spec, 100, newSrc(5))
	require.NoError(t, err)
	for _, v := range losses {
		assert.Equal(t, 42.0, v)
	}
}

func TestSampleSeverity_ZeroN(t *testing.T) {
	spec := register.SeveritySpec{Model: register.SevLognormal, Param1: 10, Param2: 1}
	losses, err := SampleSeverity(spec, 0, newSrc(1))
	require.NoError(t, err)
	assert.Empty(t, losses)
}
