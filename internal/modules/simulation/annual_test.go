package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/riskquant/internal/modules/register"
)

func testRisk(id string) register.Risk {
	return register.Risk{
		ID:       id,
		Category: "Cyber",
		Frequency: register.FrequencySpec{
			Model:  register.FreqPoisson,
			Param1: 2.0,
		},
		Severity: register.SeveritySpec{
			Model:  register.SevLognormal,
			Param1: 10.0,
			Param2: 1.0,
		},
		ControlEffectiveness: 0,
		ResidualFactor:       1.0,
	}
}

func TestSimulateAnnualLoss_Deterministic(t *testing.T) {
	risk := testRisk("R1")

	a, err := SimulateAnnualLoss(risk, 5_000, 42)
	require.NoError(t, err)
	b, err := SimulateAnnualLoss(risk, 5_000, 42)
	require.NoError(t, err)

	assert.Equal(t, a, b)

	c, err := SimulateAnnualLoss(risk, 5_000, 43)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSimulateAnnualLoss_NonNegative(t *testing.T) {
	losses, err := SimulateAnnualLoss(testRisk("R1"), 10_000, 1)
	require.NoError(t, err)
	require.Len(t, losses, 10_000)

	zeros := 0
	for _, v := range losses {
		assert.GreaterOrEqual(t, v, 0.0)
		if v == 0 {
			zeros++
		}
	}
	// Poisson(2) puts ~13.5% of trials at zero events.
	assert.Greater(t, zeros, 0)
}

func TestSimulateAnnualLoss_ZeroFrequencyAllZero(t *testing.T) {
	risk := testRisk("R1")
	risk.Frequency.Param1 = 0

	losses, err := SimulateAnnualLoss(risk, 1_000, 42)
	require.NoError(t, err)
	for _, v := range losses {
		assert.Equal(t, 0.0, v)
	}
}

func TestSimulateAnnualLoss_ControlScaling(t *testing.T) {
	base := testRisk("R1")

	halved := base
	halved.ControlEffectiveness = 0.5

	baseLosses, err := SimulateAnnualLoss(base, 20_000, 42)
	require.NoError(t, err)
	halvedLosses, err := SimulateAnnualLoss(halved, 20_000, 42)
	require.NoError(t, err)

	// Same seed means the same draws, so every trial scales by exactly 0.5.
	for i := range baseLosses {
		assert.InDelta(t, baseLosses[i]*0.5, halvedLosses[i], 1e-9)
	}
}

func TestSimulateAnnualLoss_ResidualFactorScaling(t *testing.T) {
	base := testRisk("R1")

	scaled := base
	scaled.ResidualFactor = 0.25

	baseLosses, err := SimulateAnnualLoss(base, 5_000, 7)
	require.NoError(t, err)
	scaledLosses, err := SimulateAnnualLoss(scaled, 5_000, 7)
	require.NoError(t, err)

	for i := range baseLosses {
		assert.InDelta(t, baseLosses[i]*0.25, scaledLosses[i], 1e-9)
	}
}

func TestSimulateAnnualLoss_FullControlsZeroLoss(t *testing.T) {
	risk := testRisk("R1")
	risk.ControlEffectiveness = 1.0

	losses, err := SimulateAnnualLoss(risk, 1_000, 42)
	require.NoError(t, err)
	for _, v := range losses {
		assert.Equal(t, 0.0, v)
	}
}

func TestSimulateAnnualLoss_Validation(t *testing.T) {
	t.Run("zero trials", func(t *testing.T) {
		_, err := SimulateAnnualLoss(testRisk("R1"), 0, 42)
		assert.Error(t, err)
	})

	t.Run("negative trials", func(t *testing.T) {
		_, err := SimulateAnnualLoss(testRisk("R1"), -5, 42)
		assert.Error(t, err)
	})

	t.Run("invalid risk", func(t *testing.T) {
		risk := testRisk("R1")
		risk.Severity.Param2 = 0
		_, err := SimulateAnnualLoss(risk, 100, 42)
		assert.Error(t, err)
	})
}
