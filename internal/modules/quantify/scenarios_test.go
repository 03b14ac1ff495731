package quantify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestCompareScenarios_BaseFirst(t *testing.T) {
	reg := quantifyRegister(t)
	svc := newTestService()

	results, err := svc.CompareScenarios(reg, []Scenario{
		{Name: "Doubled frequency", Overrides: map[string]Override{
			"CYB-001": {FreqParam1: ptr(4.0)},
		}},
		{Name: "Better controls", Overrides: map[string]Override{
			"CYB-001": {ControlEffectiveness: ptr(0.9)},
		}},
	}, 2_000, 42)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "Base", results[0].Scenario)
	assert.Equal(t, "Doubled frequency", results[1].Scenario)
	assert.Equal(t, "Better controls", results[2].Scenario)

	// More events raise the expected loss; stronger controls lower it.
	assert.Greater(t, results[1].Mean, results[0].Mean)
	assert.Less(t, results[2].Mean, results[0].Mean)
}

func TestCompareScenarios_NoScenarios(t *testing.T) {
	reg := quantifyRegister(t)

	results, err := newTestService().CompareScenarios(reg, nil, 1_000, 42)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Base", results[0].Scenario)
}

func TestCompareScenarios_UnknownRiskOverride(t *testing.T) {
	reg := quantifyRegister(t)

	_, err := newTestService().CompareScenarios(reg, []Scenario{
		{Name: "Bad", Overrides: map[string]Override{
			"MISSING": {FreqParam1: ptr(1.0)},
		}},
	}, 1_000, 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MISSING")
}

func TestCompareScenarios_InvalidOverrideRejected(t *testing.T) {
	reg := quantifyRegister(t)

	_, err := newTestService().CompareScenarios(reg, []Scenario{
		{Name: "Broken", Overrides: map[string]Override{
			"CYB-001": {SevParam2: ptr(-1.0)},
		}},
	}, 1_000, 42)
	assert.Error(t, err)
}

func TestApplyOverrides_DoesNotMutateBase(t *testing.T) {
	reg := quantifyRegister(t)
	originalLambda := reg.Risks[0].Frequency.Param1

	modified, err := applyOverrides(reg, map[string]Override{
		"CYB-001": {FreqParam1: ptr(99.0), ResidualFactor: ptr(0.5)},
	})
	require.NoError(t, err)

	assert.Equal(t, originalLambda, reg.Risks[0].Frequency.Param1)
	assert.Equal(t, 99.0, modified.Risks[0].Frequency.Param1)
	assert.Equal(t, 0.5, modified.Risks[0].ResidualFactor)

	// Untouched risks carry over unchanged.
	assert.Equal(t, reg.Risks[1], modified.Risks[1])
}

func TestCompareScenarios_SameSeedNeutralScenario(t *testing.T) {
	reg := quantifyRegister(t)

	// An empty override set reproduces the base metrics exactly because the
	// seed is shared across scenarios.
	results, err := newTestService().CompareScenarios(reg, []Scenario{
		{Name: "No-op", Overrides: nil},
	}, 2_000, 42)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, results[0].Mean, results[1].Mean)
	assert.Equal(t, results[0].VaR95, results[1].VaR95)
	assert.Equal(t, results[0].TVaR99, results[1].TVaR99)
}
