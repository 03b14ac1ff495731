package simulation

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/aristath/riskquant/internal/modules/register"
)

// subSeedBound caps derived sub-seeds to the 31-bit range so the
// (base seed, risk index) -> sub-seed mapping stays stable across platforms
// and reimplementations.
const subSeedBound = 1 << 31

// PortfolioResult holds the outcome of one portfolio simulation run: the
// element-wise portfolio total and each risk's individual loss array, keyed
// by risk identifier. All arrays share the same trial count.
type PortfolioResult struct {
	Portfolio []float64
	ByRisk    map[string][]float64
}

// DeriveSubSeeds deterministically expands one base seed into an independent
// sub-seed per risk. Each risk gets its own random stream so that the run is
// reproducible from the base seed without coupling the risks' draws.
func DeriveSubSeeds(baseSeed uint64, n int) []uint64 {
	rng := rand.New(rand.NewPCG(baseSeed, 0))
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = rng.Uint64N(subSeedBound)
	}
	return seeds
}

// SimulatePortfolio simulates every risk in the register independently and
// sums the per-trial losses into a portfolio total.
//
// Risk simulations run concurrently; each worker owns its derived sub-seed
// exclusively. Per-risk arrays are collected first and summed in register
// order, so the result is bit-identical regardless of completion order.
func SimulatePortfolio(reg *register.Register, nSims int, seed uint64) (*PortfolioResult, error) {
	if reg == nil || reg.Len() == 0 {
		return nil, register.ErrEmptyRegister
	}
	if nSims <= 0 {
		return nil, fmt.Errorf("n_sims must be > 0, got %d", nSims)
	}

	// Sub-seed table is computed once, before any simulation starts, and is
	// read-only afterwards.
	subSeeds := DeriveSubSeeds(seed, reg.Len())

	type riskResult struct {
		idx    int
		losses []float64
		err    error
	}
	results := make(chan riskResult, reg.Len())

	for i, risk := range reg.Risks {
		go func(idx int, r register.Risk, subSeed uint64) {
			losses, err := simulateAnnualLoss(r, nSims, rand.NewPCG(subSeed, 0))
			results <- riskResult{idx: idx, losses: losses, err: err}
		}(i, risk, subSeeds[i])
	}

	perRisk := make([][]float64, reg.Len())

	var firstErr error
	for range reg.Risks {
		res := <-results
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		perRisk[res.idx] = res.losses
	}
	if firstErr != nil {
		return nil, firstErr
	}

	// Summing in register order keeps the float accumulation order fixed, so
	// repeated runs with the same seed produce bit-identical portfolios.
	byRisk := make(map[string][]float64, reg.Len())
	portfolio := make([]float64, nSims)
	for i, losses := range perRisk {
		byRisk[reg.Risks[i].ID] = losses
		floats.Add(portfolio, losses)
	}

	return &PortfolioResult{Portfolio: portfolio, ByRisk: byRisk}, nil
}
