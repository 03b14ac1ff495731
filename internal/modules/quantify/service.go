// Package quantify orchestrates the simulation, metrics, and curve packages
// into register-level quantification: one summary record per risk plus a
// portfolio total, and the analysis views built on top of them.
package quantify

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/riskquant/internal/modules/metrics"
	"github.com/aristath/riskquant/internal/modules/register"
	"github.com/aristath/riskquant/internal/modules/simulation"
)

// PortfolioTotalID is the synthetic identifier for the aggregate record.
const PortfolioTotalID = "PORTFOLIO_TOTAL"

// Record is one quantified row: a risk (or the portfolio total) with its
// simulated loss statistics.
type Record struct {
	RiskID   string `json:"risk_id"`
	Category string `json:"category"`

	metrics.Summary
}

// IsPortfolioTotal reports whether the record is the aggregate row.
func (r Record) IsPortfolioTotal() bool {
	return r.RiskID == PortfolioTotalID
}

// Service runs register quantification.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new quantification service.
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("component", "quantifier").Logger(),
	}
}

// Quantify simulates the whole register and returns one record per risk, in
// register order, followed by the portfolio total record.
func (s *Service) Quantify(reg *register.Register, nSims int, seed uint64) ([]Record, error) {
	result, err := simulation.SimulatePortfolio(reg, nSims, seed)
	if err != nil {
		return nil, err
	}
	return s.buildRecords(reg, result)
}

// QuantifyResult quantifies an existing simulation result without re-running
// the simulation. Useful when the caller also needs the raw loss arrays.
func (s *Service) QuantifyResult(reg *register.Register, result *simulation.PortfolioResult) ([]Record, error) {
	return s.buildRecords(reg, result)
}

func (s *Service) buildRecords(reg *register.Register, result *simulation.PortfolioResult) ([]Record, error) {
	runID := uuid.New().String()

	// A loss array keyed by an identifier the register does not contain is a
	// data-integrity problem, reported but not fatal.
	for id := range result.ByRisk {
		if _, ok := reg.Find(id); !ok {
			s.log.Warn().
				Str("run_id", runID).
				Str("risk_id", id).
				Msg("Simulation output references a risk absent from the register, skipping")
		}
	}

	records := make([]Record, 0, reg.Len()+1)
	for _, risk := range reg.Risks {
		losses, ok := result.ByRisk[risk.ID]
		if !ok {
			return nil, fmt.Errorf("missing simulation output for risk %s", risk.ID)
		}

		summary, err := metrics.Summarize(losses)
		if err != nil {
			return nil, fmt.Errorf("summarize risk %s: %w", risk.ID, err)
		}
		records = append(records, Record{
			RiskID:   risk.ID,
			Category: risk.Category,
			Summary:  summary,
		})
	}

	portfolioSummary, err := metrics.Summarize(result.Portfolio)
	if err != nil {
		return nil, fmt.Errorf("summarize portfolio: %w", err)
	}
	records = append(records, Record{
		RiskID:   PortfolioTotalID,
		Category: "Portfolio",
		Summary:  portfolioSummary,
	})

	s.log.Info().
		Str("run_id", runID).
		Int("risks", reg.Len()).
		Int("n_sims", len(result.Portfolio)).
		Float64("portfolio_mean", portfolioSummary.Mean).
		Float64("portfolio_var_95", portfolioSummary.VaR95).
		Msg("Quantified risk register")

	return records, nil
}

// portfolioRecord returns the aggregate record from a quantified set.
func portfolioRecord(records []Record) (Record, error) {
	for _, r := range records {
		if r.IsPortfolioTotal() {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("no portfolio total record present")
}

// individualRecords returns the per-risk records, excluding the aggregate.
func individualRecords(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.IsPortfolioTotal() {
			out = append(out, r)
		}
	}
	return out
}

// sortByMeanDesc orders records by mean loss descending, breaking ties by
// identifier for stable output.
func sortByMeanDesc(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Mean != records[j].Mean {
			return records[i].Mean > records[j].Mean
		}
		return records[i].RiskID < records[j].RiskID
	})
}
