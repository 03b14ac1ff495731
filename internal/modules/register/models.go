// Package register defines the risk register domain model: frequency and
// severity model specifications, individual risks, and the ordered register
// consumed by the simulation engine.
//
// The register is constructed and validated up front; the simulation core
// treats it as immutable for the duration of a run.
package register

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Structural errors callers can branch on with errors.Is.
var (
	ErrEmptyRegister   = errors.New("risk register is empty")
	ErrUnknownModel    = errors.New("unknown distribution model")
	ErrDuplicateRiskID = errors.New("duplicate risk id")
)

// FrequencyModel identifies the distribution governing annual event counts.
type FrequencyModel string

const (
	FreqPoisson FrequencyModel = "Poisson"
	FreqNegBin  FrequencyModel = "NegBin"
)

// SeverityModel identifies the distribution governing per-event loss amounts.
type SeverityModel string

const (
	SevLognormal SeverityModel = "Lognormal"
	SevNormal    SeverityModel = "Normal"
	SevPERT      SeverityModel = "PERT"
)

// ParseFrequencyModel resolves a model name case-insensitively.
func ParseFrequencyModel(name string) (FrequencyModel, error) {
	switch strings.ToLower(name) {
	case "poisson":
		return FreqPoisson, nil
	case "negbin":
		return FreqNegBin, nil
	default:
		return "", fmt.Errorf("%w: frequency model %q", ErrUnknownModel, name)
	}
}

// ParseSeverityModel resolves a model name case-insensitively.
func ParseSeverityModel(name string) (SeverityModel, error) {
	switch strings.ToLower(name) {
	case "lognormal":
		return SevLognormal, nil
	case "normal":
		return SevNormal, nil
	case "pert":
		return SevPERT, nil
	default:
		return "", fmt.Errorf("%w: severity model %q", ErrUnknownModel, name)
	}
}

// UnmarshalJSON accepts model names case-insensitively and stores the
// canonical form, rejecting unknown names at decode time.
func (m *FrequencyModel) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseFrequencyModel(name)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// UnmarshalJSON accepts model names case-insensitively and stores the
// canonical form, rejecting unknown names at decode time.
func (m *SeverityModel) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseSeverityModel(name)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// FrequencySpec holds a frequency model and its parameters.
//
// Poisson: Param1 = lambda (mean event rate), Param2 unused.
// NegBin:  Param1 = r (dispersion), Param2 = p (success probability).
type FrequencySpec struct {
	Model  FrequencyModel `json:"model"`
	Param1 float64        `json:"param1"`
	Param2 float64        `json:"param2,omitempty"`
}

// Validate checks the parameters against the model's constraints.
func (f FrequencySpec) Validate() error {
	switch f.Model {
	case FreqPoisson:
		if f.Param1 < 0 {
			return fmt.Errorf("poisson lambda must be >= 0, got %v", f.Param1)
		}
	case FreqNegBin:
		if f.Param1 <= 0 {
			return fmt.Errorf("negbin r must be > 0, got %v", f.Param1)
		}
		if f.Param2 <= 0 || f.Param2 > 1 {
			return fmt.Errorf("negbin p must be in (0, 1], got %v", f.Param2)
		}
	default:
		return fmt.Errorf("%w: frequency model %q", ErrUnknownModel, f.Model)
	}
	return nil
}

// SeveritySpec holds a severity model and its parameters.
//
// Lognormal: Param1 = mu, Param2 = sigma (log-scale), Param3 unused.
// Normal:    Param1 = mu, Param2 = sigma, Param3 unused.
// PERT:      Param1 = min, Param2 = mode, Param3 = max.
type SeveritySpec struct {
	Model  SeverityModel `json:"model"`
	Param1 float64       `json:"param1"`
	Param2 float64       `json:"param2"`
	Param3 float64       `json:"param3,omitempty"`
}

// Validate checks the parameters against the model's constraints.
func (s SeveritySpec) Validate() error {
	switch s.Model {
	case SevLognormal:
		if s.Param2 <= 0 {
			return fmt.Errorf("lognormal sigma must be > 0, got %v", s.Param2)
		}
	case SevNormal:
		if s.Param2 <= 0 {
			return fmt.Errorf("normal sigma must be > 0, got %v", s.Param2)
		}
	case SevPERT:
		if !(s.Param1 <= s.Param2 && s.Param2 <= s.Param3) {
			return fmt.Errorf("pert requires min <= mode <= max, got %v, %v, %v",
				s.Param1, s.Param2, s.Param3)
		}
	default:
		return fmt.Errorf("%w: severity model %q", ErrUnknownModel, s.Model)
	}
	return nil
}

// Risk is one row of the risk register.
type Risk struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`

	Frequency FrequencySpec `json:"frequency"`
	Severity  SeveritySpec  `json:"severity"`

	// ControlEffectiveness is an additional fractional loss reduction in
	// [0, 1]. ResidualFactor is a multiplicative severity scaling in [0, 1]
	// applied after controls.
	ControlEffectiveness float64 `json:"control_effectiveness"`
	ResidualFactor       float64 `json:"residual_factor"`
}

// Validate checks the risk's distribution parameters and control fractions.
// Violations are configuration errors and are reported before any sampling.
func (r Risk) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("risk id must not be empty")
	}
	if err := r.Frequency.Validate(); err != nil {
		return fmt.Errorf("risk %s: %w", r.ID, err)
	}
	if err := r.Severity.Validate(); err != nil {
		return fmt.Errorf("risk %s: %w", r.ID, err)
	}
	if r.ResidualFactor < 0 || r.ResidualFactor > 1 {
		return fmt.Errorf("risk %s: residual factor must be in [0, 1], got %v", r.ID, r.ResidualFactor)
	}
	if r.ControlEffectiveness < 0 || r.ControlEffectiveness > 1 {
		return fmt.Errorf("risk %s: control effectiveness must be in [0, 1], got %v", r.ID, r.ControlEffectiveness)
	}
	return nil
}

// Register is an ordered collection of risks with unique identifiers.
type Register struct {
	Risks []Risk `json:"risks"`
}

// New builds a validated register from an ordered slice of risks.
func New(risks []Risk) (*Register, error) {
	if len(risks) == 0 {
		return nil, ErrEmptyRegister
	}

	seen := make(map[string]bool, len(risks))
	for _, r := range risks {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRiskID, r.ID)
		}
		seen[r.ID] = true
	}

	return &Register{Risks: risks}, nil
}

// Len returns the number of risks in the register.
func (reg *Register) Len() int {
	return len(reg.Risks)
}

// Find returns the risk with the given identifier.
func (reg *Register) Find(id string) (Risk, bool) {
	for _, r := range reg.Risks {
		if r.ID == id {
			return r, true
		}
	}
	return Risk{}, false
}
