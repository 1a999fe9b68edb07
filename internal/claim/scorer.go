// internal/claim/scorer.go
package claim

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Detection tiers produced by the scorer.
const (
	TierNone     = 0
	TierElevated = 50
	TierMedium   = 75
	TierHigh     = 100
)

// Severity is the display class of a detection tier.
type Severity string

const (
	SeveritySafe    Severity = "safe"
	SeverityCaution Severity = "caution"
	SeverityAlert   Severity = "alert"
)

// SeverityFor classifies a tier. Only 0/50/75/100 are produced today, but the
// caution band covers finer-grained tiers up to 30.
func SeverityFor(tier int) Severity {
	switch {
	case tier == 0:
		return SeveritySafe
	case tier <= 30:
		return SeverityCaution
	default:
		return SeverityAlert
	}
}

// Color returns the indicator colour used by the claim form.
func (s Severity) Color() string {
	switch s {
	case SeveritySafe:
		return "#22c55e"
	case SeverityCaution:
		return "#f59e0b"
	default:
		return "#ef4444"
	}
}

// RiskConfig holds the anomaly thresholds.
type RiskConfig struct {
	Baseline         int64
	HighMultiplier   float64
	MediumMultiplier float64
}

// DefaultRiskConfig returns the historical JKN baseline of 5 million with
// 2.5x and 1.5x bands.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		Baseline:         5_000_000,
		HighMultiplier:   2.5,
		MediumMultiplier: 1.5,
	}
}

func (c RiskConfig) Validate() error {
	if c.Baseline <= 0 {
		return fmt.Errorf("risk baseline must be positive, got %d", c.Baseline)
	}
	if c.MediumMultiplier < 1 {
		return fmt.Errorf("medium multiplier must be at least 1, got %v", c.MediumMultiplier)
	}
	if c.HighMultiplier < c.MediumMultiplier {
		return fmt.Errorf("high multiplier %v is below medium multiplier %v", c.HighMultiplier, c.MediumMultiplier)
	}
	return nil
}

// RiskAssessment is the scorer's verdict for one amount.
type RiskAssessment struct {
	Amount   int64    `json:"amount"`
	Ratio    float64  `json:"ratio"`
	Tier     int      `json:"detectionLevel"`
	Severity Severity `json:"severity"`
	Color    string   `json:"color"`
}

// Scorer maps a claim amount to a detection tier.
type Scorer struct {
	cfg RiskConfig
}

func NewScorer(cfg RiskConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Config returns the thresholds in use.
func (s *Scorer) Config() RiskConfig {
	return s.cfg
}

// Score computes the tier for amount. Bands are checked top-down with
// inclusive lower bounds.
func (s *Scorer) Score(amount int64) RiskAssessment {
	ratio := float64(amount) / float64(s.cfg.Baseline)

	tier := TierNone
	switch {
	case ratio >= s.cfg.HighMultiplier:
		tier = TierHigh
	case ratio >= s.cfg.MediumMultiplier:
		tier = TierMedium
	case ratio >= 1:
		tier = TierElevated
	}

	sev := SeverityFor(tier)
	return RiskAssessment{
		Amount:   amount,
		Ratio:    ratio,
		Tier:     tier,
		Severity: sev,
		Color:    sev.Color(),
	}
}

// ScoreText parses a digits-only amount and scores it. ok is false when the
// text is not a valid amount; no assessment exists in that case.
func (s *Scorer) ScoreText(raw string) (RiskAssessment, bool) {
	amount, ok := ParseAmount(raw)
	if !ok {
		return RiskAssessment{}, false
	}
	return s.Score(amount), true
}

// ParseAmount accepts digits only. Values beyond int64 saturate.
func ParseAmount(raw string) (int64, bool) {
	if !amountRegex.MatchString(raw) {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return math.MaxInt64, true
		}
		return 0, false
	}
	return n, true
}
