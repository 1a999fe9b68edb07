// internal/claim/evaluator.go
package claim

// Claim status values reported by the evaluate and record steps.
const (
	StatusEligible  = "eligible"
	StatusRejected  = "rejected"
	StatusSubmitted = "submitted"
)

// Evaluation is the outcome of one submission attempt. Risk is nil when the
// amount could not be parsed.
type Evaluation struct {
	Errors   ValidationResult
	Risk     *RiskAssessment
	Accepted bool
}

// Tier returns the detection tier and whether one was computed.
func (e Evaluation) Tier() (int, bool) {
	if e.Risk == nil {
		return 0, false
	}
	return e.Risk.Tier, true
}

// Status is StatusEligible for an accepted claim, StatusRejected otherwise.
func (e Evaluation) Status() string {
	if e.Accepted {
		return StatusEligible
	}
	return StatusRejected
}

// Outcome is a short label for metrics and logs.
func (e Evaluation) Outcome() string {
	switch {
	case e.Accepted:
		return "accepted"
	case !e.Errors.Valid():
		return "invalid"
	case e.Risk == nil:
		return "unscored"
	default:
		return "anomaly"
	}
}

// Evaluator combines field validation and anomaly scoring for one submission.
type Evaluator struct {
	validator *Validator
	scorer    *Scorer
}

func NewEvaluator(v *Validator, s *Scorer) *Evaluator {
	return &Evaluator{validator: v, scorer: s}
}

// Validator exposes the field validator, e.g. for service date resolution.
func (e *Evaluator) Validator() *Validator {
	return e.validator
}

// Scorer exposes the anomaly scorer.
func (e *Evaluator) Scorer() *Scorer {
	return e.scorer
}

// Evaluate validates s and scores its amount. A claim is accepted only with
// zero field errors and tier 0. Rejection is a normal result, not an error.
func (e *Evaluator) Evaluate(s Submission) Evaluation {
	errs := e.validator.Validate(s)

	var risk *RiskAssessment
	if ra, ok := e.scorer.ScoreText(s.Amount); ok {
		risk = &ra
	}

	return Evaluation{
		Errors:   errs,
		Risk:     risk,
		Accepted: errs.Valid() && risk != nil && risk.Tier == TierNone,
	}
}
