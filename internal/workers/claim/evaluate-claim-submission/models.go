// internal/workers/claim/evaluate-claim-submission/models.go
package evaluateclaimsubmission

import "jkn-claim-workers/internal/workers/claim/claimvars"

type Input struct {
	claimvars.Submission
}

type Output struct {
	Accepted            bool                  `json:"accepted"`
	ClaimStatus         string                `json:"claimStatus"`
	IsValid             bool                  `json:"isValid"`
	ValidationErrors    claimvars.FieldErrors `json:"validationErrors"`
	RiskAssessed        bool                  `json:"riskAssessed"`
	DetectionLevel      *int                  `json:"detectionLevel"`
	Severity            string                `json:"severity"`
	Color               string                `json:"color"`
	ResolvedServiceDate string                `json:"resolvedServiceDate,omitempty"`
	EvaluatedAt         string                `json:"evaluatedAt"`
}
