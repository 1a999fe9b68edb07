// internal/workers/claim/create-claim-record/models.go
package createclaimrecord

import "jkn-claim-workers/internal/workers/claim/claimvars"

type Input struct {
	claimvars.Submission
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

type Output struct {
	ClaimID        string `json:"claimId"`
	ClaimStatus    string `json:"claimStatus"`
	DetectionLevel int    `json:"detectionLevel"`
	ServiceDate    string `json:"serviceDate"`
	CreatedAt      string `json:"createdAt"`
	Replayed       bool   `json:"replayed"`
}
