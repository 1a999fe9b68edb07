// internal/workers/claim/assess-claim-risk/models.go
package assessclaimrisk

import "jkn-claim-workers/internal/workers/claim/claimvars"

type Input struct {
	Amount claimvars.Text `json:"amount"`
}

type Output struct {
	RiskAssessed   bool    `json:"riskAssessed"`
	DetectionLevel *int    `json:"detectionLevel"`
	Severity       string  `json:"severity"`
	Color          string  `json:"color"`
	Ratio          float64 `json:"ratio"`
}
