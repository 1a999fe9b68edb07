// internal/workers/claim/claimvars/variables.go

// Package claimvars decodes claim submissions from Zeebe job variables.
package claimvars

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"jkn-claim-workers/internal/claim"
)

// Text accepts any JSON scalar and keeps the literal text of strings and
// numbers. BPMN forms and connectors send identifiers and amounts either way.
// Booleans, objects and arrays decode as absent so the validator can report
// the field instead of the whole job failing to parse.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*t = Text(n.String())
	default:
		*t = ""
	}
	return nil
}

// Referral is the wire form of claim.DocumentRef. Anything other than a JSON
// object decodes as absent.
type Referral struct {
	Name Text `json:"name"`
	URI  Text `json:"uri"`

	absent bool
}

func (r *Referral) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		*r = Referral{absent: true}
		return nil
	}
	type plain Referral
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Referral(p)
	return nil
}

func (r *Referral) document() *claim.DocumentRef {
	if r == nil || r.absent {
		return nil
	}
	return &claim.DocumentRef{Name: string(r.Name), URI: string(r.URI)}
}

// Submission mirrors claim.Submission on the wire.
type Submission struct {
	FullName         Text      `json:"fullName"`
	NationalID       Text      `json:"nationalId"`
	InsuranceNumber  Text      `json:"insuranceNumber"`
	PhoneNumber      Text      `json:"phoneNumber"`
	ServiceDate      Text      `json:"serviceDate,omitempty"`
	Facility         Text      `json:"facility"`
	ServiceType      Text      `json:"serviceType"`
	ReferralDocument *Referral `json:"referralDocument,omitempty"`
	Amount           Text      `json:"amount"`
}

// Claim converts the wire form into the core type.
func (s Submission) Claim() claim.Submission {
	return claim.Submission{
		FullName:         string(s.FullName),
		NationalID:       string(s.NationalID),
		InsuranceNumber:  string(s.InsuranceNumber),
		PhoneNumber:      string(s.PhoneNumber),
		ServiceDate:      string(s.ServiceDate),
		Facility:         string(s.Facility),
		ServiceType:      string(s.ServiceType),
		ReferralDocument: s.ReferralDocument.document(),
		Amount:           string(s.Amount),
	}
}

// Fingerprint is a stable hash of the submission used as a default
// idempotency key.
func Fingerprint(s claim.Submission) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("fingerprint submission: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// FieldErrors is the job-variable shape of a claim.ValidationResult.
type FieldErrors map[string]FieldError

type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func FromValidation(res claim.ValidationResult) FieldErrors {
	out := make(FieldErrors, len(res))
	for field, fe := range res {
		out[field] = FieldError{Code: fe.Code, Message: fe.Message}
	}
	return out
}
