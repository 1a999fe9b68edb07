// internal/workers/claim/send-claim-notification/models.go
package sendclaimnotification

import (
	"context"

	"jkn-claim-workers/internal/workers/claim/claimvars"
)

const (
	StatusSent             = "sent"
	StatusDisabled         = "disabled"
	StatusInvalidRecipient = "invalid_recipient"
)

type Input struct {
	ClaimID     string         `json:"claimId"`
	FullName    claimvars.Text `json:"fullName"`
	PhoneNumber claimvars.Text `json:"phoneNumber"`
	ClaimStatus string         `json:"claimStatus"`
}

type Output struct {
	NotificationSent   bool   `json:"notificationSent"`
	NotificationStatus string `json:"notificationStatus"`
	MessageID          string `json:"messageId,omitempty"`
	Recipient          string `json:"recipient,omitempty"`
	SentAt             string `json:"sentAt,omitempty"`
}

// SMSSender delivers a text message to an E.164 number and returns the
// provider message id. *aws.SMSClient satisfies it.
type SMSSender interface {
	Send(ctx context.Context, phoneE164, message string) (string, error)
}
