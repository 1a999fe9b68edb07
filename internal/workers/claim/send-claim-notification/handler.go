// internal/workers/claim/send-claim-notification/handler.go
package sendclaimnotification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "jkn-claim-workers/internal/common/errors"
	"jkn-claim-workers/internal/common/logger"
	"jkn-claim-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "send-claim-notification"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")

	e164Indonesia = regexp.MustCompile(`^\+62[0-9]{8,12}$`)
)

// Handler tells the submitter by SMS that their claim was recorded. It only
// runs after the claim is persisted, so a bad recipient completes the job
// instead of failing the process.
type Handler struct {
	config     *Config
	sender     SMSSender
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

// NewHandler builds the handler. sender may be nil when SMS is disabled.
func NewHandler(config *Config, sender SMSSender, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		sender:     sender,
		errHandler: apperrors.NewErrorHandler(l),
		logger:     l,
		now:        time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	timer := metrics.StartJob(TaskType)

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		stdErr := apperrors.NewParseError(fmt.Errorf("parse input: %w", err))
		h.errHandler.HandleJobError(ctx, client, job, stdErr)
		timer.Failed(string(stdErr.Code))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		stdErr := apperrors.NewNotificationSendFailedError("sms", err)
		h.errHandler.HandleJobError(ctx, client, job, stdErr)
		timer.Failed(string(stdErr.Code))
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err == nil {
		_, err = cmd.Send(ctx)
	}
	if err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		timer.Failed("COMPLETE_FAILED")
		return
	}
	timer.Completed()
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if !h.config.SMSEnabled || h.sender == nil {
		metrics.ClaimNotifications.WithLabelValues(StatusDisabled).Inc()
		h.logger.Debug("sms disabled, skipping notification", map[string]interface{}{
			"claimId": input.ClaimID,
		})
		return &Output{NotificationStatus: StatusDisabled}, nil
	}

	recipient, ok := NormalizePhone(string(input.PhoneNumber))
	if !ok {
		metrics.ClaimNotifications.WithLabelValues(StatusInvalidRecipient).Inc()
		h.logger.Warn("cannot notify claim submitter", map[string]interface{}{
			"claimId": input.ClaimID,
			"reason":  "phone number is not a valid Indonesian number",
		})
		return &Output{NotificationStatus: StatusInvalidRecipient}, nil
	}

	messageID, err := h.sender.Send(ctx, recipient, BuildMessage(input))
	if err != nil {
		metrics.ClaimNotifications.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrNotificationSendFailed, err)
	}

	metrics.ClaimNotifications.WithLabelValues(StatusSent).Inc()
	h.logger.Info("claim notification sent", map[string]interface{}{
		"claimId":   input.ClaimID,
		"messageId": messageID,
	})

	return &Output{
		NotificationSent:   true,
		NotificationStatus: StatusSent,
		MessageID:          messageID,
		Recipient:          maskPhone(recipient),
		SentAt:             h.now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// NormalizePhone converts a local Indonesian mobile number (08xx, 8xx, 62xx or
// +62xx, optionally with spaces or dashes) to E.164.
func NormalizePhone(raw string) (string, bool) {
	s := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))

	switch {
	case strings.HasPrefix(s, "+62"):
	case strings.HasPrefix(s, "62"):
		s = "+" + s
	case strings.HasPrefix(s, "0"):
		s = "+62" + s[1:]
	case strings.HasPrefix(s, "8"):
		s = "+62" + s
	default:
		return "", false
	}

	if !e164Indonesia.MatchString(s) {
		return "", false
	}
	return s, true
}

// BuildMessage renders the SMS body.
func BuildMessage(input *Input) string {
	name := strings.TrimSpace(string(input.FullName))
	if name == "" {
		name = "Peserta JKN"
	}
	ref := input.ClaimID
	if len(ref) > 8 {
		ref = ref[:8]
	}
	status := input.ClaimStatus
	if status == "" {
		status = "submitted"
	}
	return fmt.Sprintf("Halo %s, klaim JKN Anda (ref %s) telah kami terima dengan status %s. Simpan nomor referensi ini untuk pengecekan.",
		name, strings.ToUpper(ref), status)
}

func maskPhone(e164 string) string {
	if len(e164) <= 7 {
		return e164
	}
	return e164[:5] + strings.Repeat("*", len(e164)-8) + e164[len(e164)-3:]
}
