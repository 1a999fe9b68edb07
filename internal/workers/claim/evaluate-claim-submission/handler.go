// internal/workers/claim/evaluate-claim-submission/handler.go
package evaluateclaimsubmission

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jkn-claim-workers/internal/claim"
	apperrors "jkn-claim-workers/internal/common/errors"
	"jkn-claim-workers/internal/common/logger"
	"jkn-claim-workers/internal/common/metrics"
	"jkn-claim-workers/internal/common/observability"
	"jkn-claim-workers/internal/workers/claim/claimvars"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "evaluate-claim-submission"
)

// Handler validates and scores a claim submission. A rejected claim completes
// the job normally; the process branches on the accepted flag.
type Handler struct {
	config     *Config
	evaluator  *claim.Evaluator
	obs        *observability.Observability
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

func NewHandler(config *Config, evaluator *claim.Evaluator, obs *observability.Observability, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		evaluator:  evaluator,
		obs:        obs,
		errHandler: apperrors.NewErrorHandler(l),
		logger:     l,
		now:        time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	timer := metrics.StartJob(TaskType)
	start := time.Now()

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
		h.obs.RecordJobProcessed(ctx, TaskType, "failed")
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		timer.Failed(string(apperrors.Normalize(err).Code))
		h.obs.RecordJobProcessed(ctx, TaskType, "failed")
		return
	}

	if err := h.completeJob(ctx, client, job, output); err != nil {
		timer.Failed("COMPLETE_FAILED")
		return
	}
	timer.Completed()
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	sub := input.Claim()
	ev := h.evaluator.Evaluate(sub)

	output := &Output{
		Accepted:         ev.Accepted,
		ClaimStatus:      ev.Status(),
		IsValid:          ev.Errors.Valid(),
		ValidationErrors: claimvars.FromValidation(ev.Errors),
		EvaluatedAt:      h.now().UTC().Format(time.RFC3339),
	}

	if ev.Risk != nil {
		level := ev.Risk.Tier
		output.RiskAssessed = true
		output.DetectionLevel = &level
		output.Severity = string(ev.Risk.Severity)
		output.Color = ev.Risk.Color
	}

	if _, bad := ev.Errors[claim.FieldServiceDate]; !bad {
		if day, ok := h.evaluator.Validator().ParseServiceDate(sub.ServiceDate); ok {
			output.ResolvedServiceDate = day.Format("2006-01-02")
		}
	}

	tier, scored := ev.Tier()
	metrics.RecordEvaluation(ev.Outcome(), tier, scored)
	h.obs.RecordClaimEvaluated(ctx, ev.Outcome(), tier, scored)

	fields := map[string]interface{}{
		"outcome":       ev.Outcome(),
		"claimStatus":   output.ClaimStatus,
		"invalidFields": ev.Errors.Fields(),
	}
	if scored {
		fields["detectionLevel"] = tier
	}
	h.logger.Info("claim evaluated", fields)

	return output, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
