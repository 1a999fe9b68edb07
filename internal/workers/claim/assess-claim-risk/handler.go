// internal/workers/claim/assess-claim-risk/handler.go
package assessclaimrisk

import (
	"context"
	"encoding/json"
	"fmt"

	"jkn-claim-workers/internal/claim"
	apperrors "jkn-claim-workers/internal/common/errors"
	"jkn-claim-workers/internal/common/logger"
	"jkn-claim-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "assess-claim-risk"
)

// Handler scores an amount on its own so the form can show the detection
// level while other fields are still being filled in.
type Handler struct {
	config     *Config
	scorer     *claim.Scorer
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, scorer *claim.Scorer, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		scorer:     scorer,
		errHandler: apperrors.NewErrorHandler(l),
		logger:     l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	timer := metrics.StartJob(TaskType)

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		stdErr := apperrors.NewParseError(fmt.Errorf("parse input: %w", err))
		h.errHandler.HandleJobError(ctx, client, job, stdErr)
		timer.Failed(string(stdErr.Code))
		return
	}

	output := h.execute(&input)

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

func (h *Handler) execute(input *Input) *Output {
	ra, ok := h.scorer.ScoreText(string(input.Amount))
	if !ok {
		h.logger.Debug("amount not scoreable", nil)
		return &Output{RiskAssessed: false}
	}

	level := ra.Tier
	h.logger.Debug("amount scored", map[string]interface{}{
		"detectionLevel": level,
		"ratio":          ra.Ratio,
	})
	return &Output{
		RiskAssessed:   true,
		DetectionLevel: &level,
		Severity:       string(ra.Severity),
		Color:          ra.Color,
		Ratio:          ra.Ratio,
	}
}

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	return h.execute(input), nil
}
