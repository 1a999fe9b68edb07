// internal/workers/claim/create-claim-record/handler.go
package createclaimrecord

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"jkn-claim-workers/internal/claim"
	apperrors "jkn-claim-workers/internal/common/errors"
	"jkn-claim-workers/internal/common/logger"
	"jkn-claim-workers/internal/common/metrics"
	"jkn-claim-workers/internal/workers/claim/claimvars"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "create-claim-record"

	cacheKeyPrefix = "claim:idem:"

	queryDuplicateCheck = "duplicate_check"
	queryInsertClaim    = "insert_claim"

	pqUniqueViolation = "23505"
)

var (
	ErrClaimValidationFailed    = errors.New("CLAIM_VALIDATION_FAILED")
	ErrClaimNotEligible         = errors.New("CLAIM_NOT_ELIGIBLE")
	ErrDuplicateClaim           = errors.New("DUPLICATE_CLAIM")
	ErrDatabaseInsertFailed     = errors.New("DATABASE_INSERT_FAILED")
	ErrDatabaseConnectionFailed = errors.New("DATABASE_CONNECTION_FAILED")
	ErrQueryTimeout             = errors.New("QUERY_TIMEOUT")
	ErrCacheUnavailable         = errors.New("CACHE_UNAVAILABLE")
)

// invalidClaimError keeps the failed fields so they reach the BPMN error variables.
type invalidClaimError struct {
	fields claim.ValidationResult
}

func (e *invalidClaimError) Error() string {
	return fmt.Sprintf("%s: invalid fields: %s", ErrClaimValidationFailed, e.fields)
}

func (e *invalidClaimError) Unwrap() error { return ErrClaimValidationFailed }

// queryError records which statement failed and how the failure was classified.
type queryError struct {
	kind  error
	query string
	err   error
}

func (e *queryError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.kind, e.query, e.err)
}

func (e *queryError) Unwrap() []error { return []error{e.kind, e.err} }

func classifyDBError(query string, err error) error {
	var netErr net.Error
	kind := ErrDatabaseInsertFailed
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = ErrQueryTimeout
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone), errors.As(err, &netErr):
		kind = ErrDatabaseConnectionFailed
	}
	return &queryError{kind: kind, query: query, err: err}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// Handler persists an eligible claim. The claim is re-evaluated first so an
// ineligible submission never reaches the claims table.
type Handler struct {
	config     *Config
	db         *sql.DB
	redis      *redis.Client
	evaluator  *claim.Evaluator
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, evaluator *claim.Evaluator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		redis:      redis,
		evaluator:  evaluator,
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
		stdErr := toStandardError(err)
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

func toStandardError(err error) *apperrors.StandardError {
	var invalid *invalidClaimError
	var qErr *queryError
	switch {
	case errors.As(err, &invalid):
		return apperrors.NewClaimValidationFailedError(err.Error(), invalid.fields.Messages())
	case errors.Is(err, ErrClaimValidationFailed):
		return apperrors.NewClaimValidationFailedError(err.Error(), nil)
	case errors.Is(err, ErrClaimNotEligible):
		return apperrors.NewClaimNotEligibleError(err.Error())
	case errors.Is(err, ErrDuplicateClaim):
		return apperrors.NewDuplicateClaimError(err.Error())
	case errors.Is(err, ErrCacheUnavailable):
		return apperrors.NewCacheUnavailableError(err)
	case errors.As(err, &qErr) && qErr.kind == ErrQueryTimeout:
		return apperrors.NewQueryTimeoutError(qErr.query)
	case errors.Is(err, ErrQueryTimeout):
		return apperrors.NewQueryTimeoutError("unknown")
	case errors.Is(err, ErrDatabaseConnectionFailed):
		return apperrors.NewDatabaseConnectionFailedError(err)
	case errors.Is(err, ErrDatabaseInsertFailed):
		return apperrors.NewDatabaseInsertFailedError(err)
	default:
		return apperrors.Normalize(err)
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	sub := input.Claim()

	ev := h.evaluator.Evaluate(sub)
	if !ev.Accepted {
		metrics.ClaimRecords.WithLabelValues("ineligible").Inc()
		if !ev.Errors.Valid() {
			return nil, &invalidClaimError{fields: ev.Errors}
		}
		tier, scored := ev.Tier()
		if !scored {
			return nil, fmt.Errorf("%w: amount not assessed", ErrClaimNotEligible)
		}
		return nil, fmt.Errorf("%w: detection level %d", ErrClaimNotEligible, tier)
	}

	key := input.IdempotencyKey
	if key == "" {
		fp, err := claimvars.Fingerprint(sub)
		if err != nil {
			return nil, err
		}
		key = fp
	}
	cacheKey := cacheKeyPrefix + key

	cached, err := h.redis.Get(ctx, cacheKey).Result()
	switch {
	case err == nil:
		var out Output
		if jsonErr := json.Unmarshal([]byte(cached), &out); jsonErr == nil {
			out.Replayed = true
			metrics.ClaimRecords.WithLabelValues("replayed").Inc()
			h.logger.Info("claim record replayed from cache", map[string]interface{}{
				"claimId": out.ClaimID,
			})
			return &out, nil
		}
		h.logger.Warn("discarding unreadable cache entry", map[string]interface{}{"cacheKey": cacheKey})
	case !errors.Is(err, redis.Nil):
		return nil, fmt.Errorf("%w: read idempotency key: %v", ErrCacheUnavailable, err)
	}

	serviceDay, _ := h.evaluator.Validator().ParseServiceDate(sub.ServiceDate)
	serviceDate := serviceDay.Format("2006-01-02")

	if out, err := h.checkExisting(ctx, sub, serviceDate, key, cacheKey); out != nil || err != nil {
		return out, err
	}

	claimID := uuid.New().String()
	createdAt := h.now().UTC().Format(time.RFC3339)
	amount, _ := claim.ParseAmount(sub.Amount)

	var referralName, referralURI string
	if sub.ReferralDocument != nil {
		referralName = sub.ReferralDocument.Name
		referralURI = sub.ReferralDocument.URI
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO claims (
			id, full_name, national_id, insurance_number, phone_number,
			service_date, facility, service_type, referral_name, referral_uri,
			amount, detection_level, status, idempotency_key, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)`,
		claimID,
		sub.FullName,
		sub.NationalID,
		sub.InsuranceNumber,
		sub.PhoneNumber,
		serviceDate,
		sub.Facility,
		sub.ServiceType,
		referralName,
		referralURI,
		amount,
		ev.Risk.Tier,
		claim.StatusSubmitted,
		key,
		createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// A concurrent delivery won the insert. Its row decides replay or duplicate.
			out, lookupErr := h.checkExisting(ctx, sub, serviceDate, key, cacheKey)
			if out != nil || lookupErr != nil {
				return out, lookupErr
			}
		}
		return nil, classifyDBError(queryInsertClaim, err)
	}

	auditDetails, _ := json.Marshal(map[string]interface{}{
		"idempotencyKey": key,
		"detectionLevel": ev.Risk.Tier,
		"facility":       sub.Facility,
		"serviceType":    sub.ServiceType,
	})
	if _, err := h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"claim_submitted",
		"claim",
		claimID,
		auditDetails,
		createdAt,
	); err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":   err.Error(),
			"claimId": claimID,
		})
	}

	output := &Output{
		ClaimID:        claimID,
		ClaimStatus:    claim.StatusSubmitted,
		DetectionLevel: ev.Risk.Tier,
		ServiceDate:    serviceDate,
		CreatedAt:      createdAt,
	}
	h.cacheOutput(ctx, cacheKey, output)

	metrics.ClaimRecords.WithLabelValues("created").Inc()
	h.logger.Info("claim record created", map[string]interface{}{
		"claimId":     claimID,
		"serviceDate": serviceDate,
		"facility":    sub.Facility,
	})

	return output, nil
}

// checkExisting looks up a claim for the same member, day and facility. A row
// written under the same idempotency key is this job's own earlier insert and
// is replayed; any other row is a duplicate. Both nil means no row exists.
func (h *Handler) checkExisting(ctx context.Context, sub claim.Submission, serviceDate, key, cacheKey string) (*Output, error) {
	var (
		existingID     string
		existingKey    sql.NullString
		status         string
		detectionLevel int
		createdAt      time.Time
	)
	err := h.db.QueryRowContext(ctx, `
		SELECT id, idempotency_key, status, detection_level, created_at FROM claims
		WHERE national_id = $1 AND insurance_number = $2 AND service_date = $3 AND facility = $4
		LIMIT 1`,
		sub.NationalID, sub.InsuranceNumber, serviceDate, sub.Facility,
	).Scan(&existingID, &existingKey, &status, &detectionLevel, &createdAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, classifyDBError(queryDuplicateCheck, err)
	}

	if !existingKey.Valid || existingKey.String != key {
		metrics.ClaimRecords.WithLabelValues("duplicate").Inc()
		return nil, fmt.Errorf("%w: claim %s already submitted for %s at %s",
			ErrDuplicateClaim, existingID, serviceDate, sub.Facility)
	}

	out := &Output{
		ClaimID:        existingID,
		ClaimStatus:    status,
		DetectionLevel: detectionLevel,
		ServiceDate:    serviceDate,
		CreatedAt:      createdAt.UTC().Format(time.RFC3339),
		Replayed:       true,
	}
	h.cacheOutput(ctx, cacheKey, out)

	metrics.ClaimRecords.WithLabelValues("replayed").Inc()
	h.logger.Info("claim record replayed from database", map[string]interface{}{
		"claimId": existingID,
	})
	return out, nil
}

func (h *Handler) cacheOutput(ctx context.Context, cacheKey string, out *Output) {
	stored := *out
	stored.Replayed = false
	data, err := json.Marshal(&stored)
	if err == nil {
		err = h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL).Err()
	}
	if err != nil {
		h.logger.Warn("failed to cache claim record", map[string]interface{}{
			"error":   err.Error(),
			"claimId": out.ClaimID,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
