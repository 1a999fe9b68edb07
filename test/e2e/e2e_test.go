// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jkn-claim-workers/internal/claim"
	"jkn-claim-workers/internal/common/camunda"
	"jkn-claim-workers/internal/common/config"
	"jkn-claim-workers/internal/common/database"
	"jkn-claim-workers/internal/common/logger"
	"jkn-claim-workers/internal/workers/claim/claimvars"

	createclaimrecord "jkn-claim-workers/internal/workers/claim/create-claim-record"
	evaluateclaimsubmission "jkn-claim-workers/internal/workers/claim/evaluate-claim-submission"
)

// The suite talks to the services from docker compose. Set E2E=1 to run it.
func skipUnlessE2E(t *testing.T) {
	t.Helper()
	if os.Getenv("E2E") == "" {
		t.Skip("set E2E=1 to run against real Zeebe, PostgreSQL and Redis")
	}
	if testing.Short() {
		t.Skip("skipping E2E tests in short mode")
	}
}

type testEnvironment struct {
	cfg       *config.Config
	pg        *database.PostgresClient
	redis     *database.RedisClient
	evaluator *claim.Evaluator
}

func setupEnvironment(t *testing.T) *testEnvironment {
	t.Helper()
	ctx := context.Background()

	cfg, err := config.Load()
	require.NoError(t, err)

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")
	t.Cleanup(func() { pg.Close() })

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "Redis client creation failed")
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")
	t.Cleanup(func() { rdb.Close() })

	migration, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_create_claims.sql"))
	require.NoError(t, err)
	_, err = pg.DB.ExecContext(ctx, string(migration))
	require.NoError(t, err, "applying migration failed")

	loc, err := cfg.Risk.Location()
	require.NoError(t, err)

	return &testEnvironment{
		cfg:       cfg,
		pg:        pg,
		redis:     rdb,
		evaluator: claim.NewEvaluator(claim.NewValidator(loc, time.Now), claim.NewScorer(cfg.Risk.Scorer())),
	}
}

func uniqueSubmission() claimvars.Submission {
	// Unique NIK per run keeps the dedup index from tripping across runs.
	suffix := fmt.Sprintf("%08d", time.Now().UnixNano()%100_000_000)
	return claimvars.Submission{
		FullName:        "Budi Santoso",
		NationalID:      claimvars.Text("31740123" + suffix),
		InsuranceNumber: "0001234567890",
		PhoneNumber:     "081234567890",
		Facility:        "RSUD Tarakan",
		ServiceType:     "Rawat Inap",
		ReferralDocument: &claimvars.Referral{
			Name: "rujukan.pdf",
			URI:  "s3://jkn-claims/e2e/rujukan.pdf",
		},
		Amount: "2500000",
	}
}

// ==========================
// Connectivity
// ==========================

func TestZeebeConnectivity(t *testing.T) {
	skipUnlessE2E(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	client, err := camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	assert.NoError(t, client.HealthCheck(ctx))
}

// ==========================
// Claim intake flow
// ==========================

func TestClaimIntakeFlow(t *testing.T) {
	skipUnlessE2E(t)
	env := setupEnvironment(t)
	ctx := context.Background()
	log := logger.NewTestLogger(t)

	sub := uniqueSubmission()

	// 1. Evaluate
	evaluator := evaluateclaimsubmission.NewHandler(evaluateclaimsubmission.LoadConfig(), env.evaluator, nil, log)
	evaluation, err := evaluator.Execute(ctx, &evaluateclaimsubmission.Input{Submission: sub})
	require.NoError(t, err)
	require.True(t, evaluation.Accepted, "validation errors: %v", evaluation.ValidationErrors)
	require.NotNil(t, evaluation.DetectionLevel)
	assert.Equal(t, 0, *evaluation.DetectionLevel)

	// 2. Persist
	recorder := createclaimrecord.NewHandler(createclaimrecord.LoadConfig(), env.pg.DB, env.redis.Client, env.evaluator, log)
	key := "e2e-" + string(sub.NationalID)
	first, err := recorder.Execute(ctx, &createclaimrecord.Input{Submission: sub, IdempotencyKey: key})
	require.NoError(t, err)
	assert.False(t, first.Replayed)
	assert.Equal(t, claim.StatusSubmitted, first.ClaimStatus)

	var status string
	var amount int64
	err = env.pg.DB.QueryRowContext(ctx, `SELECT status, amount FROM claims WHERE id = $1`, first.ClaimID).Scan(&status, &amount)
	require.NoError(t, err)
	assert.Equal(t, "submitted", status)
	assert.Equal(t, int64(2_500_000), amount)

	var audits int
	err = env.pg.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE resource_type = 'claim' AND resource_id = $1`, first.ClaimID,
	).Scan(&audits)
	require.NoError(t, err)
	assert.Equal(t, 1, audits)

	// 3. Retry with the same key replays the stored result
	replay, err := recorder.Execute(ctx, &createclaimrecord.Input{Submission: sub, IdempotencyKey: key})
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.Equal(t, first.ClaimID, replay.ClaimID)

	// 3b. With the cache entry gone the stored row is replayed
	require.NoError(t, env.redis.Client.Del(ctx, "claim:idem:"+key).Err())
	fromDB, err := recorder.Execute(ctx, &createclaimrecord.Input{Submission: sub, IdempotencyKey: key})
	require.NoError(t, err)
	assert.True(t, fromDB.Replayed)
	assert.Equal(t, first.ClaimID, fromDB.ClaimID)

	// 4. Same claim under a new key is a duplicate
	_, err = recorder.Execute(ctx, &createclaimrecord.Input{Submission: sub, IdempotencyKey: key + "-resubmit"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, createclaimrecord.ErrDuplicateClaim))
}

func TestClaimIntakeFlow_AnomalyNotPersisted(t *testing.T) {
	skipUnlessE2E(t)
	env := setupEnvironment(t)
	ctx := context.Background()

	sub := uniqueSubmission()
	sub.Amount = "20000000"

	recorder := createclaimrecord.NewHandler(createclaimrecord.LoadConfig(), env.pg.DB, env.redis.Client, env.evaluator, logger.NewTestLogger(t))
	_, err := recorder.Execute(ctx, &createclaimrecord.Input{Submission: sub})
	require.Error(t, err)
	assert.True(t, errors.Is(err, createclaimrecord.ErrClaimNotEligible))

	var count int
	err = env.pg.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM claims WHERE national_id = $1`, string(sub.NationalID)).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
}
