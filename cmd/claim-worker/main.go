// cmd/claim-worker/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"jkn-claim-workers/internal/claim"
	"jkn-claim-workers/internal/common/aws"
	"jkn-claim-workers/internal/common/camunda"
	"jkn-claim-workers/internal/common/config"
	"jkn-claim-workers/internal/common/database"
	"jkn-claim-workers/internal/common/logger"
	"jkn-claim-workers/internal/common/observability"
	"jkn-claim-workers/pkg/registry"

	acr "jkn-claim-workers/internal/workers/claim/assess-claim-risk"
	ccr "jkn-claim-workers/internal/workers/claim/create-claim-record"
	ecs "jkn-claim-workers/internal/workers/claim/evaluate-claim-submission"
	scn "jkn-claim-workers/internal/workers/claim/send-claim-notification"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// workerTimeout prefers the per-worker timeout from config.
func workerTimeout(cfg *config.Config, taskType string, fallback time.Duration) time.Duration {
	if d := config.GetWorkerConfig(cfg, taskType).TimeoutDuration(); d > 0 {
		return d
	}
	return fallback
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting claim worker...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Claim core ---
	loc, err := cfg.Risk.Location()
	if err != nil {
		zapLog.Fatal("invalid risk timezone", zap.Error(err))
	}
	scorer := claim.NewScorer(cfg.Risk.Scorer())
	evaluator := claim.NewEvaluator(claim.NewValidator(loc, time.Now), scorer)
	zapLog.Info("Claim evaluator ready",
		zap.Int64("baseline", cfg.Risk.Baseline),
		zap.Float64("mediumMultiplier", cfg.Risk.MediumMultiplier),
		zap.Float64("highMultiplier", cfg.Risk.HighMultiplier),
		zap.String("timezone", loc.String()),
	)

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		if err != nil {
			return err
		}
		if err := zeebe.HealthCheck(ctx); err != nil {
			_ = zeebe.Close()
			return err
		}
		return nil
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init SMS ---
	var sms scn.SMSSender
	if cfg.Notifications.SMS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.SMS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		sms = aws.NewSMSClient(snsClient, cfg.Notifications.SMS.SenderID)
		zapLog.Info("SNS SMS client initialized", zap.String("region", cfg.Notifications.SMS.Region))
	} else {
		zapLog.Info("SMS notifications disabled")
	}

	// --- Register workers ---
	client := zeebe.GetClient()
	var workers []worker.JobWorker
	register := func(taskType string, handler worker.JobHandler) {
		if jw := camunda.StartWorker(client, taskType, config.GetWorkerConfig(cfg, taskType), handler, log); jw != nil {
			workers = append(workers, jw)
		}
	}

	evalHandler := ecs.NewHandler(
		&ecs.Config{Timeout: workerTimeout(cfg, ecs.TaskType, ecs.LoadConfig().Timeout)},
		evaluator, obs, log,
	)
	register(ecs.TaskType, evalHandler.Handle)

	riskHandler := acr.NewHandler(
		&acr.Config{Timeout: workerTimeout(cfg, acr.TaskType, acr.LoadConfig().Timeout)},
		scorer, log,
	)
	register(acr.TaskType, riskHandler.Handle)

	recordCfg := ccr.LoadConfig()
	recordCfg.Timeout = workerTimeout(cfg, ccr.TaskType, recordCfg.Timeout)
	if ttl := config.GetWorkerConfig(cfg, ccr.TaskType).CacheTTL; ttl > 0 {
		recordCfg.CacheTTL = time.Duration(ttl) * time.Second
	}
	recordHandler := ccr.NewHandler(recordCfg, pg.DB, redis.Client, evaluator, log)
	register(ccr.TaskType, recordHandler.Handle)

	notifyCfg := &scn.Config{
		Timeout:    workerTimeout(cfg, scn.TaskType, scn.LoadConfig().Timeout),
		SMSEnabled: cfg.Notifications.SMS.Enabled,
	}
	if err := notifyCfg.Validate(); err != nil {
		zapLog.Fatal("invalid send-claim-notification config", zap.Error(err))
	}
	notifyHandler := scn.NewHandler(notifyCfg, sms, log)
	register(scn.TaskType, notifyHandler.Handle)

	zapLog.Info("Claim workers registered", zap.Int("count", len(workers)))

	if reg, err := registry.LoadRegistry(cfg.App.RegistryPath); err != nil {
		zapLog.Warn("activity registry not loaded", zap.String("path", cfg.App.RegistryPath), zap.Error(err))
	} else {
		for _, taskType := range []string{ecs.TaskType, acr.TaskType, ccr.TaskType, scn.TaskType} {
			if _, ok := reg.Find(taskType); !ok {
				zapLog.Warn("worker missing from activity registry", zap.String("taskType", taskType))
			}
		}
	}

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		status := http.StatusOK
		for name, check := range map[string]func(context.Context) error{
			"zeebe":    zeebe.HealthCheck,
			"postgres": pg.Ping,
			"redis":    redis.Ping,
		} {
			if err := check(checkCtx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		checks["status"] = "ready"
		if status != http.StatusOK {
			checks["status"] = "not_ready"
		}
		checks["time"] = time.Now().Format(time.RFC3339)
		writeStatus(w, status, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, jw := range workers {
		jw.Close()
		jw.AwaitClose()
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing metrics", zap.Error(err))
	}

	zapLog.Info("Claim worker stopped gracefully")
}

func writeStatus(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
