// internal/common/metrics/metrics.go
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	ClaimsEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_evaluated_total",
			Help: "Claim submissions evaluated, by outcome (accepted, invalid, unscored, anomaly)",
		},
		[]string{"outcome"},
	)

	ClaimDetectionLevel = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claim_detection_level_total",
			Help: "Scored claims by detection level",
		},
		[]string{"level"},
	)

	ClaimRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claim_records_total",
			Help: "Claim persistence attempts by result (created, duplicate, replayed, ineligible)",
		},
		[]string{"result"},
	)

	ClaimNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claim_notifications_total",
			Help: "Claim SMS notifications by status",
		},
		[]string{"status"},
	)
)

// JobTimer tracks one job from activation to its final command.
type JobTimer struct {
	taskType string
	start    time.Time
}

// StartJob marks a job active for taskType.
func StartJob(taskType string) *JobTimer {
	WorkerJobsActive.WithLabelValues(taskType).Inc()
	return &JobTimer{taskType: taskType, start: time.Now()}
}

// Completed records a successful job.
func (t *JobTimer) Completed() {
	t.finish()
	WorkerJobsCompleted.WithLabelValues(t.taskType).Inc()
}

// Failed records a job that ended with errorCode.
func (t *JobTimer) Failed(errorCode string) {
	t.finish()
	WorkerJobsFailed.WithLabelValues(t.taskType, errorCode).Inc()
}

func (t *JobTimer) finish() {
	WorkerJobsActive.WithLabelValues(t.taskType).Dec()
	WorkerJobDuration.WithLabelValues(t.taskType).Observe(time.Since(t.start).Seconds())
}

// RecordEvaluation counts one evaluated claim. level is ignored when scored is false.
func RecordEvaluation(outcome string, level int, scored bool) {
	ClaimsEvaluated.WithLabelValues(outcome).Inc()
	if scored {
		ClaimDetectionLevel.WithLabelValues(strconv.Itoa(level)).Inc()
	}
}
