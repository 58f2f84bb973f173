package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 提交结果标签
const (
	OutcomeAccepted         = "accepted"
	OutcomeValidationFailed = "validation_failed"
	OutcomeAlreadySubmitted = "already_submitted"
	OutcomeNotFound         = "not_found"
	OutcomeStorageFailure   = "storage_failure"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	SubmissionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_submissions_total",
			Help: "Assessment submissions by outcome",
		},
		[]string{"outcome"},
	)

	SubmissionScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assessment_submission_score",
			Help:    "Scores of accepted assessment submissions",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	AssessmentMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_mutations_total",
			Help: "Builder operations applied to assessments",
		},
		[]string{"operation"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(SubmissionCounter)
		prometheus.MustRegister(SubmissionScore)
		prometheus.MustRegister(AssessmentMutations)
	})
}

// RecordSubmission 记录一次提交；仅成功提交计入分数分布
func RecordSubmission(outcome string, score int) {
	SubmissionCounter.WithLabelValues(outcome).Inc()
	if outcome == OutcomeAccepted {
		SubmissionScore.Observe(float64(score))
	}
}

func RecordMutation(operation string) {
	AssessmentMutations.WithLabelValues(operation).Inc()
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
