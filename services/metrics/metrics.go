package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nutrimatch_recommendation_duration_seconds",
			Help:    "Duration of recommendation runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"session_type"},
	)

	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrimatch_recommendations_total",
			Help: "Total number of recommendation runs",
		},
		[]string{"session_type", "result"},
	)

	CandidateCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nutrimatch_candidate_foods",
			Help:    "Number of candidate foods scored per run",
			Buckets: []float64{0, 10, 25, 50, 100, 150, 200},
		},
	)

	SafetyValveTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nutrimatch_candidate_safety_valve_total",
			Help: "Times the candidate filter fell back to all verified foods",
		},
	)

	LearnerUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrimatch_learner_updates_total",
			Help: "Learned preference updates by source and result",
		},
		[]string{"source", "result"},
	)

	LearnerRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nutrimatch_learner_retries_total",
			Help: "Learned preference transactions retried after a conflict",
		},
	)

	FeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrimatch_feedback_total",
			Help: "Recommendation feedback by kind",
		},
		[]string{"feedback"},
	)

	ConsumptionsLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrimatch_consumptions_total",
			Help: "Logged food consumptions by meal type",
		},
		[]string{"meal_type"},
	)

	CatalogCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nutrimatch_catalog_cache_hits_total",
			Help: "Catalog queries served from redis",
		},
	)

	CatalogCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nutrimatch_catalog_cache_misses_total",
			Help: "Catalog queries that went to the database",
		},
	)

	QueueMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutrimatch_queue_messages_total",
			Help: "AMQP messages handled by queue and result",
		},
		[]string{"queue", "result"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nutrimatch_job_duration_seconds",
			Help:    "Duration of batch jobs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"job", "type"},
	)
)

// ObserveSince records the time elapsed since start on a histogram.
func ObserveSince(observer prometheus.Observer, start time.Time) {
	observer.Observe(time.Since(start).Seconds())
}
