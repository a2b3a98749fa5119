package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attend",
		Name:      "verifications_total",
		Help:      "Total number of verification attempts by outcome",
	}, []string{"outcome"}) // matched, below_threshold, no_face

	Enrollments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attend",
		Name:      "enrollments_total",
		Help:      "Total number of enrollment attempts by outcome",
	}, []string{"outcome"}) // ok, insufficient, duplicate, quality_rejected

	SamplesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attend",
		Name:      "samples_rejected_total",
		Help:      "Enrollment samples rejected by the quality gate",
	}, []string{"reason"})

	InferenceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "attend",
		Name:      "inference_duration_seconds",
		Help:      "Duration of ML inference stages",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"stage"})

	MatchScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "attend",
		Name:      "match_score",
		Help:      "Best aggregate similarity score per verification",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "attend",
		Name:      "queue_depth",
		Help:      "Number of pending attendance events in queue",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "attend",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "attend",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
