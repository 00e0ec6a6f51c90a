package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	ActiveCalls    prometheus.Gauge
	CallsTotal     prometheus.Counter
	AudioFramesIn  prometheus.Counter
	AudioFramesOut prometheus.Counter
	FunctionCalls  *prometheus.CounterVec
	StoreOpTime    *prometheus.HistogramVec
	ErrorsCount    *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveCalls: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_calls",
			Help:      "The number of calls currently bridged",
		}),
		CallsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "The total number of bridged calls",
		}),
		AudioFramesIn: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_frames_in_total",
			Help:      "Audio chunks forwarded from telephony to the agent",
		}),
		AudioFramesOut: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_frames_out_total",
			Help:      "Audio frames forwarded from the agent to telephony",
		}),
		FunctionCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "function_calls_total",
			Help:      "Function call requests received from the agent",
		}, []string{"function", "outcome"}),
		StoreOpTime: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_seconds",
			Help:      "Time taken by complaint store operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
