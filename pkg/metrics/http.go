package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latency of HTTP handlers by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests served by route",
	}, []string{"method", "route", "status"})

	// RecommendDuration only covers the aggregated recommend endpoint.
	RecommendDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommend_latency_seconds",
		Help:    "Latency of the recommendation endpoint",
		Buckets: prometheus.DefBuckets,
	})
)

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestsTotal, RecommendDuration)
	})
}
