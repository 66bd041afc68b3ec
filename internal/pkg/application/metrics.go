package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace string = "sensor_gateway"

var (
	upstreamRequestLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "upstream_request_latency_seconds",
			Namespace: namespace,
			Buckets:   prometheus.DefBuckets,
			Help:      "The latency of requests to the upstream sensor service in seconds.",
		},
		[]string{"endpoint", "status"},
	)

	sensorDataNotFoundTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name:      "sensor_data_not_found_total",
		Namespace: namespace,
		Help:      "The total number of sensor data requests the upstream service could not answer.",
	})
)
