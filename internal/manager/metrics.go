package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	generationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "routerd",
			Subsystem: "chat",
			Name:      "generation_duration_seconds",
			Help:      "Duration of successful generations in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"backend", "reason"},
	)

	generationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "routerd",
			Subsystem: "chat",
			Name:      "generation_failures_total",
			Help:      "Generations that returned an error",
		},
		[]string{"backend"},
	)

	admissionWait = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "routerd",
			Subsystem: "gate",
			Name:      "wait_seconds",
			Help:      "Time spent waiting for a generation slot",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	gateInflight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "routerd",
			Subsystem: "gate",
			Name:      "inflight",
			Help:      "Generations currently admitted",
		},
		[]string{"backend"},
	)

	gateWaiting = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "routerd",
			Subsystem: "gate",
			Name:      "waiting",
			Help:      "Callers waiting for a generation slot",
		},
		[]string{"backend"},
	)

	gateCapacity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "routerd",
			Subsystem: "gate",
			Name:      "capacity",
			Help:      "Configured generation slots",
		},
		[]string{"backend"},
	)
)

func init() {
	prometheus.MustRegister(generationDuration, generationFailures, admissionWait, gateInflight, gateWaiting, gateCapacity)
}
