package valkit

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	metricsRegistry = prometheus.NewRegistry()
	metricsEnabled  atomic.Bool

	validationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "valkit",
			Name:      "validations_total",
			Help:      "Number of IsValid calls by validator and result.",
		},
		[]string{"validator", "result"},
	)

	validationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "valkit",
			Name:      "validation_failures_total",
			Help:      "Number of failure messages emitted by validator and message code.",
		},
		[]string{"validator", "code"},
	)
)

func init() {
	metricsRegistry.MustRegister(validationsTotal, validationFailuresTotal)
	metricsEnabled.Store(true)
}

// MetricsRegistry returns the registry holding valkit's collectors. Mount it
// with promhttp.HandlerFor or merge it into an application registry.
func MetricsRegistry() *prometheus.Registry {
	return metricsRegistry
}

// SetMetricsEnabled toggles metric recording.
func SetMetricsEnabled(enabled bool) {
	metricsEnabled.Store(enabled)
}

// Record logs and counts the outcome of one IsValid call.
func Record(validator string, valid bool, messages Messages) {
	if !valid {
		log := Logger()
		if log.IsLevelEnabled(logrus.DebugLevel) {
			log.WithFields(logrus.Fields{
				"validator": validator,
				"codes":     messages.Keys(),
			}).Debug("validation failed")
		}
	}

	if !metricsEnabled.Load() {
		return
	}

	result := "valid"
	if !valid {
		result = "invalid"
	}
	validationsTotal.WithLabelValues(validator, result).Inc()
	for _, msg := range messages {
		validationFailuresTotal.WithLabelValues(validator, msg.Key).Inc()
	}
}
