package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	formsTransferred = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formwire",
			Subsystem: "session",
			Name:      "forms_total",
			Help:      "Total forms moved over sessions.",
		},
		[]string{"direction", "title"},
	)
	commandsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "formwire",
			Subsystem: "session",
			Name:      "commands_total",
			Help:      "Commands dispatched by the server.",
		},
		[]string{"command", "outcome"},
	)
	dispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "formwire",
			Subsystem: "session",
			Name:      "dispatch_duration_seconds",
			Help:      "Command dispatch duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"command"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(formsTransferred, commandsDispatched, dispatchDuration)
	})
}

func RecordForm(direction, title string) {
	RegisterMetrics()
	formsTransferred.WithLabelValues(direction, title).Inc()
}

func RecordCommand(command, outcome string, duration time.Duration) {
	RegisterMetrics()
	commandsDispatched.WithLabelValues(command, outcome).Inc()
	dispatchDuration.WithLabelValues(command).Observe(duration.Seconds())
}
