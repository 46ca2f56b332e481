package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "minefield"

type Metrics struct {
	sessions prometheus.Gauge
	started  *prometheus.CounterVec
	finished *prometheus.CounterVec
	commands *prometheus.CounterVec
	requests *prometheus.HistogramVec
}

// New registers the collectors with reg. A nil *Metrics is valid and
// records nothing.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Game sessions currently held in memory.",
		}),
		started: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Fields laid out, including recreated ones.",
		}, []string{"level"}),
		finished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Finished games by outcome.",
		}, []string{"level", "outcome"}),
		commands: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Player commands applied to a field.",
		}, []string{"command"}),
		requests: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP requests by method and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "code"}),
	}
}

func (m *Metrics) SessionsChanged(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}

// GameStarted counts a new field. level must come from a fixed set, such
// as a preset name or "custom", to keep the number of series bounded.
func (m *Metrics) GameStarted(level string) {
	if m == nil {
		return
	}
	m.started.WithLabelValues(level).Inc()
}

func (m *Metrics) GameFinished(level, outcome string) {
	if m == nil {
		return
	}
	m.finished.WithLabelValues(level, outcome).Inc()
}

func (m *Metrics) Command(name string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(name).Inc()
}

func (m *Metrics) RequestServed(method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(code)).Observe(d.Seconds())
}
