// Package metrics Prometheus 指标。所有方法对 nil 接收者安全，核心组件可以不接指标
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "advisor"

type Metrics struct {
	gatherer prometheus.Gatherer

	framesTotal    *prometheus.CounterVec
	frameDuration  prometheus.Histogram
	cardsConfirmed *prometheus.CounterVec
	rejectedTotal  *prometheus.CounterVec
	decisionsTotal *prometheus.CounterVec
	shufflesTotal  *prometheus.CounterVec
	trueCount      *prometheus.GaugeVec
	penetration    *prometheus.GaugeVec
	sessionsActive prometheus.Gauge
	historyDropped prometheus.Counter
}

// New 在 reg 上注册全部指标；reg 为 nil 时使用一个新的私有 registry
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		framesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames processed by the orchestrator",
		}, []string{"session"}),
		frameDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent in one frame step",
			Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01},
		}),
		cardsConfirmed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cards_confirmed_total",
			Help:      "Cards that passed the stability filter",
		}, []string{"session"}),
		rejectedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_rejected_total",
			Help:      "Detections with an identity outside [0,52)",
		}, []string{"session"}),
		decisionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Recommendations emitted, by action",
		}, []string{"action"}),
		shufflesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shuffles_total",
			Help:      "Shuffle indicators fired, by indicator",
		}, []string{"indicator"}),
		trueCount: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "true_count",
			Help:      "Current true count",
		}, []string{"session"}),
		penetration: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "penetration_ratio",
			Help:      "Fraction of the shoe already dealt",
		}, []string{"session"}),
		sessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions currently running",
		}),
		historyDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_events_dropped_total",
			Help:      "Events the history recorder could not queue",
		}),
	}
}

func (m *Metrics) Frame(session string, d time.Duration, confirmed, rejected int) {
	if m == nil {
		return
	}
	m.framesTotal.WithLabelValues(session).Inc()
	m.frameDuration.Observe(d.Seconds())
	if confirmed > 0 {
		m.cardsConfirmed.WithLabelValues(session).Add(float64(confirmed))
	}
	if rejected > 0 {
		m.rejectedTotal.WithLabelValues(session).Add(float64(rejected))
	}
}

func (m *Metrics) Count(session string, trueCount, penetration float64) {
	if m == nil {
		return
	}
	m.trueCount.WithLabelValues(session).Set(trueCount)
	m.penetration.WithLabelValues(session).Set(penetration)
}

func (m *Metrics) Decision(action string) {
	if m == nil {
		return
	}
	m.decisionsTotal.WithLabelValues(action).Inc()
}

func (m *Metrics) Shuffle(indicator string) {
	if m == nil {
		return
	}
	m.shufflesTotal.WithLabelValues(indicator).Inc()
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsActive.Inc()
}

// SessionEnded 同时删掉该会话的标签
func (m *Metrics) SessionEnded(session string) {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
	m.framesTotal.DeleteLabelValues(session)
	m.cardsConfirmed.DeleteLabelValues(session)
	m.rejectedTotal.DeleteLabelValues(session)
	m.trueCount.DeleteLabelValues(session)
	m.penetration.DeleteLabelValues(session)
}

func (m *Metrics) HistoryDropped() {
	if m == nil {
		return
	}
	m.historyDropped.Inc()
}

// Handler /metrics
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
