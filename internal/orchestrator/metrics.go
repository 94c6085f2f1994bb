package orchestrator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors that report pipeline activity.
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	stageResults  *prometheus.CounterVec
	pipelines     *prometheus.CounterVec
	stagesActive  prometheus.Gauge
}

// NewMetrics constructs Metrics and registers them with reg.
// A nil reg leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "nexus",
				Subsystem: "pipeline",
				Name:      "stage_duration_seconds",
				Help:      "Time spent executing one agent stage.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"agent", "status"},
		),
		stageResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nexus",
				Subsystem: "pipeline",
				Name:      "stage_results_total",
				Help:      "Agent stage results by status.",
			},
			[]string{"agent", "status"},
		),
		pipelines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nexus",
				Subsystem: "pipeline",
				Name:      "runs_total",
				Help:      "Pipelines run, by mode.",
			},
			[]string{"mode"},
		),
		stagesActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "nexus",
				Subsystem: "pipeline",
				Name:      "stages_active",
				Help:      "Agent stages currently executing.",
			},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.stageDuration, m.stageResults, m.pipelines, m.stagesActive} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveStage records one finished stage.
func (m *Metrics) ObserveStage(agentName, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(agentName, status).Observe(d.Seconds())
	m.stageResults.WithLabelValues(agentName, status).Inc()
}

// IncPipeline counts one pipeline run in mode.
func (m *Metrics) IncPipeline(mode string) {
	if m == nil {
		return
	}
	m.pipelines.WithLabelValues(mode).Inc()
}

// StageStarted marks a stage as active.
func (m *Metrics) StageStarted() {
	if m == nil {
		return
	}
	m.stagesActive.Inc()
}

// StageFinished marks a stage as no longer active.
func (m *Metrics) StageFinished() {
	if m == nil {
		return
	}
	m.stagesActive.Dec()
}
