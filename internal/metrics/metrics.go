// Package metrics exposes Prometheus collectors for the frame loop.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vk/animgraph/internal/engine"
)

const namespace = "animgraph"

// Metrics holds the collectors of one engine. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	framesTotal      prometheus.Counter
	frameErrorsTotal prometheus.Counter
	frameDuration    prometheus.Histogram
	activeNodes      prometheus.Gauge
	activeDrivers    prometheus.Gauge
	queueDepth       prometheus.Gauge
	updatesTotal     prometheus.Counter
	commandsTotal    *prometheus.CounterVec
	commandErrors    *prometheus.CounterVec
	animationsEnded  *prometheus.CounterVec
}

// New registers a fresh set of collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		framesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Total number of evaluated frames.",
		}),
		frameErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_errors_total",
			Help:      "Frames aborted by a structural graph error.",
		}),
		frameDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent draining, applying, evaluating and emitting one frame.",
			Buckets:   []float64{0.00005, 0.0001, 0.0005, 0.001, 0.004, 0.008, 0.016, 0.033},
		}),
		activeNodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_nodes",
			Help:      "Nodes in the active subgraph of the last frame.",
		}),
		activeDrivers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_drivers",
			Help:      "Animation drivers still running after the last frame.",
		}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Commands drained at the start of the last frame.",
		}),
		updatesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_updates_total",
			Help:      "View-property updates emitted.",
		}),
		commandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands applied, by name.",
		}, []string{"command"}),
		commandErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_errors_total",
			Help:      "Commands rejected, by name.",
		}, []string{"command"}),
		animationsEnded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "animations_ended_total",
			Help:      "Animations whose completion callback fired, by outcome.",
		}, []string{"finished"}),
	}
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveFrame records a completed frame.
func (m *Metrics) ObserveFrame(stats engine.Stats, drained int, took time.Duration) {
	if m == nil {
		return
	}
	m.framesTotal.Inc()
	m.frameDuration.Observe(took.Seconds())
	m.activeNodes.Set(float64(stats.Active))
	m.activeDrivers.Set(float64(stats.Drivers))
	m.queueDepth.Set(float64(drained))
	m.updatesTotal.Add(float64(stats.Updates))
}

// FrameFailed records a frame aborted by a structural error.
func (m *Metrics) FrameFailed() {
	if m == nil {
		return
	}
	m.frameErrorsTotal.Inc()
}

// CommandApplied records the outcome of one command.
func (m *Metrics) CommandApplied(name string, err error) {
	if m == nil {
		return
	}
	m.commandsTotal.WithLabelValues(name).Inc()
	if err != nil {
		m.commandErrors.WithLabelValues(name).Inc()
	}
}

// AnimationEnded records a fired completion callback.
func (m *Metrics) AnimationEnded(finished bool) {
	if m == nil {
		return
	}
	label := "false"
	if finished {
		label = "true"
	}
	m.animationsEnded.WithLabelValues(label).Inc()
}
