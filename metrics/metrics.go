package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"oscreplay/player"
)

// PlaybackMetrics exports player events as Prometheus series.
type PlaybackMetrics struct {
	sent       prometheus.Counter
	sendErrors prometheus.Counter
	traversals prometheus.Counter
	playing    prometheus.Gauge
	position   prometheus.Gauge
	drift      prometheus.Histogram
	wait       prometheus.Histogram
}

func NewPlaybackMetrics(reg prometheus.Registerer) *PlaybackMetrics {
	m := &PlaybackMetrics{
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oscreplay_messages_sent_total",
			Help: "Messages handed to the transport without error.",
		}),
		sendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oscreplay_send_errors_total",
			Help: "Messages the transport failed to send.",
		}),
		traversals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oscreplay_traversals_total",
			Help: "Loop restarts back to the start of the buffer.",
		}),
		playing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "oscreplay_playing",
			Help: "1 while a playback cycle is running.",
		}),
		position: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "oscreplay_position",
			Help: "Index of the next message to send.",
		}),
		drift: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "oscreplay_drift_milliseconds",
			Help:    "Wall clock lead over the recording when a message was due.",
			Buckets: []float64{-100, -10, -1, 0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
		wait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "oscreplay_wait_seconds",
			Help:    "Corrected wait before each send.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}
	reg.MustRegister(m.sent, m.sendErrors, m.traversals, m.playing, m.position, m.drift, m.wait)
	return m
}

func (m *PlaybackMetrics) PlaybackStarted(string, int) {
	m.playing.Set(1)
	m.position.Set(0)
}

func (m *PlaybackMetrics) MessageSent(ev player.SendEvent) {
	m.sent.Inc()
	m.observe(ev)
}

func (m *PlaybackMetrics) SendFailed(ev player.SendEvent, _ error) {
	m.sendErrors.Inc()
	m.observe(ev)
}

func (m *PlaybackMetrics) observe(ev player.SendEvent) {
	m.position.Set(float64(ev.Index + 1))
	m.drift.Observe(float64(ev.Drift.Milliseconds()))
	m.wait.Observe(ev.Wait.Seconds())
}

func (m *PlaybackMetrics) TraversalRestarted(string, int) {
	m.traversals.Inc()
	m.position.Set(0)
}

func (m *PlaybackMetrics) PlaybackStopped(_ string, st player.Status) {
	m.playing.Set(0)
	m.position.Set(float64(st.Position))
}
