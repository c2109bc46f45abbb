// Package metrics defines the Prometheus instrumentation shared by the
// sonifier components. Counters are registered on the default registry;
// the HTTP server exposes them on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FramesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sonifier_frames_received_total",
		Help: "Inbound frames successfully parsed and delivered.",
	})

	ParseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sonifier_frame_parse_errors_total",
		Help: "Inbound frames dropped because they failed to parse.",
	})

	Reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sonifier_stream_reconnects_total",
		Help: "Reconnect attempts after a transport failure.",
	})

	DeltasApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sonifier_deltas_applied_total",
		Help: "Delta updates merged into the market snapshot.",
	})

	TonesScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sonifier_tones_scheduled_total",
		Help: "Individual tones handed to the audio engine.",
	})

	EventsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sonifier_audio_events_discarded_total",
		Help: "Audio events discarded because playback was stopped or the session was closed.",
	})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sonifier_history_cache_lookups_total",
		Help: "Historical candle cache lookups by tier and result.",
	}, []string{"tier", "result"})

	HistoryFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sonifier_history_fetches_total",
		Help: "Historical candle fetches that went to the upstream REST API.",
	})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
