package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ConnectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signaling_connections_total",
		Help: "Websocket connections accepted since start.",
	})

	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signaling_active_connections",
		Help: "Currently open websocket connections.",
	})

	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signaling_active_rooms",
		Help: "Rooms with at least one member.",
	})

	FramesRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signaling_frames_relayed_total",
		Help: "Frames forwarded between peers.",
	})

	FramesDiscarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signaling_frames_discarded_total",
		Help: "Inbound frames dropped without effect.",
	}, []string{"reason"})

	SendDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signaling_send_drops_total",
		Help: "Outbound frames skipped because the peer socket was closed or backlogged.",
	})

	LivenessTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signaling_liveness_timeouts_total",
		Help: "Connections force-closed after missing two liveness probes.",
	})
)

// Handler returns an http.Handler for Prometheus scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
