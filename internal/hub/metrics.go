package hub

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the hub's prometheus collectors.
type Metrics struct {
	ConnectedClients  prometheus.Gauge
	EventsPublished   *prometheus.CounterVec
	DroppedDeliveries prometheus.Counter
	RejectedJoins     prometheus.Counter
}

// NewMetrics creates and registers the hub collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sharelist_hub_connected_clients",
			Help: "Number of websocket clients currently connected.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sharelist_hub_events_published_total",
			Help: "Events published to rooms, by event name.",
		}, []string{"event"}),
		DroppedDeliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sharelist_hub_dropped_deliveries_total",
			Help: "Event deliveries dropped because a subscriber was too slow.",
		}),
		RejectedJoins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sharelist_hub_rejected_joins_total",
			Help: "Room join requests refused by the visibility check.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.ConnectedClients, m.EventsPublished, m.DroppedDeliveries, m.RejectedJoins)
	}
	return m
}
