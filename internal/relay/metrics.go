package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fourochan"

var (
	connectAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_connect_attempts_total",
			Help:      "Relay connection attempts by result (connected, error, timeout, migrated)",
		},
		[]string{"result"},
	)

	relaysConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relays_connected",
			Help:      "Number of relays currently connected",
		},
	)

	publishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_publishes_total",
			Help:      "Event publishes by result; ok means at least one relay accepted",
		},
		[]string{"result"},
	)

	queryEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_query_events_total",
			Help:      "Distinct events received from relay queries",
		},
	)

	reconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_reconnects_total",
			Help:      "Automatic reconnect cycles started by the connection policy",
		},
	)
)
