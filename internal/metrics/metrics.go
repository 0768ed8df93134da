// Package metrics exposes prometheus instruments for the coordinator and
// the websocket endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gridrush_rooms_created_total",
		Help: "Rooms created since startup.",
	})

	GamesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gridrush_games_started_total",
		Help: "Rounds transitioned to playing.",
	})

	GamesEnded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gridrush_games_ended_total",
		Help: "Rounds reaching a terminal result.",
	})

	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gridrush_active_rooms",
		Help: "Rooms currently in the registry.",
	})

	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gridrush_active_connections",
		Help: "Open websocket connections.",
	})

	LockTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gridrush_lock_timeouts_total",
		Help: "Room lock acquisitions that timed out.",
	})
)
