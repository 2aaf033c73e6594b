package ws

import "github.com/prometheus/client_golang/prometheus"

var (
	RoomsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bananas_rooms_active",
			Help: "Rooms with a running actor",
		},
	)
	ConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bananas_ws_connections_active",
			Help: "Open websocket connections",
		},
	)
	Actions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bananas_actions_total",
			Help: "In-game actions by type and result (ok, rejected, ignored)",
		},
		[]string{"action", "result"},
	)
	SessionsResumed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bananas_sessions_resumed_total",
			Help: "Rejoins that resumed a session in its grace period",
		},
	)
	GraceExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bananas_grace_expired_total",
			Help: "Sessions purged after their grace period ran out",
		},
	)
	MessagesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bananas_ws_messages_dropped_total",
			Help: "Outbound messages dropped because a client buffer was full",
		},
	)
	GamesFinished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bananas_games_finished_total",
			Help: "Games that ended with a winner",
		},
	)
)

func init() {
	prometheus.MustRegister(RoomsActive, ConnectionsActive, Actions,
		SessionsResumed, GraceExpired, MessagesDropped, GamesFinished)
}
