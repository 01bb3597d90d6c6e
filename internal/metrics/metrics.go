package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "othello_active_rooms",
		Help: "Number of rooms currently held in the registry.",
	})

	MovesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "othello_moves_total",
		Help: "Number of legal moves applied, human and AI.",
	})

	AIMovesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "othello_ai_moves_total",
		Help: "Number of moves played by the AI seat.",
	})

	GamesFinished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "othello_games_finished_total",
		Help: "Number of matches that reached the finished state.",
	})

	ChatMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "othello_chat_messages_total",
		Help: "Number of chat messages accepted.",
	})
)
