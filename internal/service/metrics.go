package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lobbiesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guesswho_lobbies_created_total",
		Help: "Всего создано лобби",
	})
	gamesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guesswho_games_started_total",
		Help: "Всего запущено матчей",
	})
	gamesFinished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guesswho_games_finished_total",
		Help: "Всего завершено матчей (включая форфейты)",
	})
)
