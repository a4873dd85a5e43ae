package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vancomm/minesweeper-ai/internal/minesweeper"
)

const namespace = "sweeper"

type Metrics struct {
	reg *prometheus.Registry

	games        *prometheus.CounterVec
	moves        *prometheus.CounterVec
	gameMoves    prometheus.Histogram
	gameDuration prometheus.Histogram
	ticTacToe    *prometheus.CounterVec
}

// New registers the collectors on a fresh registry, together with the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		games: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "minesweeper",
			Name:      "games_total",
			Help:      "Autoplay games by params and outcome",
		}, []string{"params", "outcome"}),
		moves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "minesweeper",
			Name:      "moves_total",
			Help:      "Probes made by the knowledge base, proven safe or guessed",
		}, []string{"kind"}),
		gameMoves: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "minesweeper",
			Name:      "game_moves",
			Help:      "Probes per game",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		gameDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "minesweeper",
			Name:      "game_duration_seconds",
			Help:      "Time spent playing one game",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		ticTacToe: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tictactoe",
			Name:      "queries_total",
			Help:      "Best move queries by status",
		}, []string{"status"}),
	}
}

func (m *Metrics) ObserveResult(res *minesweeper.Result) {
	m.games.WithLabelValues(res.GameParams.String(), res.Outcome.String()).Inc()
	m.moves.WithLabelValues("safe").Add(float64(res.SafeMoves))
	m.moves.WithLabelValues("guess").Add(float64(res.Guesses))
	m.gameMoves.Observe(float64(len(res.Moves)))
	m.gameDuration.Observe(res.Duration.Seconds())
}

// ObserveTicTacToe counts a best move query; status is "ok", "terminal"
// or "invalid".
func (m *Metrics) ObserveTicTacToe(status string) {
	m.ticTacToe.WithLabelValues(status).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
