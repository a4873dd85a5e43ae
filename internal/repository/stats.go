// aggregate queries
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type Stats struct {
	Width      int     `json:"width" db:"width"`
	Height     int     `json:"height" db:"height"`
	MineCount  int     `json:"mine_count" db:"mine_count"`
	Games      int     `json:"games" db:"games"`
	Wins       int     `json:"wins" db:"wins"`
	Losses     int     `json:"losses" db:"losses"`
	Stalls     int     `json:"stalls" db:"stalls"`
	WinRate    float64 `json:"win_rate" db:"win_rate"`
	AvgMoves   float64 `json:"avg_moves" db:"avg_moves"`
	AvgGuesses float64 `json:"avg_guesses" db:"avg_guesses"`
}

// GetStats aggregates runs per game params, most played first.
func (q *Queries) GetStats(ctx context.Context, filter RunFilter) ([]Stats, error) {
	query := `
	SELECT
		width,
		height,
		mine_count,
		count(*) games,
		count(*) FILTER (WHERE outcome = 'won') wins,
		count(*) FILTER (WHERE outcome = 'lost') losses,
		count(*) FILTER (WHERE outcome = 'stalled') stalls,
		(count(*) FILTER (WHERE outcome = 'won'))::float8 / count(*) win_rate,
		avg(move_count)::float8 avg_moves,
		avg(guesses)::float8 avg_guesses
	FROM autoplay_run
	`

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " WHERE " + whereClause
	}

	query += `
	GROUP BY width, height, mine_count
	ORDER BY games DESC, width, height, mine_count;`

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Stats])
}
