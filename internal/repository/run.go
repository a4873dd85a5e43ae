package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/minesweeper-ai/internal/minesweeper"
)

// ErrDuplicateRun is returned when a run with the same seed and params is
// already stored.
var ErrDuplicateRun = errors.New("run already recorded")

type Run struct {
	RunId      pgtype.UUID        `db:"run_id"`
	Seed       int64              `db:"seed"`
	Width      int                `db:"width"`
	Height     int                `db:"height"`
	MineCount  int                `db:"mine_count"`
	Outcome    string             `db:"outcome"`
	Moves      []minesweeper.Move `db:"moves"`
	MoveCount  int                `db:"move_count"`
	SafeMoves  int                `db:"safe_moves"`
	Guesses    int                `db:"guesses"`
	MinesFound int                `db:"mines_found"`
	DurationUs int64              `db:"duration_us"`
	Operator   *string            `db:"operator"`
	CreatedAt  pgtype.Timestamptz `db:"created_at"`
}

func (r *Run) ID() uuid.UUID {
	return uuid.UUID(r.RunId.Bytes)
}

func (r *Run) GameParams() minesweeper.GameParams {
	return minesweeper.GameParams{
		Width: r.Width, Height: r.Height, MineCount: r.MineCount,
	}
}

// Result restores the game result. The mine layout is not stored.
func (r *Run) Result() (*minesweeper.Result, error) {
	var outcome minesweeper.Outcome
	if err := outcome.UnmarshalText([]byte(r.Outcome)); err != nil {
		return nil, err
	}
	return &minesweeper.Result{
		GameParams: r.GameParams(),
		Seed:       uint64(r.Seed),
		Outcome:    outcome,
		Moves:      r.Moves,
		SafeMoves:  r.SafeMoves,
		Guesses:    r.Guesses,
		MinesFound: r.MinesFound,
		Duration:   time.Duration(r.DurationUs) * time.Microsecond,
	}, nil
}

func (q *Queries) CreateRun(
	ctx context.Context, res *minesweeper.Result, operator *string,
) (*Run, error) {
	moves, err := json.Marshal(res.Moves)
	if err != nil {
		return nil, err
	}

	args := pgx.NamedArgs{
		"run_id":      pgtype.UUID{Bytes: uuid.New(), Valid: true},
		"seed":        int64(res.Seed),
		"width":       res.Width,
		"height":      res.Height,
		"mine_count":  res.MineCount,
		"outcome":     res.Outcome.String(),
		"moves":       moves,
		"move_count":  len(res.Moves),
		"safe_moves":  res.SafeMoves,
		"guesses":     res.Guesses,
		"mines_found": res.MinesFound,
		"duration_us": res.Duration.Microseconds(),
		"operator":    operator,
	}

	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO autoplay_run (
			run_id, seed, width, height, mine_count, outcome, moves,
			move_count, safe_moves, guesses, mines_found, duration_us, operator
		)
		VALUES (
			@run_id, @seed, @width, @height, @mine_count, @outcome, @moves,
			@move_count, @safe_moves, @guesses, @mines_found, @duration_us, @operator
		)
		RETURNING *;`,
		args,
	)
	run, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Run])

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return nil, fmt.Errorf("%w: seed %d on %s", ErrDuplicateRun, res.Seed, res.GameParams)
	}
	return run, err
}

func (q *Queries) FetchRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM autoplay_run WHERE run_id = $1",
		pgtype.UUID{Bytes: id, Valid: true},
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Run])
}

func (q *Queries) FetchRunBySeed(
	ctx context.Context, params minesweeper.GameParams, seed uint64,
) (*Run, error) {
	rows, _ := q.db.Query(
		ctx,
		`SELECT * FROM autoplay_run
		WHERE seed = @seed
			AND width = @width
			AND height = @height
			AND mine_count = @mine_count`,
		pgx.NamedArgs{
			"seed":       int64(seed),
			"width":      params.Width,
			"height":     params.Height,
			"mine_count": params.MineCount,
		},
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Run])
}

type RunFilter struct {
	GameParams *minesweeper.GameParams
	Outcome    *minesweeper.Outcome
	Operator   *string
}

func (f RunFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.GameParams != nil {
		clauses = append(
			clauses,
			"width = @width",
			"height = @height",
			"mine_count = @mine_count",
		)
		args["width"] = f.GameParams.Width
		args["height"] = f.GameParams.Height
		args["mine_count"] = f.GameParams.MineCount
	}
	if f.Outcome != nil {
		clauses = append(clauses, "outcome = @outcome")
		args["outcome"] = f.Outcome.String()
	}
	if f.Operator != nil {
		clauses = append(clauses, "operator = @operator")
		args["operator"] = *f.Operator
	}
	return strings.Join(clauses, " AND "), args
}

// ListRuns returns the newest runs first.
func (q *Queries) ListRuns(
	ctx context.Context, filter RunFilter, limit, offset int,
) ([]Run, error) {
	query := "SELECT * FROM autoplay_run"

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " WHERE " + whereClause
	}
	query += " ORDER BY created_at DESC, run_id LIMIT @limit OFFSET @offset;"
	args["limit"] = limit
	args["offset"] = offset

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Run])
}
