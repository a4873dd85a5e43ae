package minesweeper

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-ai/internal/knowledge"
)

var Log = logrus.New()

// Player chooses cells to probe and learns from what they reveal.
// [*knowledge.KnowledgeBase] is the canonical implementation.
type Player interface {
	AddKnowledge(c Cell, count int) error
	NextMove() (knowledge.Move, bool)
	Mines() []Cell
}

type Outcome int8

const (
	Stalled Outcome = iota
	Won
	Lost
)

// Outcome implements [fmt.Stringer]
func (o Outcome) String() string {
	switch o {
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "stalled"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "won":
		*o = Won
	case "lost":
		*o = Lost
	case "stalled":
		*o = Stalled
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}
	return nil
}

// Move is one probe made during a game. Count is the number of neighbouring
// mines revealed, or -1 if the probe hit a mine.
type Move struct {
	Cell  Cell `json:"cell"`
	Guess bool `json:"guess"`
	Count int  `json:"count"`
}

func (m Move) Mine() bool { return m.Count < 0 }

type Result struct {
	GameParams
	Seed       uint64        `json:"seed"`
	Outcome    Outcome       `json:"outcome"`
	Moves      []Move        `json:"moves"`
	SafeMoves  int           `json:"safe_moves"`
	Guesses    int           `json:"guesses"`
	MinesFound int           `json:"mines_found"`
	Mines      []Cell        `json:"mines"`
	Duration   time.Duration `json:"duration"`
}

// OnMove is called after every probe, before the player is told the count.
type OnMove func(Move)

/*
Play lets p play the game laid out on b until it wins, hits a mine or runs
out of moves. The game is won when every safe cell has been probed or when
the player has identified every mine.

ctx is checked between moves. An error from the player aborts the game and
is returned along with the partial result.
*/
func Play(ctx context.Context, b *Board, p Player, onMove OnMove) (*Result, error) {
	start := time.Now()
	res := &Result{
		GameParams: b.GameParams,
		Mines:      b.Mines(),
	}
	defer func() {
		res.MinesFound = len(p.Mines())
		res.Duration = time.Since(start)
	}()

	log := Log.WithField("params", b.GameParams.String())
	safeCells := b.Cells() - b.MineCount
	revealed := 0

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if revealed == safeCells || b.Found(p.Mines()) {
			res.Outcome = Won
			break
		}

		next, ok := p.NextMove()
		if !ok {
			res.Outcome = Stalled
			break
		}

		m := Move{Cell: next.Cell, Guess: next.Guess, Count: -1}
		if !b.IsMine(next.Cell) {
			m.Count = b.NearbyMines(next.Cell)
		}
		res.Moves = append(res.Moves, m)
		if m.Guess {
			res.Guesses++
		} else {
			res.SafeMoves++
		}
		if onMove != nil {
			onMove(m)
		}

		if m.Mine() {
			log.WithFields(logrus.Fields{
				"cell": m.Cell, "guess": m.Guess,
			}).Debug("hit a mine")
			res.Outcome = Lost
			break
		}

		log.WithFields(logrus.Fields{
			"cell": m.Cell, "guess": m.Guess, "count": m.Count,
		}).Debug("probed")

		if err := p.AddKnowledge(m.Cell, m.Count); err != nil {
			return res, fmt.Errorf("player rejected %s = %d: %w", m.Cell, m.Count, err)
		}
		revealed++
	}

	log.WithFields(logrus.Fields{
		"outcome": res.Outcome,
		"moves":   len(res.Moves),
		"guesses": res.Guesses,
	}).Debug("game over")

	return res, nil
}

// NewRand returns the source used for both the layout and the player of a
// seeded game.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

/*
Autoplay generates a board from seed and lets a fresh knowledge base play
it. The same params and seed always replay the same game.
*/
func Autoplay(ctx context.Context, params GameParams, seed uint64, onMove OnMove) (*Result, error) {
	r := NewRand(seed)
	b, err := NewBoard(params, r)
	if err != nil {
		return nil, err
	}
	kb := knowledge.New(params.Height, params.Width, r)
	res, err := Play(ctx, b, kb, onMove)
	if res != nil {
		res.Seed = seed
	}
	return res, err
}
