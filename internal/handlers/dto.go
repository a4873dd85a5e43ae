package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/vancomm/minesweeper-ai/internal/minesweeper"
	"github.com/vancomm/minesweeper-ai/internal/repository"
)

var (
	decoder  = newDecoder()
	validate = validator.New(validator.WithRequiredStructEnabled())
)

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

func decodeQuery(dst any, src url.Values) error {
	if err := decoder.Decode(dst, src); err != nil {
		return err
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", e.Field(), e.Tag()))
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return nil
}

type PlayRunDTO struct {
	Width     int     `schema:"width,required"`
	Height    int     `schema:"height,required"`
	MineCount int     `schema:"mine_count,required"`
	Seed      *uint64 `schema:"seed"`
}

func ParsePlayRunDTO(src url.Values) (PlayRunDTO, error) {
	var dto PlayRunDTO
	if err := decodeQuery(&dto, src); err != nil {
		return dto, err
	}
	return dto, dto.GameParams().Validate()
}

func (dto PlayRunDTO) GameParams() minesweeper.GameParams {
	return minesweeper.GameParams{
		Width: dto.Width, Height: dto.Height, MineCount: dto.MineCount,
	}
}

type RunFilterDTO struct {
	Width     *int   `schema:"width"`
	Height    *int   `schema:"height"`
	MineCount *int   `schema:"mine_count"`
	Outcome   string `schema:"outcome" validate:"omitempty,oneof=won lost stalled"`
	Operator  string `schema:"operator"`
	Limit     int    `schema:"limit" validate:"min=0,max=100"`
	Offset    int    `schema:"offset" validate:"min=0"`
}

func ParseRunFilterDTO(src url.Values) (RunFilterDTO, error) {
	dto := RunFilterDTO{Limit: 20}
	err := decodeQuery(&dto, src)
	return dto, err
}

func (dto RunFilterDTO) Filter() (repository.RunFilter, error) {
	var f repository.RunFilter

	switch {
	case dto.Width != nil && dto.Height != nil && dto.MineCount != nil:
		f.GameParams = &minesweeper.GameParams{
			Width: *dto.Width, Height: *dto.Height, MineCount: *dto.MineCount,
		}
	case dto.Width != nil || dto.Height != nil || dto.MineCount != nil:
		return f, fmt.Errorf("width, height and mine_count must be given together")
	}

	if dto.Outcome != "" {
		var o minesweeper.Outcome
		if err := o.UnmarshalText([]byte(dto.Outcome)); err != nil {
			return f, err
		}
		f.Outcome = &o
	}
	if dto.Operator != "" {
		f.Operator = &dto.Operator
	}
	return f, nil
}

type ResultDTO struct {
	Seed       uint64              `json:"seed,string"`
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	MineCount  int                 `json:"mine_count"`
	Outcome    minesweeper.Outcome `json:"outcome"`
	MoveCount  int                 `json:"move_count"`
	SafeMoves  int                 `json:"safe_moves"`
	Guesses    int                 `json:"guesses"`
	MinesFound int                 `json:"mines_found"`
	DurationMs float64             `json:"duration_ms"`
	Moves      []minesweeper.Move  `json:"moves,omitempty"`
	Mines      []minesweeper.Cell  `json:"mines,omitempty"`
}

func NewResultDTO(res *minesweeper.Result, withMoves bool) ResultDTO {
	dto := ResultDTO{
		Seed:       res.Seed,
		Width:      res.Width,
		Height:     res.Height,
		MineCount:  res.MineCount,
		Outcome:    res.Outcome,
		MoveCount:  len(res.Moves),
		SafeMoves:  res.SafeMoves,
		Guesses:    res.Guesses,
		MinesFound: res.MinesFound,
		DurationMs: float64(res.Duration.Microseconds()) / 1000,
		Mines:      res.Mines,
	}
	if withMoves {
		dto.Moves = res.Moves
	}
	return dto
}

type RunDTO struct {
	RunId     string  `json:"run_id"`
	Operator  *string `json:"operator,omitempty"`
	CreatedAt int64   `json:"created_at"`
	ResultDTO
}

func NewRunDTO(run *repository.Run, withMoves bool) (*RunDTO, error) {
	res, err := run.Result()
	if err != nil {
		return nil, err
	}
	return &RunDTO{
		RunId:     run.ID().String(),
		Operator:  run.Operator,
		CreatedAt: run.CreatedAt.Time.UnixMilli(),
		ResultDTO: NewResultDTO(res, withMoves),
	}, nil
}
