package minesweeper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidParams = errors.New("invalid game params")

var validate = validator.New(validator.WithRequiredStructEnabled())

type GameParams struct {
	Width     int `json:"width" schema:"width" yaml:"width" validate:"min=1,max=64"`
	Height    int `json:"height" schema:"height" yaml:"height" validate:"min=1,max=64"`
	MineCount int `json:"mine_count" schema:"mine_count" yaml:"mine_count" validate:"min=0"`
}

var (
	Beginner     = GameParams{Width: 8, Height: 8, MineCount: 8}
	Intermediate = GameParams{Width: 16, Height: 16, MineCount: 40}
	Expert       = GameParams{Width: 30, Height: 16, MineCount: 99}
)

func (p GameParams) Cells() int {
	return p.Width * p.Height
}

func (p GameParams) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", e.Field(), e.Tag(), e.Param()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidParams, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if p.MineCount >= p.Cells() {
		return fmt.Errorf(
			"%w: %d mines do not fit on a %dx%d board",
			ErrInvalidParams, p.MineCount, p.Width, p.Height,
		)
	}
	return nil
}

// String renders the params as "WxH(mines)".
func (p GameParams) String() string {
	return fmt.Sprintf("%dx%d(%d)", p.Width, p.Height, p.MineCount)
}

func ParseGameParams(s string) (GameParams, error) {
	var p GameParams
	n, err := fmt.Sscanf(s, "%dx%d(%d)", &p.Width, &p.Height, &p.MineCount)
	if n != 3 || err != nil {
		return GameParams{}, fmt.Errorf("%w: cannot parse %q", ErrInvalidParams, s)
	}
	return p, p.Validate()
}
