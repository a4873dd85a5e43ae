package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vancomm/minesweeper-ai/internal/metrics"
	"github.com/vancomm/minesweeper-ai/internal/tictactoe"
)

const maxBestMoveBody = 1 << 10

type TicTacToeHandler struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewTicTacToeHandler(logger *slog.Logger, metrics *metrics.Metrics) *TicTacToeHandler {
	return &TicTacToeHandler{logger: logger, metrics: metrics}
}

type BestMoveRequest struct {
	Board string `json:"board"`
}

type BestMoveDTO struct {
	Board    string            `json:"board"`
	Player   string            `json:"player"`
	Action   *tictactoe.Action `json:"action"`
	Value    int               `json:"value"`
	Terminal bool              `json:"terminal"`
	Winner   *string           `json:"winner"`
}

func NewBestMoveDTO(b tictactoe.Board) BestMoveDTO {
	a, value, ok := tictactoe.Evaluate(b)
	dto := BestMoveDTO{
		Board:    b.String(),
		Player:   tictactoe.CurrentPlayer(b).String(),
		Value:    value,
		Terminal: !ok,
	}
	if ok {
		dto.Action = &a
	}
	if winner := tictactoe.Winner(b); winner != tictactoe.Empty {
		s := winner.String()
		dto.Winner = &s
	}
	return dto
}

// BestMove answers with the optimal action for the player to move.
func (h *TicTacToeHandler) BestMove(w http.ResponseWriter, r *http.Request) {
	var req BestMoveRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBestMoveBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.metrics.ObserveTicTacToe("invalid")
		sendErrorOrLog(w, h.logger, http.StatusBadRequest, fmt.Errorf("malformed request: %w", err))
		return
	}

	b, err := tictactoe.ParseBoard(req.Board)
	if err != nil {
		h.metrics.ObserveTicTacToe("invalid")
		sendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}

	dto := NewBestMoveDTO(b)
	if dto.Terminal {
		h.metrics.ObserveTicTacToe("terminal")
	} else {
		h.metrics.ObserveTicTacToe("ok")
	}
	sendJSONOrLog(w, h.logger, http.StatusOK, dto)
}
