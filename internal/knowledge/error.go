package knowledge

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds   = errors.New("cell out of bounds")
	ErrAlreadyProbed = errors.New("cell already probed")
)

/*
InconsistentKnowledgeError reports a broken contract: a sentence whose count
left [0, len(cells)], or a cell claimed to be both safe and a mine. Correct
play never produces one, and nothing derived after it can be trusted.
*/
type InconsistentKnowledgeError struct {
	Reason string
	Cell   *Cell
}

// [InconsistentKnowledgeError] implements [error]
func (e InconsistentKnowledgeError) Error() string {
	if e.Cell != nil {
		return fmt.Sprintf("inconsistent knowledge at %s: %s", e.Cell, e.Reason)
	}
	return "inconsistent knowledge: " + e.Reason
}

func inconsistent(reason string, c *Cell) InconsistentKnowledgeError {
	return InconsistentKnowledgeError{Reason: reason, Cell: c}
}
