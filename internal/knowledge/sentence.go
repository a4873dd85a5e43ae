package knowledge

import (
	"fmt"
	"strings"
)

/*
Sentence is a logical statement about a game: exactly count of the cells are
mines. The count never leaves [0, len(cells)].
*/
type Sentence struct {
	cells cellSet
	count int
}

func NewSentence(cells []Cell, count int) (*Sentence, error) {
	s := &Sentence{cells: newCellSet(cells...), count: count}
	if err := s.check(); err != nil {
		return nil, err
	}
	return s, nil
}

// panics [InconsistentKnowledgeError]
func mustSentence(cells cellSet, count int) *Sentence {
	s := &Sentence{cells: cells, count: count}
	if err := s.check(); err != nil {
		panic(err)
	}
	return s
}

func (s *Sentence) check() error {
	if s.count < 0 || s.count > len(s.cells) {
		return inconsistent(fmt.Sprintf(
			"sentence %s has count outside [0, %d]", s, len(s.cells),
		), nil)
	}
	return nil
}

func (s *Sentence) Count() int { return s.count }

func (s *Sentence) Len() int { return len(s.cells) }

func (s *Sentence) Contains(c Cell) bool { return s.cells.has(c) }

// Cells returns a sorted copy of the cell set.
func (s *Sentence) Cells() []Cell {
	return s.cells.sorted()
}

func (s *Sentence) resolved() bool {
	return len(s.cells) > 0 && (s.count == 0 || s.count == len(s.cells))
}

// KnownMines returns every cell when all of them must be mines, nil otherwise.
func (s *Sentence) KnownMines() []Cell {
	if len(s.cells) > 0 && s.count == len(s.cells) {
		return s.cells.sorted()
	}
	return nil
}

// KnownSafes returns every cell when none of them can be a mine, nil otherwise.
func (s *Sentence) KnownSafes() []Cell {
	if len(s.cells) > 0 && s.count == 0 {
		return s.cells.sorted()
	}
	return nil
}

// panics [InconsistentKnowledgeError]
func (s *Sentence) MarkMine(c Cell) {
	if !s.cells.has(c) {
		return
	}
	delete(s.cells, c)
	s.count--
	if err := s.check(); err != nil {
		panic(inconsistent(err.(InconsistentKnowledgeError).Reason, &c))
	}
}

// panics [InconsistentKnowledgeError]
func (s *Sentence) MarkSafe(c Cell) {
	if !s.cells.has(c) {
		return
	}
	delete(s.cells, c)
	if err := s.check(); err != nil {
		panic(inconsistent(err.(InconsistentKnowledgeError).Reason, &c))
	}
}

func (s *Sentence) Equal(o *Sentence) bool {
	return s.count == o.count && s.cells.equal(o.cells)
}

func (s *Sentence) IsSubsetOf(o *Sentence) bool {
	return s.cells.subsetOf(o.cells)
}

/*
Minus resolves s against a sentence o whose cells contain all of s: the
cells of o that are not in s hold exactly o.count - s.count mines.

panics [InconsistentKnowledgeError]
*/
func (s *Sentence) Minus(o *Sentence) *Sentence {
	cells := make(cellSet, len(o.cells)-len(s.cells))
	for c := range o.cells {
		if !s.cells.has(c) {
			cells.add(c)
		}
	}
	return mustSentence(cells, o.count-s.count)
}

func (s *Sentence) clone() *Sentence {
	return &Sentence{cells: s.cells.clone(), count: s.count}
}

// Sentence implements [fmt.Stringer]
func (s *Sentence) String() string {
	parts := make([]string, 0, len(s.cells))
	for _, c := range s.cells.sorted() {
		parts = append(parts, c.String())
	}
	return fmt.Sprintf("{%s} = %d", strings.Join(parts, ", "), s.count)
}
