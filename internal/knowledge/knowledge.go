package knowledge

import (
	"errors"
	"fmt"
	"hash/maphash"
	"math/rand/v2"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

type mark struct {
	cell Cell
	mine bool
}

/*
KnowledgeBase is a Minesweeper player. It keeps the cells it has probed, the
cells proven safe or mined, and a list of sentences that are known to be true
about the rest of the board.

A KnowledgeBase lives for a single game and is not safe for concurrent use.
*/
type KnowledgeBase struct {
	height, width int

	movesMade cellSet
	safes     cellSet
	mines     cellSet
	sentences []*Sentence

	pending deque.Deque[mark]
	rnd     *rand.Rand
	stats   InferenceStats
	err     error
}

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

// New returns an empty knowledge base for a height x width board. A nil rnd
// is replaced with a randomly seeded source.
func New(height, width int, rnd *rand.Rand) *KnowledgeBase {
	if rnd == nil {
		rnd = createRand()
	}
	return &KnowledgeBase{
		height:    height,
		width:     width,
		movesMade: make(cellSet),
		safes:     make(cellSet),
		mines:     make(cellSet),
		rnd:       rnd,
	}
}

func (kb *KnowledgeBase) Height() int { return kb.height }

func (kb *KnowledgeBase) Width() int { return kb.width }

// Err returns the error that poisoned the knowledge base, if any.
func (kb *KnowledgeBase) Err() error { return kb.err }

func (kb *KnowledgeBase) Safes() []Cell { return kb.safes.sorted() }

func (kb *KnowledgeBase) Mines() []Cell { return kb.mines.sorted() }

func (kb *KnowledgeBase) MovesMade() []Cell { return kb.movesMade.sorted() }

func (kb *KnowledgeBase) IsSafe(c Cell) bool { return kb.safes.has(c) }

func (kb *KnowledgeBase) IsMine(c Cell) bool { return kb.mines.has(c) }

func (kb *KnowledgeBase) Probed(c Cell) bool { return kb.movesMade.has(c) }

// Sentences returns copies of the active sentences.
func (kb *KnowledgeBase) Sentences() []*Sentence {
	ret := make([]*Sentence, len(kb.sentences))
	for i, s := range kb.sentences {
		ret[i] = s.clone()
	}
	return ret
}

// LastStats describes the inference run of the latest AddKnowledge call.
func (kb *KnowledgeBase) LastStats() InferenceStats { return kb.stats }

/*
MarkMine records c as a mine and removes it from every sentence, lowering
their counts.

panics [InconsistentKnowledgeError]
*/
func (kb *KnowledgeBase) MarkMine(c Cell) {
	if kb.safes.has(c) {
		panic(inconsistent("known safe cell marked as a mine", &c))
	}
	kb.mines.add(c)
	for _, s := range kb.sentences {
		s.MarkMine(c)
	}
}

/*
MarkSafe records c as safe and removes it from every sentence.

panics [InconsistentKnowledgeError]
*/
func (kb *KnowledgeBase) MarkSafe(c Cell) {
	if kb.mines.has(c) {
		panic(inconsistent("known mine marked as safe", &c))
	}
	kb.safes.add(c)
	for _, s := range kb.sentences {
		s.MarkSafe(c)
	}
}

/*
AddKnowledge is called when the board reports, for a freshly probed safe
cell, how many of its neighbours are mines. It records the move, adds a
sentence about the neighbourhood and runs inference until nothing new can be
concluded.

A broken precondition (wrong count, cell known to be a mine, a contradiction
found during inference) poisons the knowledge base: the error is returned
now and by every later call.
*/
func (kb *KnowledgeBase) AddKnowledge(c Cell, count int) (err error) {
	if kb.err != nil {
		return kb.err
	}
	if !c.InBounds(kb.height, kb.width) {
		return fmt.Errorf("%w: %s on %dx%d board", ErrOutOfBounds, c, kb.height, kb.width)
	}
	if kb.movesMade.has(c) {
		return fmt.Errorf("%w: %s", ErrAlreadyProbed, c)
	}

	defer func() {
		if r := recover(); r != nil {
			var ike InconsistentKnowledgeError
			if e, ok := r.(error); ok && errors.As(e, &ike) {
				Log.WithFields(logrus.Fields{
					"cell": c, "count": count, "reason": ike.Reason,
				}).Error("knowledge base is inconsistent")
				kb.err, err = ike, ike
				return
			}
			panic(r)
		}
	}()

	neighbors := Neighbors(c, kb.height, kb.width)
	if count < 0 || count > len(neighbors) {
		panic(inconsistent(fmt.Sprintf(
			"neighbour count %d outside [0, %d]", count, len(neighbors),
		), &c))
	}

	kb.stats = InferenceStats{}
	kb.movesMade.add(c)
	kb.MarkSafe(c)

	cells := make(cellSet, len(neighbors))
	mines := count
	for _, n := range neighbors {
		switch {
		case kb.mines.has(n):
			mines--
		case kb.safes.has(n):
			/* known, contributes nothing */
		default:
			cells.add(n)
		}
	}

	s := mustSentence(cells, mines)
	kb.addSentence(s)
	kb.infer()

	Log.WithFields(logrus.Fields{
		"cell":      c,
		"count":     count,
		"sentences": len(kb.sentences),
		"safes":     len(kb.safes),
		"mines":     len(kb.mines),
		"passes":    kb.stats.Passes,
		"derived":   kb.stats.Derived,
	}).Debug("knowledge added")

	return nil
}

func (kb *KnowledgeBase) known(c Cell) bool {
	return kb.safes.has(c) || kb.mines.has(c)
}

func (kb *KnowledgeBase) contains(s *Sentence) bool {
	for _, t := range kb.sentences {
		if t.Equal(s) {
			return true
		}
	}
	return false
}

/*
addSentence first drops already known cells from s. It then queues marks for
every cell of a resolved sentence, or appends an unresolved one unless an
equal sentence is already known. Returns whether the knowledge base learned
anything.

panics [InconsistentKnowledgeError]
*/
func (kb *KnowledgeBase) addSentence(s *Sentence) bool {
	for _, c := range s.Cells() {
		if kb.mines.has(c) {
			s.MarkMine(c)
		} else if kb.safes.has(c) {
			s.MarkSafe(c)
		}
	}
	if s.Len() == 0 {
		return false
	}
	if s.resolved() {
		return kb.queue(s)
	}
	if kb.contains(s) {
		return false
	}
	kb.sentences = append(kb.sentences, s)
	kb.stats.Derived++
	Log.WithField("sentence", s).Debug("sentence added")
	return true
}

// queue schedules the cells of a resolved sentence to be marked.
func (kb *KnowledgeBase) queue(s *Sentence) (queued bool) {
	mine := s.count != 0
	for _, c := range s.cells.sorted() {
		if kb.known(c) {
			continue
		}
		kb.pending.PushBack(mark{cell: c, mine: mine})
		queued = true
	}
	return
}

// panics [InconsistentKnowledgeError]
func (kb *KnowledgeBase) drain() {
	for kb.pending.Len() > 0 {
		m := kb.pending.PopFront()
		if m.mine {
			if kb.mines.has(m.cell) {
				continue
			}
			kb.MarkMine(m.cell)
		} else {
			if kb.safes.has(m.cell) {
				continue
			}
			kb.MarkSafe(m.cell)
		}
		kb.stats.Marked++
		Log.WithFields(logrus.Fields{
			"cell": m.cell, "mine": m.mine,
		}).Debug("cell deduced")
	}
}
