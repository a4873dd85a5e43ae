package knowledge

// Move is a cell chosen to be probed next. Guess is set when the cell was not
// proven safe.
type Move struct {
	Cell  Cell
	Guess bool
}

/*
MakeSafeMove returns a cell known to be safe that has not been probed yet.
Knowledge is left untouched; only the random source advances.
*/
func (kb *KnowledgeBase) MakeSafeMove() (Cell, bool) {
	candidates := make(cellSet)
	for c := range kb.safes {
		if !kb.movesMade.has(c) {
			candidates.add(c)
		}
	}
	return kb.choose(candidates)
}

/*
MakeRandomMove returns a cell that has not been probed and is not known to
be a mine, chosen uniformly at random.
*/
func (kb *KnowledgeBase) MakeRandomMove() (Cell, bool) {
	candidates := make(cellSet)
	for row := range kb.height {
		for col := range kb.width {
			c := Cell{row, col}
			if !kb.movesMade.has(c) && !kb.mines.has(c) {
				candidates.add(c)
			}
		}
	}
	return kb.choose(candidates)
}

// NextMove prefers a safe move and falls back to a random one.
func (kb *KnowledgeBase) NextMove() (Move, bool) {
	if c, ok := kb.MakeSafeMove(); ok {
		return Move{Cell: c}, true
	}
	if c, ok := kb.MakeRandomMove(); ok {
		return Move{Cell: c, Guess: true}, true
	}
	return Move{}, false
}

func (kb *KnowledgeBase) choose(candidates cellSet) (Cell, bool) {
	if len(candidates) == 0 {
		return Cell{}, false
	}
	/* Sorted first so that a seeded source replays the same game. */
	sorted := candidates.sorted()
	return sorted[kb.rnd.IntN(len(sorted))], true
}
