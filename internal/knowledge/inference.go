package knowledge

// InferenceStats counts the work done by one inference run.
type InferenceStats struct {
	Passes  int // full passes over the sentence list
	Derived int // sentences appended
	Marked  int // cells newly marked safe or mined
}

/*
infer runs the resolution rules until a full pass teaches us nothing:

  - queued marks are applied, which shrinks every sentence they touch;
  - empty and duplicated sentences are dropped;
  - a sentence with no mines, or only mines, marks all its cells and goes;
  - for sentences A and B with A's cells a proper subset of B's, the cells
    in B but not A hold B.count - A.count mines.

Every derived sentence is strictly smaller than its source and marks only
grow, so this terminates.

panics [InconsistentKnowledgeError]
*/
func (kb *KnowledgeBase) infer() {
	for {
		kb.stats.Passes++

		kb.drain()
		kb.prune()

		if kb.resolveKnown() {
			continue
		}
		if kb.resolveSubsets() {
			continue
		}

		/* Nothing queued and nothing derived: fixpoint reached. */
		if kb.pending.Len() == 0 {
			return
		}
	}
}

// prune drops sentences emptied by marks and sentences that became equal to
// an earlier one.
func (kb *KnowledgeBase) prune() {
	kept := kb.sentences[:0]
	for _, s := range kb.sentences {
		if s.Len() == 0 {
			continue
		}
		dup := false
		for _, t := range kept {
			if t.Equal(s) {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, s)
		}
	}
	clear(kb.sentences[len(kept):])
	kb.sentences = kept
}

// resolveKnown removes every resolved sentence, queueing its cells.
func (kb *KnowledgeBase) resolveKnown() (changed bool) {
	kept := kb.sentences[:0]
	for _, s := range kb.sentences {
		if s.resolved() {
			if kb.queue(s) {
				changed = true
			}
			continue
		}
		kept = append(kept, s)
	}
	clear(kb.sentences[len(kept):])
	kb.sentences = kept
	return
}

/*
resolveSubsets derives a new sentence from every ordered pair (A, B) with
A's cells a proper subset of B's. Resolved derivations are only queued here;
sentences are not mutated until the next drain, so the scan is stable.
Sentences appended during the scan are paired on the next pass.
*/
func (kb *KnowledgeBase) resolveSubsets() (changed bool) {
	n := len(kb.sentences)
	for i := range n {
		a := kb.sentences[i]
		for j := range n {
			b := kb.sentences[j]
			if i == j || a.Len() >= b.Len() || !a.IsSubsetOf(b) {
				continue
			}
			if kb.addSentence(a.Minus(b)) {
				changed = true
			}
		}
	}
	return
}
