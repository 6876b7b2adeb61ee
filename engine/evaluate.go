package engine

// TriadType distinguishes the two completion rules.
type TriadType uint8

const (
	// TriadKind is three cards sharing one kind.
	TriadKind TriadType = iota
	// TriadGroup is three cards of distinct kinds within one group.
	TriadGroup
)

// Triad is one completed set of three cards, referenced by index into the
// evaluated hand.
type Triad struct {
	Indices [3]int    `json:"indices"`
	Type    TriadType `json:"type"`
}

// Evaluation is the result of packing a hand into disjoint triads.
type Evaluation struct {
	// Completed is aligned with the evaluated hand: Completed[i] is true
	// when hand[i] belongs to a triad of the chosen packing.
	Completed []bool `json:"completed"`
	// Triads is the chosen packing, in discovery order.
	Triads []Triad `json:"triads"`
}

// CompletedCount returns the number of completed cards (3 per triad).
func (e Evaluation) CompletedCount() int { return 3 * len(e.Triads) }

// Evaluate finds the decomposition of hand into disjoint triads that
// maximizes the completed-card count. A greedy same-kind-first pass can
// under-count (two kind-pairs plus group fillers may pack better as two
// group triads), so the search is exhaustive over candidate triples; hands
// never exceed 9 cards, which caps the candidate set at C(9,3) = 84.
//
// Ties are broken deterministically: more triads first, then the packing
// with more same-kind triads (they score higher), then the first packing
// found scanning candidate triples in lexicographic order over the
// (kind, instance)-sorted hand. A fixed hand therefore always evaluates to
// the same packing regardless of draw order.
//
// The hand is evaluated as given; callers keep hands sorted (see sortHand)
// so index-based tie-breaking is stable.
func Evaluate(hand []Card) Evaluation {
	n := len(hand)
	eval := Evaluation{Completed: make([]bool, n)}
	if n < 3 {
		return eval
	}

	candidates := candidateTriads(hand)
	if len(candidates) == 0 {
		return eval
	}

	var (
		best     []Triad
		bestKind = -1
		current  []Triad
		used     = make([]bool, n)
	)

	var search func(from int)
	search = func(from int) {
		// Record current if it beats the best packing so far.
		if better(current, best, bestKind) {
			best = append(best[:0:0], current...)
			bestKind = countKindTriads(best)
		}
		for i := from; i < len(candidates); i++ {
			t := candidates[i]
			if used[t.Indices[0]] || used[t.Indices[1]] || used[t.Indices[2]] {
				continue
			}
			used[t.Indices[0]], used[t.Indices[1]], used[t.Indices[2]] = true, true, true
			current = append(current, t)
			search(i + 1)
			current = current[:len(current)-1]
			used[t.Indices[0]], used[t.Indices[1]], used[t.Indices[2]] = false, false, false
		}
	}
	search(0)

	eval.Triads = best
	for _, t := range best {
		for _, idx := range t.Indices {
			eval.Completed[idx] = true
		}
	}
	return eval
}

// better reports whether candidate beats best under the tie-break order:
// triad count, then same-kind triad count, then keep the earlier packing.
func better(candidate, best []Triad, bestKind int) bool {
	if len(candidate) != len(best) {
		return len(candidate) > len(best)
	}
	return countKindTriads(candidate) > bestKind
}

func countKindTriads(ts []Triad) int {
	n := 0
	for _, t := range ts {
		if t.Type == TriadKind {
			n++
		}
	}
	return n
}

// candidateTriads enumerates every index triple of hand that satisfies one
// of the completion rules, in lexicographic index order.
func candidateTriads(hand []Card) []Triad {
	var out []Triad
	n := len(hand)
	for i := 0; i < n-2; i++ {
		for j := i + 1; j < n-1; j++ {
			for k := j + 1; k < n; k++ {
				if tt, ok := classifyTriad(hand[i], hand[j], hand[k]); ok {
					out = append(out, Triad{Indices: [3]int{i, j, k}, Type: tt})
				}
			}
		}
	}
	return out
}

// classifyTriad reports whether three cards form a triad and of which type.
func classifyTriad(a, b, c Card) (TriadType, bool) {
	if a.Kind == b.Kind && b.Kind == c.Kind {
		return TriadKind, true
	}
	if a.Kind != b.Kind && a.Kind != c.Kind && b.Kind != c.Kind &&
		a.Group() == b.Group() && b.Group() == c.Group() {
		return TriadGroup, true
	}
	return 0, false
}

// IsWinning reports whether hand is a winning hand: exactly 9 cards, all of
// them consumed by three disjoint triads.
func IsWinning(hand []Card) bool {
	return len(hand) == 9 && Evaluate(hand).CompletedCount() == 9
}
