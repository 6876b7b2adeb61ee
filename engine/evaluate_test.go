package engine

import (
	"math/rand"
	"testing"
)

// h builds a hand from kind ids, assigning sequential instances, sorted the
// way the state machine keeps hands.
func h(kinds ...KindID) []Card {
	hand := make([]Card, len(kinds))
	for i, k := range kinds {
		hand[i] = Card{Kind: k, Instance: i + 1}
	}
	sortHand(hand)
	return hand
}

// bruteMaxCompleted is an independent reference: maximum completed-card
// count over all disjoint triad packings, by bitmask recursion over index
// subsets. Deliberately structured differently from Evaluate.
func bruteMaxCompleted(hand []Card) int {
	n := len(hand)
	var rec func(used uint16) int
	rec = func(used uint16) int {
		best := 0
		for i := 0; i < n; i++ {
			if used&(1<<i) != 0 {
				continue
			}
			for j := i + 1; j < n; j++ {
				if used&(1<<j) != 0 {
					continue
				}
				for k := j + 1; k < n; k++ {
					if used&(1<<k) != 0 {
						continue
					}
					if _, ok := classifyTriad(hand[i], hand[j], hand[k]); !ok {
						continue
					}
					got := 3 + rec(used|1<<i|1<<j|1<<k)
					if got > best {
						best = got
					}
				}
			}
		}
		return best
	}
	return rec(0)
}

// TestEvaluateSameKindWin: three copies each of kinds in different groups
// complete the whole hand.
func TestEvaluateSameKindWin(t *testing.T) {
	hand := h(KindBeef, KindBeef, KindBeef, KindShrimp, KindShrimp, KindShrimp,
		KindCabbage, KindCabbage, KindCabbage)
	eval := Evaluate(hand)
	if eval.CompletedCount() != 9 {
		t.Fatalf("expected 9 completed, got %d", eval.CompletedCount())
	}
	for _, tr := range eval.Triads {
		if tr.Type != TriadKind {
			t.Errorf("expected all same-kind triads, got group triad at %v", tr.Indices)
		}
	}
	if !IsWinning(hand) {
		t.Error("expected winning hand")
	}
}

// TestEvaluateMixedWin: group triad + kind triad + group triad.
func TestEvaluateMixedWin(t *testing.T) {
	hand := h(KindCarrot, KindOnion, KindPotato,
		KindChicken, KindChicken, KindChicken,
		KindShrimp, KindCrab, KindFish)
	eval := Evaluate(hand)
	if eval.CompletedCount() != 9 {
		t.Fatalf("expected 9 completed, got %d", eval.CompletedCount())
	}
	kind, group := 0, 0
	for _, tr := range eval.Triads {
		if tr.Type == TriadKind {
			kind++
		} else {
			group++
		}
	}
	if kind != 1 || group != 2 {
		t.Errorf("expected 1 kind + 2 group triads, got %d + %d", kind, group)
	}
}

// TestEvaluatePartialCredit: one kind triad among unrelated cards.
func TestEvaluatePartialCredit(t *testing.T) {
	// 8-card hand: one complete beef triad, five cards that pair nothing.
	hand := h(KindBeef, KindBeef, KindBeef,
		KindCarrot, KindChicken, KindShrimp, KindCabbage, KindOnion)
	// Carrot+Onion are both orange but only two of them: no group triad.
	eval := Evaluate(hand)
	if eval.CompletedCount() != 3 {
		t.Fatalf("expected exactly 3 completed, got %d", eval.CompletedCount())
	}
}

// TestEvaluateGreedyTrap: a kind triad that blocks two group triads must
// not be chosen. C C C O O P P + junk packs as {C,O,P} {C,O,P} = 6, not
// the greedy CCC = 3.
func TestEvaluateGreedyTrap(t *testing.T) {
	hand := h(KindCarrot, KindCarrot, KindCarrot,
		KindOnion, KindOnion, KindPotato, KindPotato,
		KindBeef, KindShrimp)
	eval := Evaluate(hand)
	if eval.CompletedCount() != 6 {
		t.Fatalf("expected 6 completed, got %d", eval.CompletedCount())
	}
	for _, tr := range eval.Triads {
		if tr.Type != TriadGroup {
			t.Errorf("expected group triads only, got kind triad at %v", tr.Indices)
		}
	}
}

// TestEvaluatePrefersKindTriads: when packings tie on count, the
// higher-scoring same-kind decomposition wins.
func TestEvaluatePrefersKindTriads(t *testing.T) {
	hand := h(KindCarrot, KindCarrot, KindCarrot,
		KindOnion, KindOnion, KindOnion,
		KindPotato, KindPotato, KindPotato)
	eval := Evaluate(hand)
	if eval.CompletedCount() != 9 {
		t.Fatalf("expected 9 completed, got %d", eval.CompletedCount())
	}
	for _, tr := range eval.Triads {
		if tr.Type != TriadKind {
			t.Errorf("expected same-kind triads, got group triad at %v", tr.Indices)
		}
	}
}

// TestEvaluateSmallHands: hands below 3 cards never complete; sizes 3..8
// cap at floor(size/3)*3.
func TestEvaluateSmallHands(t *testing.T) {
	if got := Evaluate(h(KindCarrot, KindCarrot)).CompletedCount(); got != 0 {
		t.Errorf("2-card hand: expected 0 completed, got %d", got)
	}
	if got := Evaluate(nil).CompletedCount(); got != 0 {
		t.Errorf("empty hand: expected 0 completed, got %d", got)
	}
	hand := h(KindBeef, KindBeef, KindBeef, KindChicken, KindChicken, KindChicken)
	if got := Evaluate(hand).CompletedCount(); got != 6 {
		t.Errorf("6-card double triad: expected 6 completed, got %d", got)
	}
}

// TestEvaluateMatchesBruteForce cross-checks the packing count against the
// independent bitmask reference over random hands.
func TestEvaluateMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	deck := make([]Card, 0, DeckSize)
	for _, kind := range catalog {
		for c := 0; c < CopiesPerKind; c++ {
			deck = append(deck, Card{Kind: kind.ID, Instance: len(deck) + 1})
		}
	}
	for trial := 0; trial < 300; trial++ {
		rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
		size := 3 + rng.Intn(7) // 3..9
		hand := append([]Card(nil), deck[:size]...)
		sortHand(hand)
		want := bruteMaxCompleted(hand)
		got := Evaluate(hand).CompletedCount()
		if got != want {
			t.Fatalf("trial %d: hand %v: evaluator found %d completed, brute force %d",
				trial, hand, got, want)
		}
	}
}

// TestEvaluateDeterministic: a fixed hand always produces the same packing.
func TestEvaluateDeterministic(t *testing.T) {
	hand := h(KindCarrot, KindCarrot, KindOnion, KindPotato, KindPotato,
		KindBeef, KindBeef, KindBeef, KindChive)
	first := Evaluate(hand)
	for i := 0; i < 10; i++ {
		again := Evaluate(hand)
		if len(again.Triads) != len(first.Triads) {
			t.Fatalf("packing size changed between runs")
		}
		for j := range again.Triads {
			if again.Triads[j] != first.Triads[j] {
				t.Fatalf("packing changed between runs: %v vs %v",
					again.Triads[j], first.Triads[j])
			}
		}
	}
}

// TestWinRequiresNineCards: a fully packed 6-card hand is not a win.
func TestWinRequiresNineCards(t *testing.T) {
	hand := h(KindBeef, KindBeef, KindBeef, KindChicken, KindChicken, KindChicken)
	if IsWinning(hand) {
		t.Error("6-card hand must not be a win")
	}
}
