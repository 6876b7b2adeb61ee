// Package agent implements the CPU seat strategy: which card to discard
// and whether to claim a discard instead of drawing. Decisions run through
// the exact same engine transitions as a human player; the agent only
// picks among legal moves.
package agent

import (
	"math/rand"

	"github.com/onboroido/HotpotGame/engine"
)

const (
	// kindWeight and groupWeight rank how much a retained card is worth:
	// a kind-mate is a direct step toward the higher-scoring same-kind
	// triad, a group-mate toward the cheaper category triad.
	kindWeight  = 3
	groupWeight = 1

	// pickupChance is the fallback claim probability when the slot card
	// does not clearly advance a triad.
	pickupChance = 0.15
)

// Agent is a potential-maximizing CPU strategy with a seeded random source
// for tie-breaking and the fallback claim roll. A fixed seed makes the
// agent fully deterministic, which the tests rely on.
type Agent struct {
	rng *rand.Rand
}

// New returns an agent seeded with seed.
func New(seed int64) *Agent {
	return &Agent{rng: rand.New(rand.NewSource(seed))}
}

// DecideDiscard returns the hand index to discard: the card whose removal
// retains the most triad potential in the remaining hand. Ties keep the
// lowest index, so a fixed hand always discards the same card.
func (a *Agent) DecideDiscard(hand []engine.Card) int {
	if len(hand) == 0 {
		return 0
	}
	bestIdx, bestPotential := 0, -1
	for i := range hand {
		p := handPotential(hand, i)
		if p > bestPotential {
			bestIdx, bestPotential = i, p
		}
	}
	return bestIdx
}

// handPotential scores the hand with the card at skip removed: each
// retained card earns kindWeight per other copy of its kind and
// groupWeight per distinct other kind sharing its group. Completed triads
// dominate the sum, so the agent never breaks one up to keep a stray.
func handPotential(hand []engine.Card, skip int) int {
	total := 0
	for i, c := range hand {
		if i == skip {
			continue
		}
		kindMates := 0
		groupKinds := map[engine.KindID]bool{}
		for j, o := range hand {
			if j == skip || j == i {
				continue
			}
			if o.Kind == c.Kind {
				kindMates++
			} else if o.Group() == c.Group() {
				groupKinds[o.Kind] = true
			}
		}
		total += kindMates*kindWeight + len(groupKinds)*groupWeight
	}
	return total
}

// DecidePickup reports whether to claim card from a discard slot instead
// of drawing blind. The claim is certain when the card completes or
// strongly advances a triad (two kind-mates, or two distinct group-mates
// already in hand); otherwise a small random chance keeps play varied.
func (a *Agent) DecidePickup(card engine.Card, hand []engine.Card) bool {
	kindMates := 0
	groupKinds := map[engine.KindID]bool{}
	for _, o := range hand {
		if o.Kind == card.Kind {
			kindMates++
		} else if o.Group() == card.Group() {
			groupKinds[o.Kind] = true
		}
	}
	if kindMates >= 2 || len(groupKinds) >= 2 {
		return true
	}
	return a.rng.Float64() < pickupChance
}
