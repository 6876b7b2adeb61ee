package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onboroido/HotpotGame/engine"
)

func hand(kinds ...engine.KindID) []engine.Card {
	out := make([]engine.Card, len(kinds))
	for i, k := range kinds {
		out[i] = engine.Card{Kind: k, Instance: i + 1}
	}
	return out
}

func TestDecideDiscardDropsTheStray(t *testing.T) {
	a := New(1)
	// Two near-triads plus one card with no mates: the stray must go.
	h := hand(
		engine.KindBeef, engine.KindBeef, engine.KindBeef,
		engine.KindShrimp, engine.KindShrimp, engine.KindShrimp,
		engine.KindCabbage, engine.KindCabbage,
		engine.KindCarrot, // stray: no orange mates
	)
	assert.Equal(t, 8, a.DecideDiscard(h), "the mate-less card should be discarded")
}

func TestDecideDiscardKeepsCompletedTriads(t *testing.T) {
	a := New(1)
	h := hand(
		engine.KindBeef, engine.KindBeef, engine.KindBeef,
		engine.KindCarrot, engine.KindOnion,
	)
	got := a.DecideDiscard(h)
	assert.NotContains(t, []int{0, 1, 2}, got, "never break a completed triad for a pair")
}

func TestDecideDiscardDeterministic(t *testing.T) {
	h := hand(
		engine.KindBeef, engine.KindChicken, engine.KindShrimp,
		engine.KindCrab, engine.KindCabbage, engine.KindLeek,
		engine.KindCarrot, engine.KindOnion, engine.KindPotato,
	)
	first := New(7).DecideDiscard(h)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, New(7).DecideDiscard(h))
	}
}

func TestDecidePickupClaimsCompletingCard(t *testing.T) {
	a := New(1)
	h := hand(engine.KindBeef, engine.KindBeef,
		engine.KindCarrot, engine.KindShrimp, engine.KindLeek)
	assert.True(t, a.DecidePickup(engine.Card{Kind: engine.KindBeef, Instance: 99}, h),
		"a card completing a kind triad must be claimed")
}

func TestDecidePickupClaimsGroupCompletion(t *testing.T) {
	a := New(1)
	h := hand(engine.KindCarrot, engine.KindOnion,
		engine.KindBeef, engine.KindShrimp, engine.KindLeek)
	assert.True(t, a.DecidePickup(engine.Card{Kind: engine.KindPotato, Instance: 99}, h),
		"a card completing a group triad must be claimed")
}

func TestDecidePickupMostlyIgnoresUselessCard(t *testing.T) {
	a := New(1)
	h := hand(engine.KindBeef, engine.KindBeef, engine.KindShrimp)
	claims := 0
	for i := 0; i < 1000; i++ {
		if a.DecidePickup(engine.Card{Kind: engine.KindChive, Instance: 99}, h) {
			claims++
		}
	}
	// Fallback chance is 15%; allow generous slack around it.
	assert.Greater(t, claims, 50, "fallback claim chance must be non-zero")
	assert.Less(t, claims, 300, "a useless card must usually be ignored")
}
