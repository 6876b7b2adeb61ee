// Package engine implements the Hotpot card game rules.
//
// This package is the authoritative rules core: card catalog, hand
// evaluation, scoring, and the turn/round state machine. It has no
// dependencies and no side effects; every transition is a pure function of
// the current GameState, which makes it safe to re-run inside an optimistic
// store transaction (see internal/store).
package engine

// Group is one of the four ingredient categories.
type Group uint8

const (
	GroupOrange Group = iota
	GroupRed
	GroupBlue
	GroupGreen

	NumGroups = 4
)

// String returns the display name of the group.
func (g Group) String() string {
	switch g {
	case GroupOrange:
		return "orange"
	case GroupRed:
		return "red"
	case GroupBlue:
		return "blue"
	case GroupGreen:
		return "green"
	}
	return "unknown"
}

// KindID identifies a catalog entry. Valid kinds are 1..NumKinds.
type KindID uint8

const (
	KindCarrot KindID = iota + 1
	KindOnion
	KindPotato
	KindBeef
	KindChicken
	KindSausage
	KindShrimp
	KindCrab
	KindFish
	KindCabbage
	KindLeek
	KindChive

	NumKinds      = 12
	CopiesPerKind = 5
	DeckSize      = NumKinds * CopiesPerKind // 60
)

// CardKind is an immutable catalog entry. Name, Color and Icon are display
// metadata only; the rules care about ID and Group.
type CardKind struct {
	ID    KindID `json:"id"`
	Group Group  `json:"group"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// catalog holds the fixed 12-kind ingredient set: 3 kinds per group.
var catalog = [NumKinds]CardKind{
	{KindCarrot, GroupOrange, "Carrot", "#e67e22", "🥕"},
	{KindOnion, GroupOrange, "Onion", "#e67e22", "🧅"},
	{KindPotato, GroupOrange, "Potato", "#e67e22", "🥔"},
	{KindBeef, GroupRed, "Beef", "#c0392b", "🥩"},
	{KindChicken, GroupRed, "Chicken", "#c0392b", "🍗"},
	{KindSausage, GroupRed, "Sausage", "#c0392b", "🌭"},
	{KindShrimp, GroupBlue, "Shrimp", "#2980b9", "🦐"},
	{KindCrab, GroupBlue, "Crab", "#2980b9", "🦀"},
	{KindFish, GroupBlue, "Fish", "#2980b9", "🐟"},
	{KindCabbage, GroupGreen, "Cabbage", "#27ae60", "🥬"},
	{KindLeek, GroupGreen, "Leek", "#27ae60", "🎋"},
	{KindChive, GroupGreen, "Chive", "#27ae60", "🌿"},
}

// Kind returns the catalog entry for id. Panics on an out-of-range id;
// all cards in play are built from the catalog, so an invalid id is a bug.
func Kind(id KindID) CardKind {
	return catalog[id-1]
}

// Catalog returns the full catalog in kind order.
func Catalog() []CardKind {
	out := make([]CardKind, NumKinds)
	copy(out, catalog[:])
	return out
}

// GroupOf returns the group a kind belongs to.
func GroupOf(id KindID) Group {
	return catalog[id-1].Group
}

// Card is one dealt copy of a CardKind. Instance is unique per physical
// card within a round, assigned at deck-build time and never reused; the
// deck is rebuilt from scratch each round.
type Card struct {
	Kind     KindID `json:"kind"`
	Instance int    `json:"instance"`
}

// Group returns the group of the card's kind.
func (c Card) Group() Group { return GroupOf(c.Kind) }

// Name returns the display name of the card's kind.
func (c Card) Name() string { return Kind(c.Kind).Name }

// cardLess orders cards by kind, then instance. Hands are kept in this
// order at all times so evaluation and scoring are reproducible.
func cardLess(a, b Card) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.Instance < b.Instance
}

// sortHand insertion-sorts a hand in place by (kind, instance).
// Hands hold at most 9 cards; no need for sort.Slice here.
func sortHand(hand []Card) {
	for i := 1; i < len(hand); i++ {
		for j := i; j > 0 && cardLess(hand[j], hand[j-1]); j-- {
			hand[j], hand[j-1] = hand[j-1], hand[j]
		}
	}
}
