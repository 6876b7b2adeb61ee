package engine

import "fmt"

// ScoreTable is the single source of truth for point values. Observed
// variants of the game shipped 40/30/15 and 25/25/15; the table keeps the
// choice configurable instead of hardcoding one history.
type ScoreTable struct {
	WinBonus   int `json:"winBonus"`
	KindTriad  int `json:"kindTriad"`
	GroupTriad int `json:"groupTriad"`
}

// DefaultScoreTable returns the standard Hotpot values.
func DefaultScoreTable() ScoreTable {
	return ScoreTable{WinBonus: 40, KindTriad: 30, GroupTriad: 15}
}

// ScoreLine is one entry of a score breakdown, for the end-of-round reveal.
type ScoreLine struct {
	Label  string `json:"label"`
	Points int    `json:"points"`
}

// Score computes the point total for a hand. The winner receives the flat
// win bonus; every seat, winning or not, receives the per-triad values of
// the evaluator's packing. Two hands with the same contents score the same
// regardless of draw order: Evaluate is deterministic over the sorted hand.
func Score(hand []Card, winner bool, table ScoreTable) (int, []ScoreLine) {
	total := 0
	var lines []ScoreLine
	if winner {
		total += table.WinBonus
		lines = append(lines, ScoreLine{Label: "win bonus", Points: table.WinBonus})
	}
	eval := Evaluate(hand)
	for _, t := range eval.Triads {
		lead := hand[t.Indices[0]]
		switch t.Type {
		case TriadKind:
			total += table.KindTriad
			lines = append(lines, ScoreLine{
				Label:  fmt.Sprintf("three %s", lead.Name()),
				Points: table.KindTriad,
			})
		case TriadGroup:
			total += table.GroupTriad
			lines = append(lines, ScoreLine{
				Label:  fmt.Sprintf("%s set", lead.Group()),
				Points: table.GroupTriad,
			})
		}
	}
	return total, lines
}
