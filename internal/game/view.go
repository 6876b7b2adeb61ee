package game

import "github.com/onboroido/HotpotGame/engine"

// SeatView is one seat's state as shown to a specific observer. Hand
// contents are revealed only for the observer's own seat; everyone else is
// reduced to a count until the end-of-round summary opens all hands.
type SeatView struct {
	Name     string        `json:"name"`
	HandSize int           `json:"handSize"`
	Hand     []engine.Card `json:"hand,omitempty"`
	Score    int           `json:"score"`
	Agent    bool          `json:"agent"`
	Active   bool          `json:"active"`
}

// View is the room state tailored to one observer, pushed on every
// committed snapshot.
type View struct {
	Room      string               `json:"room"`
	Status    engine.Status        `json:"status"`
	Round     int                  `json:"round"`
	Turn      int                  `json:"turn"`
	HasDrawn  bool                 `json:"hasDrawn"`
	DeckSize  int                  `json:"deckSize"`
	Slots     []*engine.Card       `json:"slots"`
	You       int                  `json:"you"` // observer's seat index, -1 when unseated
	Seats     []SeatView           `json:"players"`
	Summary   *engine.RoundSummary `json:"lastRoundSummary,omitempty"`
	Standings []engine.Standing    `json:"standings,omitempty"`
	Completed []bool               `json:"completed,omitempty"` // observer's own hand mask
}

// ViewFor projects the authoritative document for the observer holding
// key. The round summary is public: it is the open-hands reveal.
func ViewFor(room string, g *engine.GameState, key string) View {
	you := g.SeatIndex(key)
	v := View{
		Room:     room,
		Status:   g.Status,
		Round:    g.Round,
		Turn:     g.Turn,
		HasDrawn: g.HasDrawn,
		DeckSize: len(g.Deck),
		You:      you,
		Slots:    make([]*engine.Card, engine.NumSeats),
		Seats:    make([]SeatView, len(g.Seats)),
		Summary:  g.Summary,
	}
	for i, sl := range g.Slots {
		if sl != nil {
			card := *sl
			v.Slots[i] = &card
		}
	}
	for i, s := range g.Seats {
		sv := SeatView{
			Name:     s.Name,
			HandSize: len(s.Hand),
			Score:    s.Score,
			Agent:    s.Agent,
			Active:   g.Status == engine.StatusPlaying && g.Turn == i,
		}
		if i == you {
			sv.Hand = append([]engine.Card(nil), s.Hand...)
		}
		v.Seats[i] = sv
	}
	if you >= 0 && len(g.Seats[you].Hand) > 0 {
		v.Completed = engine.Evaluate(g.Seats[you].Hand).Completed
	}
	if g.Status == engine.StatusComplete {
		v.Standings = g.Standings()
	}
	return v
}
