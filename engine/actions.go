package engine

import "fmt"

// Transitions. Every method validates its preconditions before touching the
// document; a returned error wrapping ErrIllegalAction means the state was
// left exactly as it was. The methods are pure over the receiver (no clock,
// no I/O, RNG carried in the document), which makes them safe to re-run
// against a freshly read document when an optimistic store transaction
// retries.

// Join seats a human in the room. Key must be unique per session; name is
// display-only. Joining is only possible before the first deal.
func (g *GameState) Join(key, name string, joinedAt int64) (int, error) {
	if g.Status != StatusWaiting {
		return -1, illegalf("join: room is %s", g.Status)
	}
	if key == "" || name == "" {
		return -1, illegalf("join: empty key or name")
	}
	if g.SeatIndex(key) >= 0 {
		return -1, illegalf("join: key already seated")
	}
	if len(g.Seats) >= NumSeats {
		return -1, illegalf("join: room is full")
	}
	g.Seats = append(g.Seats, Seat{Key: key, Name: name, JoinedAt: joinedAt})
	return len(g.Seats) - 1, nil
}

// Leave releases a seat when its session drops. Before the first deal the
// seat is removed from the roster; mid-match the seat converts to CPU
// control so the round keeps its four turn positions and its cards.
func (g *GameState) Leave(key string) error {
	idx := g.SeatIndex(key)
	if idx < 0 {
		return illegalf("leave: unknown key")
	}
	if g.Status == StatusWaiting {
		g.Seats = append(g.Seats[:idx], g.Seats[idx+1:]...)
		return nil
	}
	g.Seats[idx].Agent = true
	return nil
}

// StartRound deals a fresh round. With reset true the whole match restarts
// (round 1, scores zeroed); only the elected host may do that. Without
// reset it advances from a finished round; any seated player may invoke it.
// Empty seats are filled with CPU agents at the first deal.
func (g *GameState) StartRound(key string, reset bool) error {
	switch {
	case reset:
		if g.Status == StatusPlaying {
			return illegalf("start: round in progress")
		}
		if key != g.HostKey() {
			return illegalf("start: only the host may reset the match")
		}
	default:
		switch g.Status {
		case StatusWaiting:
			if key != g.HostKey() {
				return illegalf("start: only the host may start the match")
			}
		case StatusFinished:
			if g.SeatIndex(key) < 0 {
				return illegalf("start: not seated")
			}
			if g.Round >= MaxRounds {
				return illegalf("start: match is over, advance to standings")
			}
		default:
			return illegalf("start: room is %s", g.Status)
		}
	}
	if len(g.Seats) == 0 {
		return illegalf("start: no players seated")
	}

	g.fillAgentSeats()
	if reset {
		g.Round = 1
		for i := range g.Seats {
			g.Seats[i].Score = 0
		}
	} else if g.Status == StatusFinished {
		g.Round++
	} else {
		g.Round = 1
	}

	g.dealRound()
	return nil
}

// fillAgentSeats pads the roster to NumSeats with CPU agents.
func (g *GameState) fillAgentSeats() {
	for i := len(g.Seats); i < NumSeats; i++ {
		g.Seats = append(g.Seats, Seat{
			Key:   fmt.Sprintf("cpu-%d", i),
			Name:  fmt.Sprintf("CPU %d", i),
			Agent: true,
		})
	}
}

// dealRound builds and shuffles a fresh deck and deals 8 cards to each
// seat. Instances restart from a round-scoped base so no id is ever reused
// within a round.
func (g *GameState) dealRound() {
	deck := make([]Card, 0, DeckSize)
	for _, kind := range catalog {
		for c := 0; c < CopiesPerKind; c++ {
			g.NextInstance++
			deck = append(deck, Card{Kind: kind.ID, Instance: g.NextInstance})
		}
	}
	// Fisher-Yates shuffle.
	for i := len(deck) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		deck[i], deck[j] = deck[j], deck[i]
	}

	for i := range g.Seats {
		hand := make([]Card, HandSize)
		copy(hand, deck[len(deck)-HandSize:])
		deck = deck[:len(deck)-HandSize]
		sortHand(hand)
		g.Seats[i].Hand = hand
	}

	g.Deck = deck
	g.Slots = [NumSeats]*Card{}
	g.Summary = nil
	// Rotate the starting seat with the round so the same seat doesn't
	// open every round.
	g.Turn = (g.Round - 1) % NumSeats
	g.HasDrawn = false
	g.Status = StatusPlaying
}

// checkTurn validates the common preconditions of an in-round action.
func (g *GameState) checkTurn(seat int, wantDrawn bool) error {
	if g.Status != StatusPlaying {
		return illegalf("room is %s", g.Status)
	}
	if seat != g.Turn {
		return illegalf("seat %d acted out of turn (active %d)", seat, g.Turn)
	}
	if g.HasDrawn != wantDrawn {
		if wantDrawn {
			return illegalf("seat %d must draw first", seat)
		}
		return illegalf("seat %d already drew this turn", seat)
	}
	return nil
}

// Draw pops the top deck card into the active seat's hand. An empty deck
// ends the round in a draw-out: every seat is scored on its standing hand
// and nobody receives the win bonus. Drawing a card that completes the
// hand finalizes the round immediately, skipping the discard.
func (g *GameState) Draw(seat int) error {
	if err := g.checkTurn(seat, false); err != nil {
		return err
	}
	if len(g.Deck) == 0 {
		g.finalizeRound(-1)
		return nil
	}
	card := g.Deck[len(g.Deck)-1]
	g.Deck = g.Deck[:len(g.Deck)-1]
	g.takeCard(seat, card)
	return nil
}

// PickUp claims the discard in slot into the active seat's hand. The
// surrounding store transaction makes the claim atomic: when two actors
// race for one slot, the loser's transaction re-runs against the committed
// document, finds the slot empty, and rejects here.
func (g *GameState) PickUp(seat, slot int) error {
	if err := g.checkTurn(seat, false); err != nil {
		return err
	}
	if slot < 0 || slot >= NumSeats {
		return illegalf("pickup: no such slot %d", slot)
	}
	if g.Slots[slot] == nil {
		return illegalf("pickup: slot %d is empty", slot)
	}
	card := *g.Slots[slot]
	g.Slots[slot] = nil
	g.takeCard(seat, card)
	return nil
}

// takeCard adds card to the seat's hand, flags the draw, and runs the win
// check on the 9-card hand.
func (g *GameState) takeCard(seat int, card Card) {
	hand := append(g.Seats[seat].Hand, card)
	sortHand(hand)
	g.Seats[seat].Hand = hand
	g.HasDrawn = true
	if IsWinning(hand) {
		g.finalizeRound(seat)
	}
}

// Discard removes the card at idx from the active seat's hand into the
// seat's own slot and passes the turn. An unclaimed discard still sitting
// in the slot is returned to the bottom of the deck first, so no card ever
// leaves the round's instance set.
func (g *GameState) Discard(seat, idx int) error {
	if err := g.checkTurn(seat, true); err != nil {
		return err
	}
	hand := g.Seats[seat].Hand
	if idx < 0 || idx >= len(hand) {
		return illegalf("discard: no card at index %d", idx)
	}
	card := hand[idx]
	g.Seats[seat].Hand = append(hand[:idx:idx], hand[idx+1:]...)
	if prev := g.Slots[seat]; prev != nil {
		g.Deck = append([]Card{*prev}, g.Deck...)
	}
	g.Slots[seat] = &card
	g.Turn = (g.Turn + 1) % NumSeats
	g.HasDrawn = false
	return nil
}

// Advance moves past a finished round: deal the next one, or close out the
// match with final standings after the last round. Any seated player may
// advance.
func (g *GameState) Advance(key string) error {
	if g.Status != StatusFinished {
		return illegalf("advance: room is %s", g.Status)
	}
	if g.SeatIndex(key) < 0 {
		return illegalf("advance: not seated")
	}
	if g.Round >= MaxRounds {
		g.Status = StatusComplete
		return nil
	}
	return g.StartRound(key, false)
}

// finalizeRound scores every seat, accumulates cumulative scores, and
// publishes the open-hands summary. winner is a seat index, or -1 for a
// draw-out.
func (g *GameState) finalizeRound(winner int) {
	summary := &RoundSummary{Round: g.Round, Winner: winner}
	for i := range g.Seats {
		hand := g.Seats[i].Hand
		eval := Evaluate(hand)
		points, lines := Score(hand, i == winner, g.Table)
		g.Seats[i].Score += points
		summary.Seats[i] = SeatSummary{
			Name:       g.Seats[i].Name,
			Hand:       append([]Card(nil), hand...),
			Completed:  eval.Completed,
			RoundScore: points,
			Breakdown:  lines,
			Winner:     i == winner,
		}
	}
	g.Summary = summary
	g.Status = StatusFinished
}
