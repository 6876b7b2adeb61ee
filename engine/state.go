package engine

import (
	"errors"
	"fmt"
)

const (
	// NumSeats is the fixed number of turn positions.
	NumSeats = 4
	// HandSize is the resting hand size; hands grow to HandSize+1 between
	// a draw and the matching discard.
	HandSize = 8
	// MaxRounds is the fixed match length.
	MaxRounds = 3
)

// Status is the lifecycle phase of a room.
type Status string

const (
	// StatusWaiting: room created, humans joining, no round dealt yet.
	StatusWaiting Status = "waiting"
	// StatusPlaying: a round is in progress.
	StatusPlaying Status = "playing"
	// StatusFinished: a round has ended; the summary is published and the
	// next round can be advanced.
	StatusFinished Status = "finished"
	// StatusComplete: all rounds played; final standings are available.
	StatusComplete Status = "complete"
)

// ErrIllegalAction is the base error for every rejected transition. Callers
// treat anything wrapping it as a no-op: the shared state is untouched and
// the request is simply dropped.
var ErrIllegalAction = errors.New("illegal action")

func illegalf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrIllegalAction}, args...)...)
}

// Seat is one of the four turn positions. Key is the session key of the
// owning actor (a generated key for CPU agents); JoinedAt orders humans for
// host election.
type Seat struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Hand     []Card `json:"hand"`
	Score    int    `json:"score"`
	Agent    bool   `json:"agent"`
	JoinedAt int64  `json:"joinedAt"`
}

// SeatSummary is one seat's line of a round summary.
type SeatSummary struct {
	Name       string      `json:"name"`
	Hand       []Card      `json:"hand"`
	Completed  []bool      `json:"completed"`
	RoundScore int         `json:"roundScore"`
	Breakdown  []ScoreLine `json:"breakdown"`
	Winner     bool        `json:"winner"`
}

// RoundSummary is the open-hands reveal published when a round ends.
// Winner is the seat index of the winning seat, or -1 on a draw-out.
type RoundSummary struct {
	Round  int                   `json:"round"`
	Winner int                   `json:"winner"`
	Seats  [NumSeats]SeatSummary `json:"seats"`
}

// GameState is the complete room document shared through the store. It is
// the root aggregate: only the transition methods in actions.go mutate it,
// and they either fully apply or leave it untouched. Every field is always
// present in the serialized form; empty discard slots are explicit nulls.
type GameState struct {
	Status   Status          `json:"status"`
	Round    int             `json:"round"`
	Turn     int             `json:"turn"`
	HasDrawn bool            `json:"hasDrawn"`
	Deck     []Card          `json:"deck"`
	Slots    [NumSeats]*Card `json:"slots"`
	Seats    []Seat          `json:"players"`
	Summary  *RoundSummary   `json:"lastRoundSummary"`
	Table    ScoreTable      `json:"scoreTable"`

	// Seq is the commit sequence number, bumped by the store on every
	// write. Subscribers use it to ignore snapshots delivered out of
	// order; the engine never reads it.
	Seq int64 `json:"seq"`
	// RNG seeds deck shuffles; carried in the document so any actor
	// committing a transition continues the same deterministic stream.
	RNG uint64 `json:"rng"`
	// NextInstance is the next card instance id for the current round's
	// deck build.
	NextInstance int `json:"nextInstance"`
}

// NewGameState returns a fresh waiting room document.
func NewGameState(seed uint64, table ScoreTable) *GameState {
	if seed == 0 {
		seed = 1 // xorshift can't start at 0
	}
	return &GameState{
		Status: StatusWaiting,
		Table:  table,
		RNG:    seed,
	}
}

// nextRand advances the inline xorshift64 stream.
func (g *GameState) nextRand() uint64 {
	x := g.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (g *GameState) randN(n uint64) uint64 {
	return g.nextRand() % n
}

// SeatIndex returns the seat index owned by key, or -1.
func (g *GameState) SeatIndex(key string) int {
	for i := range g.Seats {
		if g.Seats[i].Key == key {
			return i
		}
	}
	return -1
}

// HostKey returns the session key of the elected host: the first-joined
// human seat. Empty when no human is seated.
func (g *GameState) HostKey() string {
	for i := range g.Seats {
		if !g.Seats[i].Agent {
			return g.Seats[i].Key
		}
	}
	return ""
}

// ActiveSeat returns the seat whose turn it is, or nil outside of play.
func (g *GameState) ActiveSeat() *Seat {
	if g.Status != StatusPlaying || g.Turn < 0 || g.Turn >= len(g.Seats) {
		return nil
	}
	return &g.Seats[g.Turn]
}

// Standing is one row of the final results, descending by score.
type Standing struct {
	Seat  int    `json:"seat"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Standings returns seats ordered by cumulative score, highest first.
// Ties keep seat order.
func (g *GameState) Standings() []Standing {
	out := make([]Standing, 0, len(g.Seats))
	for i, s := range g.Seats {
		out = append(out, Standing{Seat: i, Name: s.Name, Score: s.Score})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Score > out[j-1].Score; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Clone returns a deep copy of the document. Store implementations hand
// copies to subscribers so no actor can mutate shared state outside a
// transaction.
func (g *GameState) Clone() *GameState {
	c := *g
	c.Deck = append([]Card(nil), g.Deck...)
	c.Seats = make([]Seat, len(g.Seats))
	for i, s := range g.Seats {
		c.Seats[i] = s
		c.Seats[i].Hand = append([]Card(nil), s.Hand...)
	}
	for i, sl := range g.Slots {
		if sl != nil {
			card := *sl
			c.Slots[i] = &card
		}
	}
	if g.Summary != nil {
		sum := *g.Summary
		for i, ss := range g.Summary.Seats {
			sum.Seats[i].Hand = append([]Card(nil), ss.Hand...)
			sum.Seats[i].Completed = append([]bool(nil), ss.Completed...)
			sum.Seats[i].Breakdown = append([]ScoreLine(nil), ss.Breakdown...)
		}
		c.Summary = &sum
	}
	return &c
}
