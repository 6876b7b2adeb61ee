// Package game is the room session layer: it connects one actor (a human
// client) to the shared room document, funnels that actor's actions
// through the store's atomic transactions, and, when the actor is the
// elected host, drives the CPU seats through the exact same transitions.
package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/onboroido/HotpotGame/engine"
	"github.com/onboroido/HotpotGame/internal/agent"
	"github.com/onboroido/HotpotGame/internal/store"
)

// DefaultThinkDelay paces CPU turns so they read as deliberate moves
// rather than instant state jumps. Purely a pacing concern.
const DefaultThinkDelay = time.Second

// SendFunc pushes a view to the session's transport. Called from the
// subscribe loop goroutine.
type SendFunc func(v View)

// CreateRoom bootstraps a fresh waiting room and returns its id.
func CreateRoom(ctx context.Context, st store.Store, seed uint64, table engine.ScoreTable) (string, error) {
	room := uuid.NewString()[:8]
	if err := st.Write(ctx, room, engine.NewGameState(seed, table)); err != nil {
		return "", err
	}
	return room, nil
}

// Session is one connected actor's attachment to a room. All mutating
// calls go through Store.Transact, so a session never holds authoritative
// state: the document in the store is the single source of truth and the
// session merely reacts to its snapshots.
type Session struct {
	store      store.Store
	room       string
	key        string
	name       string
	log        *logrus.Entry
	cpu        *agent.Agent
	thinkDelay time.Duration
	send       SendFunc

	mu         sync.Mutex
	thinkTimer *time.Timer
}

// NewSession prepares a session for name in room. The seat key is minted
// here; the seat itself is taken by Join.
func NewSession(st store.Store, room, name string, log *logrus.Logger, send SendFunc) *Session {
	key := uuid.NewString()
	return &Session{
		store:      st,
		room:       room,
		key:        key,
		name:       name,
		log:        log.WithFields(logrus.Fields{"room": room, "player": name}),
		cpu:        agent.New(time.Now().UnixNano()),
		thinkDelay: DefaultThinkDelay,
		send:       send,
	}
}

// SetThinkDelay overrides the CPU pacing delay (tests set it to zero).
func (s *Session) SetThinkDelay(d time.Duration) { s.thinkDelay = d }

// Key returns the session's seat key.
func (s *Session) Key() string { return s.key }

// Join takes a seat in the room. Fails when the room is unknown, full, or
// already dealt.
func (s *Session) Join(ctx context.Context) error {
	now := time.Now().UnixMilli()
	_, err := s.store.Transact(ctx, s.room, func(g *engine.GameState) error {
		_, err := g.Join(s.key, s.name, now)
		return err
	})
	return err
}

// Leave releases the seat; the transport calls this when the connection
// drops, mirroring the store's on-disconnect cleanup.
func (s *Session) Leave(ctx context.Context) {
	s.cancelThink()
	_, err := s.store.Transact(ctx, s.room, func(g *engine.GameState) error {
		return g.Leave(s.key)
	})
	if err != nil && !errors.Is(err, engine.ErrIllegalAction) {
		s.log.WithError(err).Warn("seat release failed")
	}
}

// Run subscribes to the room and blocks until ctx ends or the stream
// closes, pushing a tailored view on every committed snapshot and driving
// CPU seats when this session is the host.
func (s *Session) Run(ctx context.Context) error {
	snapshots, cancel, err := s.store.Subscribe(ctx, s.room)
	if err != nil {
		return err
	}
	defer cancel()
	defer s.cancelThink()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case doc, ok := <-snapshots:
			if !ok {
				return nil
			}
			if s.send != nil {
				s.send(ViewFor(s.room, doc, s.key))
			}
			s.driveAgents(ctx, doc)
		}
	}
}

// ---------------------------------------------------------------------------
// Human action entry points
// ---------------------------------------------------------------------------

// Each entry point runs the corresponding engine transition inside a store
// transaction. An illegal action is a no-op: the committed document is the
// sole arbiter of legality. Only store-level failures are surfaced.

// Start begins the match or resets it.
func (s *Session) Start(ctx context.Context, reset bool) {
	s.transact(ctx, "start", func(g *engine.GameState) error {
		return g.StartRound(s.key, reset)
	})
}

// Advance moves past a finished round.
func (s *Session) Advance(ctx context.Context) {
	s.transact(ctx, "advance", func(g *engine.GameState) error {
		return g.Advance(s.key)
	})
}

// Draw takes the top deck card.
func (s *Session) Draw(ctx context.Context) {
	s.transact(ctx, "draw", func(g *engine.GameState) error {
		return g.Draw(g.SeatIndex(s.key))
	})
}

// PickUp claims the discard in slot.
func (s *Session) PickUp(ctx context.Context, slot int) {
	s.transact(ctx, "pickup", func(g *engine.GameState) error {
		return g.PickUp(g.SeatIndex(s.key), slot)
	})
}

// Discard throws the hand card at idx.
func (s *Session) Discard(ctx context.Context, idx int) {
	s.transact(ctx, "discard", func(g *engine.GameState) error {
		return g.Discard(g.SeatIndex(s.key), idx)
	})
}

func (s *Session) transact(ctx context.Context, action string, fn store.TxFunc) {
	_, err := s.store.Transact(ctx, s.room, fn)
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrIllegalAction):
		s.log.WithField("action", action).WithError(err).Debug("action rejected")
	default:
		s.log.WithField("action", action).WithError(err).Warn("action failed")
	}
}

// ---------------------------------------------------------------------------
// Host-driven CPU seats
// ---------------------------------------------------------------------------

// driveAgents schedules a CPU move when this session is the elected host
// and the active seat is agent-controlled. Each snapshot supersedes the
// previous schedule, so a timer armed for a state that no longer exists is
// cancelled rather than left to fire blind.
func (s *Session) driveAgents(ctx context.Context, doc *engine.GameState) {
	s.cancelThink()
	if doc.HostKey() != s.key || doc.Status != engine.StatusPlaying {
		return
	}
	active := doc.ActiveSeat()
	if active == nil || !active.Agent {
		return
	}
	s.mu.Lock()
	s.thinkTimer = time.AfterFunc(s.thinkDelay, func() { s.agentMove(ctx) })
	s.mu.Unlock()
}

func (s *Session) cancelThink() {
	s.mu.Lock()
	if s.thinkTimer != nil {
		s.thinkTimer.Stop()
		s.thinkTimer = nil
	}
	s.mu.Unlock()
}

// agentMove performs one CPU half-turn: acquire a card (claim or draw)
// when the seat hasn't drawn yet, otherwise discard. The decision is made
// inside the transaction against the current document, so a retry after a
// conflict decides again from fresh state; the committed snapshot then
// re-schedules the next half-turn.
func (s *Session) agentMove(ctx context.Context) {
	_, err := s.store.Transact(ctx, s.room, func(g *engine.GameState) error {
		active := g.ActiveSeat()
		if active == nil || !active.Agent || g.HostKey() != s.key {
			return engine.ErrIllegalAction
		}
		seat := g.Turn
		if g.HasDrawn {
			return g.Discard(seat, s.cpu.DecideDiscard(active.Hand))
		}
		// Prefer claiming a worthwhile discard over drawing blind; scan
		// from the previous seat's slot the way a player watches the
		// table.
		for off := 1; off < engine.NumSeats; off++ {
			slot := (seat + engine.NumSeats - off) % engine.NumSeats
			if g.Slots[slot] == nil {
				continue
			}
			if s.cpu.DecidePickup(*g.Slots[slot], active.Hand) {
				return g.PickUp(seat, slot)
			}
		}
		return g.Draw(seat)
	})
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrIllegalAction):
		// Superseded by a human action or a newer snapshot; drop it.
	default:
		s.log.WithError(err).Warn("cpu move failed")
	}
}
