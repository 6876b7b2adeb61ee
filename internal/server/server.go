// Package server exposes the room entry points over HTTP: room creation
// and a per-client websocket that joins a seat, streams state views, and
// accepts the four in-game actions.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"

	"github.com/onboroido/HotpotGame/engine"
	"github.com/onboroido/HotpotGame/internal/game"
	"github.com/onboroido/HotpotGame/internal/store"
)

// Frame is a server-to-client message. Today the only frame is the state
// push; the type tag leaves room for more.
type Frame struct {
	Type  string     `json:"type"`
	State *game.View `json:"state,omitempty"`
}

// ActionFrame is a client-to-server message.
type ActionFrame struct {
	Type  string `json:"type"` // start | reset | advance | draw | pickup | discard
	Slot  int    `json:"slot,omitempty"`
	Index int    `json:"index,omitempty"`
}

// Server routes room traffic onto sessions.
type Server struct {
	store      store.Store
	log        *logrus.Logger
	table      engine.ScoreTable
	thinkDelay time.Duration
	seed       func() uint64
	mux        *http.ServeMux
}

// New builds a server on the given store.
func New(st store.Store, log *logrus.Logger, table engine.ScoreTable, thinkDelay time.Duration) *Server {
	s := &Server{
		store:      st,
		log:        log,
		table:      table,
		thinkDelay: thinkDelay,
		seed:       func() uint64 { return uint64(time.Now().UnixNano()) },
		mux:        http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /rooms", s.handleCreateRoom)
	s.mux.HandleFunc("GET /rooms/{room}/ws", s.handleWS)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	room, err := game.CreateRoom(r.Context(), s.store, s.seed(), s.table)
	if err != nil {
		s.log.WithError(err).Error("room creation failed")
		http.Error(w, "room creation failed", http.StatusInternalServerError)
		return
	}
	s.log.WithField("room", room).Info("room created")
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"roomId": room})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.WithError(err).Debug("websocket accept failed")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sess := game.NewSession(s.store, room, name, s.log, func(v game.View) {
		writeCtx, done := context.WithTimeout(ctx, 10*time.Second)
		defer done()
		if err := wsjson.Write(writeCtx, conn, Frame{Type: "state", State: &v}); err != nil {
			cancel()
		}
	})
	sess.SetThinkDelay(s.thinkDelay)

	if err := sess.Join(ctx); err != nil {
		reason := "join rejected"
		if errors.Is(err, store.ErrNotFound) {
			reason = "no such room"
		}
		s.log.WithFields(logrus.Fields{"room": room, "player": name}).WithError(err).Debug(reason)
		_ = conn.Close(websocket.StatusPolicyViolation, reason)
		return
	}
	// Best-effort seat release once the connection is gone; the request
	// context is already cancelled by then, so use a fresh one.
	defer func() {
		releaseCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		sess.Leave(releaseCtx)
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}()

	go func() {
		if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.WithField("room", room).WithError(err).Warn("session stream ended")
		}
	}()

	for {
		var act ActionFrame
		if err := wsjson.Read(ctx, conn, &act); err != nil {
			return
		}
		s.dispatch(ctx, sess, act)
	}
}

func (s *Server) dispatch(ctx context.Context, sess *game.Session, act ActionFrame) {
	switch act.Type {
	case "start":
		sess.Start(ctx, false)
	case "reset":
		sess.Start(ctx, true)
	case "advance":
		sess.Advance(ctx)
	case "draw":
		sess.Draw(ctx)
	case "pickup":
		sess.PickUp(ctx, act.Slot)
	case "discard":
		sess.Discard(ctx, act.Index)
	default:
		s.log.WithField("type", act.Type).Debug("unknown action frame")
	}
}
