package store

import (
	"context"
	"sync"

	"github.com/onboroido/HotpotGame/engine"
)

// Memory is an in-process Store. Commit order is the order subscribers see;
// a slow subscriber loses intermediate snapshots, never the latest one
// (snapshots are full documents, so the latest supersedes anything missed).
type Memory struct {
	mu   sync.Mutex
	docs map[string]*engine.GameState
	subs map[string][]chan *engine.GameState
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		docs: make(map[string]*engine.GameState),
		subs: make(map[string][]chan *engine.GameState),
	}
}

// Load implements Store.
func (m *Memory) Load(_ context.Context, room string) (*engine.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[room]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.Clone(), nil
}

// Write implements Store.
func (m *Memory) Write(_ context.Context, room string, st *engine.GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commit(room, st.Clone())
	return nil
}

// Transact implements Store. The lock makes the read-modify-write atomic,
// so unlike the Redis implementation there is nothing to retry; fn still
// runs against a private copy and the document only changes when fn
// succeeds.
func (m *Memory) Transact(_ context.Context, room string, fn TxFunc) (*engine.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[room]
	if !ok {
		return nil, ErrNotFound
	}
	next := doc.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	m.commit(room, next)
	return next.Clone(), nil
}

// commit stores the document and fans it out. Callers hold the lock and
// hand over ownership of st.
func (m *Memory) commit(room string, st *engine.GameState) {
	st.Seq = 0
	if prev, ok := m.docs[room]; ok {
		st.Seq = prev.Seq
	}
	st.Seq++
	m.docs[room] = st
	for _, ch := range m.subs[room] {
		push(ch, st.Clone())
	}
}

// push delivers without blocking: when the buffer is full the oldest
// snapshot is dropped to make room for the newest.
func push(ch chan *engine.GameState, st *engine.GameState) {
	for {
		select {
		case ch <- st:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

// Subscribe implements Store.
func (m *Memory) Subscribe(ctx context.Context, room string) (<-chan *engine.GameState, func(), error) {
	ch := make(chan *engine.GameState, 64)
	m.mu.Lock()
	m.subs[room] = append(m.subs[room], ch)
	if doc, ok := m.docs[room]; ok {
		push(ch, doc.Clone())
	}
	m.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			subs := m.subs[room]
			for i, c := range subs {
				if c == ch {
					m.subs[room] = append(subs[:i], subs[i+1:]...)
					break
				}
			}
			m.mu.Unlock()
		})
	}
	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}
	return ch, cancel, nil
}
