// Package store defines the shared-state store the game synchronizes
// through: a per-room document with subscribe and atomic
// read-modify-write primitives. The Redis implementation backs real
// deployments; the memory implementation backs tests and single-process
// play with identical semantics.
package store

import (
	"context"
	"errors"

	"github.com/onboroido/HotpotGame/engine"
)

var (
	// ErrNotFound: the room document does not exist. Subscribers treat a
	// missing document as "still waiting", not a failure.
	ErrNotFound = errors.New("store: room not found")
	// ErrConflict: an optimistic transaction kept colliding with
	// concurrent commits and gave up after its retry budget.
	ErrConflict = errors.New("store: transaction conflict")
)

// TxFunc computes the next document from the current one, in place. It must
// be a pure function of its argument: the store re-runs it against a
// freshly read document whenever the optimistic commit fails, so any hidden
// side effect would be applied more than once. Returning an error aborts
// the transaction without writing.
type TxFunc func(*engine.GameState) error

// Store is a per-room document store with subscribe/transact primitives.
// Snapshots are delivered to subscribers in commit order; every delivered
// document is a private deep copy the receiver may mutate freely.
type Store interface {
	// Load returns the current document, or ErrNotFound.
	Load(ctx context.Context, room string) (*engine.GameState, error)

	// Write unconditionally replaces the document (room bootstrap).
	Write(ctx context.Context, room string, st *engine.GameState) error

	// Transact atomically applies fn to the current document and commits
	// the result, retrying on concurrent modification. Returns the
	// committed document.
	Transact(ctx context.Context, room string, fn TxFunc) (*engine.GameState, error)

	// Subscribe streams committed snapshots until cancel is called or
	// ctx ends. The current document, if any, is delivered first.
	Subscribe(ctx context.Context, room string) (<-chan *engine.GameState, func(), error)
}
