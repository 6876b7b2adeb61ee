package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/onboroido/HotpotGame/engine"
)

const (
	keyPrefix     = "hotpot:room:"
	channelSuffix = ":events"

	// txRetries bounds the optimistic-lock retry loop. Conflicts are rare
	// (four seats, one active at a time) so a handful of retries is ample.
	txRetries = 16

	// roomTTL expires abandoned room documents; every commit renews it.
	roomTTL = 24 * time.Hour
)

// Redis is the Store implementation used in deployments: the room document
// lives as JSON under one key, transactions use the WATCH/MULTI/EXEC
// optimistic-lock idiom, and snapshot fan-out rides pub/sub. The PUBLISH is
// queued inside the same MULTI as the SET, so subscribers receive snapshots
// in exactly the order the store committed them.
type Redis struct {
	client *redis.Client
	log    *logrus.Entry
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, log *logrus.Logger) *Redis {
	return &Redis{
		client: client,
		log:    log.WithField("component", "store"),
	}
}

func roomKey(room string) string     { return keyPrefix + room }
func roomChannel(room string) string { return keyPrefix + room + channelSuffix }

// Load implements Store.
func (s *Redis) Load(ctx context.Context, room string) (*engine.GameState, error) {
	data, err := s.client.Get(ctx, roomKey(room)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load room %s: %w", room, err)
	}
	return decode(data)
}

// Write implements Store.
func (s *Redis) Write(ctx context.Context, room string, st *engine.GameState) error {
	doc := st.Clone()
	doc.Seq++
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", room, err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, roomKey(room), payload, roomTTL)
		pipe.Publish(ctx, roomChannel(room), payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("write room %s: %w", room, err)
	}
	return nil
}

// Transact implements Store. fn runs against the freshly watched document;
// if another actor commits between our read and our EXEC, the transaction
// fails cleanly and is retried against the new value. fn must therefore be
// pure: it will run more than once under contention.
func (s *Redis) Transact(ctx context.Context, room string, fn TxFunc) (*engine.GameState, error) {
	key := roomKey(room)
	var committed *engine.GameState

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		doc, err := decode(data)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		doc.Seq++
		payload, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, roomTTL)
			pipe.Publish(ctx, roomChannel(room), payload)
			return nil
		})
		if err == nil {
			committed = doc
		}
		return err
	}

	for attempt := 0; attempt < txRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return committed, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			s.log.WithFields(logrus.Fields{"room": room, "attempt": attempt}).
				Debug("transaction conflict, retrying")
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("room %s: %w", room, ErrConflict)
}

// Subscribe implements Store. The pub/sub subscription is established
// before the initial read so no commit can fall between them unseen;
// subscribers drop stale deliveries by sequence number.
func (s *Redis) Subscribe(ctx context.Context, room string) (<-chan *engine.GameState, func(), error) {
	sub := s.client.Subscribe(ctx, roomChannel(room))
	// Force the subscription onto the wire before the initial read.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe room %s: %w", room, err)
	}

	out := make(chan *engine.GameState, 64)
	go func() {
		defer close(out)
		var lastSeq int64

		if doc, err := s.Load(ctx, room); err == nil {
			lastSeq = doc.Seq
			push(out, doc)
		} else if !errors.Is(err, ErrNotFound) {
			s.log.WithField("room", room).WithError(err).Warn("initial snapshot load failed")
		}

		for msg := range sub.Channel() {
			doc, err := decode([]byte(msg.Payload))
			if err != nil {
				s.log.WithField("room", room).WithError(err).Warn("dropping malformed snapshot")
				continue
			}
			if doc.Seq <= lastSeq {
				continue
			}
			lastSeq = doc.Seq
			push(out, doc)
		}
	}()

	cancel := func() { _ = sub.Close() }
	return out, cancel, nil
}

func decode(data []byte) (*engine.GameState, error) {
	var doc engine.GameState
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode room document: %w", err)
	}
	return &doc, nil
}
