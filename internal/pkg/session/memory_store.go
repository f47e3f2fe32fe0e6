// internal/pkg/session/memory_store.go
package session

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	xerrors "polisure-service/internal/pkg/errors"
)

const shardCount = 16

type storeShard struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// MemoryStore is the process-local session table. Tokens are spread
// across shards keyed by fnv hash so unrelated sessions do not contend;
// the check-then-refresh-or-delete sequence in Touch runs under the
// owning shard lock, so a concurrent Validate can never resurrect a
// session another caller just expired.
//
// Nothing here survives a restart and nothing is visible to other
// process instances; a load-balanced deployment must use RedisStore.
type MemoryStore struct {
	shards [shardCount]*storeShard
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	for i := range s.shards {
		s.shards[i] = &storeShard{sessions: make(map[string]*Session)}
	}
	return s
}

func (s *MemoryStore) shardFor(token string) *storeShard {
	h := fnv.New32a()
	h.Write([]byte(token))
	return s.shards[h.Sum32()%shardCount]
}

func (s *MemoryStore) Save(_ context.Context, sess *Session, _ time.Duration) error {
	sh := s.shardFor(sess.Token)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	cp := *sess
	sh.sessions[sess.Token] = &cp
	return nil
}

func (s *MemoryStore) Touch(_ context.Context, token string, now time.Time, valid ValidFunc) (*Session, error) {
	sh := s.shardFor(token)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, ok := sh.sessions[token]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	if !valid(sess, now) {
		// lazy eviction on first failed validation after expiry
		delete(sh.sessions, token)
		return nil, xerrors.ErrNotFound
	}

	sess.LastActivityAt = now
	cp := *sess
	return &cp, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	sh := s.shardFor(token)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	delete(sh.sessions, token)
	return nil
}

func (s *MemoryStore) Sweep(_ context.Context, now time.Time, valid ValidFunc) (int, error) {
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for token, sess := range sh.sessions {
			if !valid(sess, now) {
				delete(sh.sessions, token)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed, nil
}
