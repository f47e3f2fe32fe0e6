// internal/pkg/audit/log.go
package audit

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"polisure-service/internal/domain/audit"
)

// DefaultCap bounds the in-memory log; once exceeded the oldest entries
// are dropped FIFO. The log is a diagnostic aid, not a compliance ledger:
// a deployment needing a durable trail must persist entries to
// append-only storage instead.
const DefaultCap = 10000

// Log is a bounded, append-only record of security-relevant actions.
// Every entry carries a blake3 hash chained over its predecessor, so
// mutation of a retained entry is detectable via VerifyChain.
type Log struct {
	mu      sync.Mutex
	entries []audit.Entry
	cap     int
	// anchor is the chain hash of the most recently evicted entry; the
	// oldest retained entry chains from it.
	anchor string

	logger *zap.Logger
	clock  func() time.Time
}

func NewLog(capacity int, logger *zap.Logger) *Log {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{
		entries: make([]audit.Entry, 0, capacity),
		cap:     capacity,
		logger:  logger,
		clock:   time.Now,
	}
}

// Record appends an entry. It never fails and never blocks on I/O, so
// callers can treat it as atomic with the action being recorded.
func (l *Log) Record(_ context.Context, rec audit.Record) audit.Entry {
	l.mu.Lock()

	entry := audit.Entry{
		ID:             ulid.Make().String(),
		PrincipalID:    rec.PrincipalID,
		PrincipalEmail: rec.PrincipalEmail,
		Action:         rec.Action,
		Resource:       rec.Resource,
		Details:        rec.Details,
		ClientIP:       rec.ClientIP,
		UserAgent:      rec.UserAgent,
		Timestamp:      l.clock(),
	}

	prev := l.anchor
	if n := len(l.entries); n > 0 {
		prev = l.entries[n-1].ChainHash
	}
	entry.ChainHash = chainHash(prev, &entry)

	if len(l.entries) == l.cap {
		l.anchor = l.entries[0].ChainHash
		copy(l.entries, l.entries[1:])
		l.entries[len(l.entries)-1] = entry
	} else {
		l.entries = append(l.entries, entry)
	}
	l.mu.Unlock()

	l.logger.Info("audit",
		zap.String("action", entry.Action),
		zap.String("resource", entry.Resource),
		zap.Int64("principal_id", entry.PrincipalID),
		zap.String("client_ip", entry.ClientIP),
	)

	return entry
}

// Query returns up to limit entries sorted newest-first, skipping offset.
func (l *Log) Query(limit, offset int) []audit.Entry {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.entries)
	start := n - 1 - offset
	out := make([]audit.Entry, 0, limit)
	for i := start; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// VerifyChain recomputes every retained entry's chain hash from the
// current anchor and reports the first mismatch.
func (l *Log) VerifyChain() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.anchor
	for i := range l.entries {
		e := l.entries[i]
		if got := chainHash(prev, &e); got != e.ChainHash {
			return fmt.Errorf("audit chain broken at entry %s (index %d)", e.ID, i)
		}
		prev = e.ChainHash
	}
	return nil
}

// chainHash digests the previous hash plus the entry's content (without
// its own ChainHash field).
func chainHash(prev string, e *audit.Entry) string {
	h := blake3.New()
	h.Write([]byte(prev))

	content := audit.Entry{
		ID:             e.ID,
		PrincipalID:    e.PrincipalID,
		PrincipalEmail: e.PrincipalEmail,
		Action:         e.Action,
		Resource:       e.Resource,
		Details:        e.Details,
		ClientIP:       e.ClientIP,
		UserAgent:      e.UserAgent,
		Timestamp:      e.Timestamp,
	}
	data, _ := json.Marshal(content)
	h.Write(data)

	return hex.EncodeToString(h.Sum(nil))
}
