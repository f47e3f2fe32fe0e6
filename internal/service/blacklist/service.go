// internal/service/blacklist/service.go
package blacklist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	auditdomain "polisure-service/internal/domain/audit"
	"polisure-service/internal/domain/blacklist"
	auditlog "polisure-service/internal/pkg/audit"
	xerrors "polisure-service/internal/pkg/errors"
)

// Store is the durable backing for blacklist entries.
type Store interface {
	List(ctx context.Context) ([]blacklist.Entry, error)
	GetByID(ctx context.Context, id string) (*blacklist.Entry, error)
	Create(ctx context.Context, entry *blacklist.Entry) error
	Update(ctx context.Context, entry *blacklist.Entry) error
	Delete(ctx context.Context, id string) error
}

// Actor identifies who performed an administrative mutation, for audit.
type Actor struct {
	PrincipalID int64
	Email       string
	ClientIP    string
	UserAgent   string
}

// Service owns blacklist CRUD and screening. Mutations write through the
// store and keep the matcher snapshot current; every mutation and every
// denial is recorded in the audit log.
type Service struct {
	store   Store
	matcher *Matcher
	audit   *auditlog.Log
	logger  *zap.Logger
}

func NewService(store Store, matcher *Matcher, audit *auditlog.Log, logger *zap.Logger) *Service {
	return &Service{
		store:   store,
		matcher: matcher,
		audit:   audit,
		logger:  logger,
	}
}

// Load populates the matcher snapshot from the store. Called at startup
// and safe to call again to resynchronize.
func (s *Service) Load(ctx context.Context) error {
	entries, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load blacklist entries: %w", err)
	}
	s.matcher.Replace(entries)
	s.logger.Info("blacklist loaded", zap.Int("entries", len(entries)))
	return nil
}

// List returns all stored entries.
func (s *Service) List(ctx context.Context) ([]blacklist.Entry, error) {
	return s.store.List(ctx)
}

// Create validates and stores a new entry, then makes it live.
func (s *Service) Create(ctx context.Context, req *blacklist.CreateEntryRequest, actor Actor) (*blacklist.Entry, error) {
	entry := req.ToEntry()
	entry.ID = uuid.NewString()
	entry.CreatedBy = actor.Email

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to persist blacklist entry: %w", err)
	}
	s.matcher.Upsert(*entry)

	s.audit.Record(ctx, auditdomain.Record{
		PrincipalID:    actor.PrincipalID,
		PrincipalEmail: actor.Email,
		Action:         auditdomain.ActionBlacklistCreated,
		Resource:       "blacklist/" + entry.ID,
		Details:        string(entry.Category),
		ClientIP:       actor.ClientIP,
		UserAgent:      actor.UserAgent,
	})

	return entry, nil
}

// Update replaces an existing entry's rule and reason.
func (s *Service) Update(ctx context.Context, id string, req *blacklist.UpdateEntryRequest, actor Actor) (*blacklist.Entry, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entry := req.ToEntry()
	entry.ID = existing.ID
	entry.CreatedBy = existing.CreatedBy
	entry.CreatedAt = existing.CreatedAt

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update blacklist entry: %w", err)
	}
	s.matcher.Upsert(*entry)

	s.audit.Record(ctx, auditdomain.Record{
		PrincipalID:    actor.PrincipalID,
		PrincipalEmail: actor.Email,
		Action:         auditdomain.ActionBlacklistUpdated,
		Resource:       "blacklist/" + entry.ID,
		Details:        string(entry.Category),
		ClientIP:       actor.ClientIP,
		UserAgent:      actor.UserAgent,
	})

	return entry, nil
}

// Delete removes an entry from the store and the live snapshot.
func (s *Service) Delete(ctx context.Context, id string, actor Actor) error {
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete blacklist entry: %w", err)
	}
	s.matcher.Remove(id)

	s.audit.Record(ctx, auditdomain.Record{
		PrincipalID:    actor.PrincipalID,
		PrincipalEmail: actor.Email,
		Action:         auditdomain.ActionBlacklistDeleted,
		Resource:       "blacklist/" + id,
		ClientIP:       actor.ClientIP,
		UserAgent:      actor.UserAgent,
	})

	return nil
}

// Check screens a candidate and returns ErrBlacklistDenied on a match.
// The matched entry is recorded in the audit log but never surfaced to
// the caller: the denial must not reveal which field or entry tripped it.
func (s *Service) Check(ctx context.Context, c blacklist.Candidate) error {
	entry := s.matcher.Match(c)
	if entry == nil {
		return nil
	}

	s.audit.Record(ctx, auditdomain.Record{
		Action:    auditdomain.ActionBlacklistDenied,
		Resource:  "blacklist/" + entry.ID,
		Details:   string(entry.Category),
		ClientIP:  c.ClientIP,
		UserAgent: "",
	})
	s.logger.Warn("request denied by blacklist",
		zap.String("entry_id", entry.ID),
		zap.String("category", string(entry.Category)),
		zap.String("client_ip", c.ClientIP),
	)

	return xerrors.ErrBlacklistDenied
}
