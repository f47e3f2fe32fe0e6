package blacklist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	auditdomain "polisure-service/internal/domain/audit"
	"polisure-service/internal/domain/blacklist"
	auditlog "polisure-service/internal/pkg/audit"
	xerrors "polisure-service/internal/pkg/errors"
)

type fakeStore struct {
	entries map[string]blacklist.Entry
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]blacklist.Entry)}
}

func (s *fakeStore) List(context.Context) ([]blacklist.Entry, error) {
	out := make([]blacklist.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out, nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*blacklist.Entry, error) {
	e, ok := s.entries[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return &e, nil
}

func (s *fakeStore) Create(_ context.Context, entry *blacklist.Entry) error {
	s.entries[entry.ID] = *entry
	return nil
}

func (s *fakeStore) Update(_ context.Context, entry *blacklist.Entry) error {
	s.entries[entry.ID] = *entry
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	delete(s.entries, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *auditlog.Log) {
	t.Helper()
	store := newFakeStore()
	log := auditlog.NewLog(100, zap.NewNop())
	svc := NewService(store, NewMatcher(), log, zap.NewNop())
	return svc, store, log
}

func TestCreateMakesEntryLive(t *testing.T) {
	svc, store, log := newTestService(t)
	ctx := context.Background()

	entry, err := svc.Create(ctx, &blacklist.CreateEntryRequest{
		Category: blacklist.CategoryAsset,
		Reason:   "stolen vehicle",
		Asset:    &blacklist.AssetRuleRequest{AssetTag: "KAA 123X"},
	}, Actor{PrincipalID: 1, Email: "admin@example.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if entry.ID == "" {
		t.Fatal("expected generated entry ID")
	}
	if _, ok := store.entries[entry.ID]; !ok {
		t.Fatal("entry not persisted")
	}

	// Live immediately, no Load required.
	err = svc.Check(ctx, blacklist.Candidate{AssetTag: "kaa123x"})
	if !errors.Is(err, xerrors.ErrBlacklistDenied) {
		t.Fatalf("Check after Create = %v, want ErrBlacklistDenied", err)
	}

	actions := make(map[string]int)
	for _, e := range log.Query(10, 0) {
		actions[e.Action]++
	}
	if actions[auditdomain.ActionBlacklistCreated] != 1 || actions[auditdomain.ActionBlacklistDenied] != 1 {
		t.Fatalf("audit actions = %v, want one created and one denied", actions)
	}
}

func TestCheckDoesNotRevealMatchedField(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &blacklist.CreateEntryRequest{
		Category: blacklist.CategoryIdentity,
		Reason:   "known fraudster",
		Identity: &blacklist.IdentityRuleRequest{
			Email:    "fraud@example.com",
			Operator: blacklist.OperatorOR,
		},
	}, Actor{Email: "admin@example.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = svc.Check(ctx, blacklist.Candidate{Email: "fraud@example.com"})
	if !errors.Is(err, xerrors.ErrBlacklistDenied) {
		t.Fatalf("Check = %v, want ErrBlacklistDenied", err)
	}
	for _, leak := range []string{"fraud@example.com", "email", "identity", "known fraudster"} {
		if strings.Contains(strings.ToLower(err.Error()), leak) {
			t.Fatalf("denial error %q leaks %q", err.Error(), leak)
		}
	}
}

func TestCreateRejectsInvalidEntry(t *testing.T) {
	svc, store, _ := newTestService(t)

	// Identity category with no rule block.
	_, err := svc.Create(context.Background(), &blacklist.CreateEntryRequest{
		Category: blacklist.CategoryIdentity,
		Reason:   "incomplete",
	}, Actor{Email: "admin@example.com"})
	if !errors.Is(err, xerrors.ErrInvalidInput) {
		t.Fatalf("Create = %v, want ErrInvalidInput", err)
	}
	if len(store.entries) != 0 {
		t.Fatal("invalid entry must not be persisted")
	}
}

func TestDeleteRemovesEntryFromSnapshot(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	entry, err := svc.Create(ctx, &blacklist.CreateEntryRequest{
		Category: blacklist.CategoryNetwork,
		Reason:   "abusive range",
		Network:  &blacklist.NetworkRuleRequest{Address: "10.0.0.0/24"},
	}, Actor{Email: "admin@example.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Check(ctx, blacklist.Candidate{ClientIP: "10.0.0.7"}); err == nil {
		t.Fatal("expected denial before delete")
	}

	if err := svc.Delete(ctx, entry.ID, Actor{Email: "admin@example.com"}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Check(ctx, blacklist.Candidate{ClientIP: "10.0.0.7"}); err != nil {
		t.Fatalf("Check after Delete = %v, want nil", err)
	}

	if err := svc.Delete(ctx, entry.ID, Actor{Email: "admin@example.com"}); !errors.Is(err, xerrors.ErrNotFound) {
		t.Fatalf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestSeedFromFileSkipsInvalidEntries(t *testing.T) {
	svc, store, _ := newTestService(t)

	seed := `entries:
  - category: asset
    reason: stolen vehicle
    asset:
      asset_tag: "KBB 456Y"
  - category: network
    reason: bad address
    network:
      address: "not-an-ip"
  - category: location
    reason: flood zone
    location:
      postcode: "90210"
`
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}

	n, err := svc.SeedFromFile(context.Background(), path)
	if err != nil {
		t.Fatalf("SeedFromFile: %v", err)
	}
	if n != 2 {
		t.Fatalf("loaded %d entries, want 2 (invalid network entry skipped)", n)
	}
	if len(store.entries) != 2 {
		t.Fatalf("store has %d entries, want 2", len(store.entries))
	}
	if err := svc.Check(context.Background(), blacklist.Candidate{Postcode: "90 210"}); err == nil {
		t.Fatal("seeded postcode entry should deny normalized match")
	}
}
