// internal/service/blacklist/matcher.go
package blacklist

import (
	"net/netip"
	"strings"
	"sync"

	"polisure-service/internal/domain/blacklist"
)

// Matcher evaluates candidates against the in-memory blacklist snapshot.
// Match is pure: it answers only "is this blocked", leaving denial
// handling and audit logging to the caller.
type Matcher struct {
	mu      sync.RWMutex
	entries []blacklist.Entry
}

func NewMatcher() *Matcher {
	return &Matcher{}
}

// Replace swaps the full snapshot, e.g. after loading from the store.
func (m *Matcher) Replace(entries []blacklist.Entry) {
	cp := make([]blacklist.Entry, len(entries))
	copy(cp, entries)

	m.mu.Lock()
	m.entries = cp
	m.mu.Unlock()
}

// Upsert adds or replaces the entry with the same ID.
func (m *Matcher) Upsert(entry blacklist.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.entries {
		if m.entries[i].ID == entry.ID {
			m.entries[i] = entry
			return
		}
	}
	m.entries = append(m.entries, entry)
}

// Remove drops the entry with the given ID, if present.
func (m *Matcher) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.entries {
		if m.entries[i].ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return
		}
	}
}

// Len returns the snapshot size.
func (m *Matcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Match scans the snapshot and returns the first matching entry, or nil
// when the candidate is clear. Evaluation order is unspecified beyond the
// first match short-circuiting the scan.
func (m *Matcher) Match(c blacklist.Candidate) *blacklist.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.entries {
		e := &m.entries[i]
		if matchEntry(e, c) {
			cp := *e
			return &cp
		}
	}
	return nil
}

func matchEntry(e *blacklist.Entry, c blacklist.Candidate) bool {
	switch e.Category {
	case blacklist.CategoryIdentity:
		return e.Identity != nil && matchIdentity(e.Identity, c)
	case blacklist.CategoryNetwork:
		return e.Network != nil && matchNetwork(e.Network, c.ClientIP)
	case blacklist.CategoryLocation:
		return e.Location != nil && matchLocation(e.Location, c.Postcode)
	case blacklist.CategoryAsset:
		return e.Asset != nil && matchAsset(e.Asset, c.AssetTag)
	}
	return false
}

// matchIdentity compares every field the rule constrains against the
// candidate. AND requires all constrained fields to match; OR any one.
// A rule with no fields set never matches.
func matchIdentity(r *blacklist.IdentityRule, c blacklist.Candidate) bool {
	type pair struct{ rule, cand string }
	pairs := []pair{
		{r.FirstName, c.FirstName},
		{r.LastName, c.LastName},
		{r.Email, c.Email},
		{r.DateOfBirth, c.DateOfBirth},
	}

	constrained := 0
	matched := 0
	for _, p := range pairs {
		if strings.TrimSpace(p.rule) == "" {
			continue
		}
		constrained++
		if foldEqual(p.rule, p.cand) {
			matched++
		}
	}

	if constrained == 0 {
		return false
	}
	if r.Operator == blacklist.OperatorAND {
		return matched == constrained
	}
	return matched > 0
}

func matchNetwork(r *blacklist.NetworkRule, clientIP string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(clientIP))
	if err != nil {
		return false
	}

	if r.IsRange() {
		prefix, err := netip.ParsePrefix(strings.TrimSpace(r.Address))
		if err != nil {
			return false
		}
		return prefix.Contains(addr)
	}

	ruleAddr, err := netip.ParseAddr(strings.TrimSpace(r.Address))
	if err != nil {
		return false
	}
	return ruleAddr == addr
}

// matchLocation accepts exact normalized equality or either value being a
// substring of the other, so a district rule ("SW1A") catches full
// postcodes ("SW1A 1AA") and vice versa.
func matchLocation(r *blacklist.LocationRule, postcode string) bool {
	rule := normalizeKey(r.Postcode)
	cand := normalizeKey(postcode)
	if rule == "" || cand == "" {
		return false
	}
	return rule == cand || strings.Contains(cand, rule) || strings.Contains(rule, cand)
}

func matchAsset(r *blacklist.AssetRule, assetTag string) bool {
	rule := normalizeKey(r.AssetTag)
	cand := normalizeKey(assetTag)
	if rule == "" || cand == "" {
		return false
	}
	return rule == cand
}

// foldEqual compares trimmed, case-folded values; empty candidate fields
// never match.
func foldEqual(rule, cand string) bool {
	rule = strings.TrimSpace(rule)
	cand = strings.TrimSpace(cand)
	if rule == "" || cand == "" {
		return false
	}
	return strings.EqualFold(rule, cand)
}

// normalizeKey case-folds and strips all whitespace.
func normalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
