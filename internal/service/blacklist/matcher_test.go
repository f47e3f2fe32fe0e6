package blacklist

import (
	"testing"

	"polisure-service/internal/domain/blacklist"
)

func identityEntry(op blacklist.Operator, rule blacklist.IdentityRule) blacklist.Entry {
	rule.Operator = op
	return blacklist.Entry{
		ID:       "identity-1",
		Category: blacklist.CategoryIdentity,
		Identity: &rule,
	}
}

func TestIdentityOperatorSemantics(t *testing.T) {
	rule := blacklist.IdentityRule{LastName: "Smith", Email: "x@y.com"}

	tests := []struct {
		name      string
		operator  blacklist.Operator
		candidate blacklist.Candidate
		want      bool
	}{
		{
			name:      "AND requires every constrained field",
			operator:  blacklist.OperatorAND,
			candidate: blacklist.Candidate{LastName: "Smith", Email: "other@y.com"},
			want:      false,
		},
		{
			name:      "AND matches when all fields agree",
			operator:  blacklist.OperatorAND,
			candidate: blacklist.Candidate{LastName: "Smith", Email: "x@y.com"},
			want:      true,
		},
		{
			name:      "OR matches on any constrained field",
			operator:  blacklist.OperatorOR,
			candidate: blacklist.Candidate{LastName: "Smith", Email: "other@y.com"},
			want:      true,
		},
		{
			name:      "OR with no matching field",
			operator:  blacklist.OperatorOR,
			candidate: blacklist.Candidate{LastName: "Jones", Email: "other@y.com"},
			want:      false,
		},
		{
			name:      "matching is case-insensitive and trimmed",
			operator:  blacklist.OperatorAND,
			candidate: blacklist.Candidate{LastName: "  SMITH ", Email: "X@Y.COM"},
			want:      true,
		},
		{
			name:      "empty candidate fields never match",
			operator:  blacklist.OperatorOR,
			candidate: blacklist.Candidate{},
			want:      false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMatcher()
			m.Replace([]blacklist.Entry{identityEntry(tc.operator, rule)})

			got := m.Match(tc.candidate) != nil
			if got != tc.want {
				t.Errorf("Match = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIdentityRuleWithNoFieldsNeverMatches(t *testing.T) {
	m := NewMatcher()
	m.Replace([]blacklist.Entry{identityEntry(blacklist.OperatorOR, blacklist.IdentityRule{})})

	if m.Match(blacklist.Candidate{LastName: "Smith", Email: "x@y.com"}) != nil {
		t.Fatal("field-less identity rule matched, would block everyone")
	}
}

func TestNetworkMatching(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		clientIP string
		want     bool
	}{
		{"cidr contains", "10.0.0.0/24", "10.0.0.5", true},
		{"cidr excludes", "10.0.0.0/24", "10.0.1.5", false},
		{"exact address", "192.168.1.10", "192.168.1.10", true},
		{"exact mismatch", "192.168.1.10", "192.168.1.11", false},
		{"ipv6 range", "2001:db8::/32", "2001:db8::1", true},
		{"invalid candidate ip", "10.0.0.0/24", "not-an-ip", false},
		{"empty candidate ip", "10.0.0.0/24", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMatcher()
			m.Replace([]blacklist.Entry{{
				ID:       "net-1",
				Category: blacklist.CategoryNetwork,
				Network:  &blacklist.NetworkRule{Address: tc.address},
			}})

			got := m.Match(blacklist.Candidate{ClientIP: tc.clientIP}) != nil
			if got != tc.want {
				t.Errorf("Match(%q against %q) = %v, want %v", tc.clientIP, tc.address, got, tc.want)
			}
		})
	}
}

func TestLocationMatching(t *testing.T) {
	tests := []struct {
		name     string
		rule     string
		postcode string
		want     bool
	}{
		{"normalized equality", "sw1a 1aa", "SW1A1AA", true},
		{"district rule matches full postcode", "SW1A", "SW1A 1AA", true},
		{"different postcode", "SW1A 1AA", "EC2A 4BX", false},
		{"empty candidate", "SW1A 1AA", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMatcher()
			m.Replace([]blacklist.Entry{{
				ID:       "loc-1",
				Category: blacklist.CategoryLocation,
				Location: &blacklist.LocationRule{Postcode: tc.rule},
			}})

			got := m.Match(blacklist.Candidate{Postcode: tc.postcode}) != nil
			if got != tc.want {
				t.Errorf("Match(%q against %q) = %v, want %v", tc.postcode, tc.rule, got, tc.want)
			}
		})
	}
}

func TestAssetMatching(t *testing.T) {
	m := NewMatcher()
	m.Replace([]blacklist.Entry{{
		ID:       "asset-1",
		Category: blacklist.CategoryAsset,
		Asset:    &blacklist.AssetRule{AssetTag: "AB12 CDE"},
	}})

	if m.Match(blacklist.Candidate{AssetTag: "ab12cde"}) == nil {
		t.Error("normalized asset tag did not match")
	}
	if m.Match(blacklist.Candidate{AssetTag: "XY99 ZZZ"}) != nil {
		t.Error("unrelated asset tag matched")
	}
	if m.Match(blacklist.Candidate{}) != nil {
		t.Error("empty asset tag matched")
	}
}

func TestFirstMatchWins(t *testing.T) {
	m := NewMatcher()
	m.Replace([]blacklist.Entry{
		{ID: "first", Category: blacklist.CategoryNetwork, Network: &blacklist.NetworkRule{Address: "10.0.0.0/8"}},
		{ID: "second", Category: blacklist.CategoryNetwork, Network: &blacklist.NetworkRule{Address: "10.0.0.5"}},
	})

	got := m.Match(blacklist.Candidate{ClientIP: "10.0.0.5"})
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.ID != "first" {
		t.Errorf("matched entry %q, want the first matching entry", got.ID)
	}
}

func TestUpsertAndRemove(t *testing.T) {
	m := NewMatcher()

	entry := blacklist.Entry{
		ID:       "e1",
		Category: blacklist.CategoryAsset,
		Asset:    &blacklist.AssetRule{AssetTag: "AB12CDE"},
	}
	m.Upsert(entry)
	if m.Match(blacklist.Candidate{AssetTag: "AB12CDE"}) == nil {
		t.Fatal("upserted entry not live")
	}

	entry.Asset = &blacklist.AssetRule{AssetTag: "XY99ZZZ"}
	m.Upsert(entry)
	if m.Match(blacklist.Candidate{AssetTag: "AB12CDE"}) != nil {
		t.Error("stale rule still matches after upsert")
	}
	if m.Match(blacklist.Candidate{AssetTag: "XY99ZZZ"}) == nil {
		t.Error("replaced rule not live")
	}

	m.Remove("e1")
	if m.Len() != 0 {
		t.Errorf("Len = %d after Remove, want 0", m.Len())
	}
}
