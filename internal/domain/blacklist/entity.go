// internal/domain/blacklist/entity.go
package blacklist

import (
	"net/netip"
	"strings"
	"time"

	xerrors "polisure-service/internal/pkg/errors"
)

// Category tags the single rule carried by a blacklist entry.
type Category string

const (
	CategoryIdentity Category = "identity"
	CategoryNetwork  Category = "network"
	CategoryLocation Category = "location"
	CategoryAsset    Category = "asset"
)

// Operator controls how an identity rule combines its fields.
type Operator string

const (
	OperatorAND Operator = "AND"
	OperatorOR  Operator = "OR"
)

// IdentityRule denies by personal attributes. Only the non-empty fields
// participate in matching; Operator decides whether all of them (AND) or
// any one of them (OR) must match.
type IdentityRule struct {
	FirstName   string   `json:"first_name,omitempty" db:"first_name" yaml:"first_name"`
	LastName    string   `json:"last_name,omitempty" db:"last_name" yaml:"last_name"`
	Email       string   `json:"email,omitempty" db:"email" yaml:"email"`
	DateOfBirth string   `json:"date_of_birth,omitempty" db:"date_of_birth" yaml:"date_of_birth"` // YYYY-MM-DD
	Operator    Operator `json:"operator" db:"operator" yaml:"operator"`
}

// FieldCount returns how many fields the rule actually constrains.
func (r *IdentityRule) FieldCount() int {
	n := 0
	for _, v := range []string{r.FirstName, r.LastName, r.Email, r.DateOfBirth} {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

// NetworkRule denies by client address: a single IP or a CIDR range.
type NetworkRule struct {
	Address string `json:"address" db:"address" yaml:"address"`
}

// IsRange reports whether the rule stores a CIDR range rather than a single address.
func (r *NetworkRule) IsRange() bool {
	return strings.Contains(r.Address, "/")
}

// LocationRule denies by postcode, matched after normalization.
type LocationRule struct {
	Postcode string `json:"postcode" db:"postcode" yaml:"postcode"`
}

// AssetRule denies by asset tag, e.g. a vehicle registration mark.
type AssetRule struct {
	AssetTag string `json:"asset_tag" db:"asset_tag" yaml:"asset_tag"`
}

// Entry is a stored deny rule. Category names the variant; exactly one of
// the rule fields is populated and it must agree with Category.
type Entry struct {
	ID        string    `json:"id" db:"id"`
	Category  Category  `json:"category" db:"category"`
	Reason    string    `json:"reason" db:"reason"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Identity *IdentityRule `json:"identity,omitempty"`
	Network  *NetworkRule  `json:"network,omitempty"`
	Location *LocationRule `json:"location,omitempty"`
	Asset    *AssetRule    `json:"asset,omitempty"`
}

// Validate checks the category/rule pairing and per-rule constraints.
func (e *Entry) Validate() error {
	set := 0
	for _, present := range []bool{e.Identity != nil, e.Network != nil, e.Location != nil, e.Asset != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "entry must carry exactly one rule")
	}

	switch e.Category {
	case CategoryIdentity:
		if e.Identity == nil {
			return xerrors.Wrap(xerrors.ErrInvalidInput, "identity entry missing identity rule")
		}
		// guard against accidental full-block
		if e.Identity.FieldCount() == 0 {
			return xerrors.Wrap(xerrors.ErrInvalidInput, "identity rule must constrain at least one field")
		}
		if e.Identity.Operator != OperatorAND && e.Identity.Operator != OperatorOR {
			return xerrors.Wrap(xerrors.ErrInvalidInput, "identity rule operator must be AND or OR")
		}
	case CategoryNetwork:
		if e.Network == nil {
			return xerrors.Wrap(xerrors.ErrInvalidInput, "network entry missing network rule")
		}
		if err := validateAddress(e.Network.Address); err != nil {
			return err
		}
	case CategoryLocation:
		if e.Location == nil || strings.TrimSpace(e.Location.Postcode) == "" {
			return xerrors.Wrap(xerrors.ErrInvalidInput, "location entry requires a postcode")
		}
	case CategoryAsset:
		if e.Asset == nil || strings.TrimSpace(e.Asset.AssetTag) == "" {
			return xerrors.Wrap(xerrors.ErrInvalidInput, "asset entry requires an asset tag")
		}
	default:
		return xerrors.Wrap(xerrors.ErrInvalidInput, "unknown blacklist category")
	}

	return nil
}

func validateAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "network entry requires an address")
	}
	if strings.Contains(address, "/") {
		if _, err := netip.ParsePrefix(address); err != nil {
			return xerrors.Wrap(xerrors.ErrInvalidInput, "invalid CIDR range")
		}
		return nil
	}
	if _, err := netip.ParseAddr(address); err != nil {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "invalid IP address")
	}
	return nil
}

// Candidate carries whichever attributes are known for the request being
// screened. Empty fields simply never match.
type Candidate struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Postcode    string `json:"postcode,omitempty"`
	ClientIP    string `json:"client_ip,omitempty"`
	AssetTag    string `json:"asset_tag,omitempty"`
}
