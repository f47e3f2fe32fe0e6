// internal/domain/blacklist/dto.go
package blacklist

import (
	"github.com/go-playground/validator/v10"
)

// CreateEntryRequest for creating a blacklist entry. Exactly one rule block
// must be supplied and it must agree with the category; the struct-level
// validation registered below enforces that at bind time.
type CreateEntryRequest struct {
	Category Category `json:"category" binding:"required,oneof=identity network location asset"`
	Reason   string   `json:"reason" binding:"required,max=500"`

	Identity *IdentityRuleRequest `json:"identity,omitempty"`
	Network  *NetworkRuleRequest  `json:"network,omitempty"`
	Location *LocationRuleRequest `json:"location,omitempty"`
	Asset    *AssetRuleRequest    `json:"asset,omitempty"`
}

// UpdateEntryRequest replaces an entry's rule and reason in place.
type UpdateEntryRequest struct {
	CreateEntryRequest
}

type IdentityRuleRequest struct {
	FirstName   string   `json:"first_name" binding:"omitempty,max=100"`
	LastName    string   `json:"last_name" binding:"omitempty,max=100"`
	Email       string   `json:"email" binding:"omitempty,email"`
	DateOfBirth string   `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Operator    Operator `json:"operator" binding:"required,oneof=AND OR"`
}

type NetworkRuleRequest struct {
	Address string `json:"address" binding:"required,ip|cidr"`
}

type LocationRuleRequest struct {
	Postcode string `json:"postcode" binding:"required,max=20"`
}

type AssetRuleRequest struct {
	AssetTag string `json:"asset_tag" binding:"required,max=20"`
}

// ToEntry converts a validated request into a domain entry (without ID or
// audit fields, which the service fills in).
func (r *CreateEntryRequest) ToEntry() *Entry {
	e := &Entry{
		Category: r.Category,
		Reason:   r.Reason,
	}
	switch r.Category {
	case CategoryIdentity:
		if r.Identity != nil {
			e.Identity = &IdentityRule{
				FirstName:   r.Identity.FirstName,
				LastName:    r.Identity.LastName,
				Email:       r.Identity.Email,
				DateOfBirth: r.Identity.DateOfBirth,
				Operator:    r.Identity.Operator,
			}
		}
	case CategoryNetwork:
		if r.Network != nil {
			e.Network = &NetworkRule{Address: r.Network.Address}
		}
	case CategoryLocation:
		if r.Location != nil {
			e.Location = &LocationRule{Postcode: r.Location.Postcode}
		}
	case CategoryAsset:
		if r.Asset != nil {
			e.Asset = &AssetRule{AssetTag: r.Asset.AssetTag}
		}
	}
	return e
}

// RegisterValidations installs the struct-level rule/category agreement
// check on gin's validator engine.
func RegisterValidations(v *validator.Validate) {
	v.RegisterStructValidation(validateCreateEntryRequest, CreateEntryRequest{})
}

func validateCreateEntryRequest(sl validator.StructLevel) {
	req := sl.Current().Interface().(CreateEntryRequest)

	rules := 0
	if req.Identity != nil {
		rules++
	}
	if req.Network != nil {
		rules++
	}
	if req.Location != nil {
		rules++
	}
	if req.Asset != nil {
		rules++
	}
	if rules != 1 {
		sl.ReportError(req.Category, "category", "Category", "onerule", "")
		return
	}

	switch req.Category {
	case CategoryIdentity:
		if req.Identity == nil {
			sl.ReportError(req.Identity, "identity", "Identity", "rulecategory", "")
		} else if req.Identity.FirstName == "" && req.Identity.LastName == "" &&
			req.Identity.Email == "" && req.Identity.DateOfBirth == "" {
			sl.ReportError(req.Identity, "identity", "Identity", "onefield", "")
		}
	case CategoryNetwork:
		if req.Network == nil {
			sl.ReportError(req.Network, "network", "Network", "rulecategory", "")
		}
	case CategoryLocation:
		if req.Location == nil {
			sl.ReportError(req.Location, "location", "Location", "rulecategory", "")
		}
	case CategoryAsset:
		if req.Asset == nil {
			sl.ReportError(req.Asset, "asset", "Asset", "rulecategory", "")
		}
	}
}
