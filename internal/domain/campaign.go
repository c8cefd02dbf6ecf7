package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountKind is the closed set of discount computations shared by
// campaigns and coupons.
type DiscountKind string

const (
	DiscountPercentage  DiscountKind = "percentage"
	DiscountFixedAmount DiscountKind = "fixed_amount"
)

// Campaign is a seller-scoped discount rule with an optional active window
// and optional eligibility filters. An empty filter matches everything of
// the seller's; when both filters are set a listing must satisfy both.
type Campaign struct {
	ID                 string
	SellerID           string
	Name               string
	Kind               DiscountKind
	Value              decimal.Decimal
	StartsAt           *time.Time
	EndsAt             *time.Time
	EligibleListingIDs []string
	EligibleTypes      []ListingType
	Active             bool
	CreatedAt          time.Time
}

// InWindow reports whether the campaign window contains now. A missing
// bound is open on that side.
func (c Campaign) InWindow(now time.Time) bool {
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && now.After(*c.EndsAt) {
		return false
	}
	return true
}

// AppliesTo checks the campaign's eligibility filters against a listing.
// Non-discountable listing types never match regardless of filters.
func (c Campaign) AppliesTo(l Listing) bool {
	if !l.Type.Reservable() {
		return false
	}
	if len(c.EligibleListingIDs) > 0 {
		found := false
		for _, id := range c.EligibleListingIDs {
			if id == l.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(c.EligibleTypes) > 0 {
		found := false
		for _, t := range c.EligibleTypes {
			if t == l.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
