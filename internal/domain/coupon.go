package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coupon is a platform-wide discount code. Codes are unique
// case-insensitively; lookups normalize to upper case.
type Coupon struct {
	ID                string
	Code              string
	Kind              DiscountKind
	Value             decimal.Decimal
	MinSubtotal       decimal.Decimal
	MaxDiscount       *decimal.Decimal
	EligibleTypes     []ListingType
	UsageLimitGlobal  *int
	UsageLimitPerUser *int
	StartsAt          *time.Time
	EndsAt            *time.Time
	Active            bool
}

func (c Coupon) InWindow(now time.Time) bool {
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && now.After(*c.EndsAt) {
		return false
	}
	return true
}

// CouponRedemption links a coupon, a user, and the order it was applied to.
// Rows are append-only; usage limits are enforced by counting them.
type CouponRedemption struct {
	ID        string
	CouponID  string
	UserID    string
	OrderID   string
	CreatedAt time.Time
}
