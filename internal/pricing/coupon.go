package pricing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
	"github.com/Shyesilbas/secondHand-sub003/internal/money"
)

// CouponUsage carries the redemption counts needed to enforce limits.
type CouponUsage struct {
	Global int
	ByUser int
}

// EvaluateCoupon validates a coupon against the post-campaign subtotal and
// the listing types present in the cart, and returns the platform discount.
// The discount is capped by MaxDiscount when set and by the subtotal itself
// so the final total can never go negative.
func EvaluateCoupon(c domain.Coupon, usage CouponUsage, subtotal decimal.Decimal, cartTypes []domain.ListingType, now time.Time) (decimal.Decimal, error) {
	if !c.Active {
		return decimal.Zero, domain.ErrCouponInactive
	}
	if !c.InWindow(now) {
		return decimal.Zero, domain.ErrCouponExpired
	}
	if c.UsageLimitGlobal != nil && usage.Global >= *c.UsageLimitGlobal {
		return decimal.Zero, domain.ErrCouponUsageLimitReached
	}
	if c.UsageLimitPerUser != nil && usage.ByUser >= *c.UsageLimitPerUser {
		return decimal.Zero, domain.ErrCouponUsageLimitReached
	}
	if subtotal.LessThan(c.MinSubtotal) {
		return decimal.Zero, domain.ErrCouponNotApplicable
	}
	if len(c.EligibleTypes) > 0 && !anyTypeMatches(c.EligibleTypes, cartTypes) {
		return decimal.Zero, domain.ErrCouponNotApplicable
	}

	var discount decimal.Decimal
	switch c.Kind {
	case domain.DiscountPercentage:
		discount = money.Round2(subtotal.Mul(c.Value).Div(hundred))
	case domain.DiscountFixedAmount:
		discount = money.Round2(c.Value)
	default:
		return decimal.Zero, domain.ErrCouponNotApplicable
	}

	if c.MaxDiscount != nil {
		discount = money.Min(discount, *c.MaxDiscount)
	}
	discount = money.Min(discount, subtotal)
	return money.ClampZero(discount), nil
}

func anyTypeMatches(eligible, present []domain.ListingType) bool {
	for _, p := range present {
		for _, e := range eligible {
			if p == e {
				return true
			}
		}
	}
	return false
}

// DistributeProRata splits a cart-level discount across sellers in
// proportion to each seller's share of the discounted subtotal. Each share
// is rounded to cents; any residual cent goes to the seller with the
// largest subtotal (smallest ID on a tie) so the shares always sum to the
// discount exactly.
func DistributeProRata(discount decimal.Decimal, sellerSubtotals map[string]decimal.Decimal) map[string]decimal.Decimal {
	shares := make(map[string]decimal.Decimal, len(sellerSubtotals))
	if discount.IsZero() || len(sellerSubtotals) == 0 {
		for id := range sellerSubtotals {
			shares[id] = decimal.Zero
		}
		return shares
	}

	ids := make([]string, 0, len(sellerSubtotals))
	total := decimal.Zero
	for id, sub := range sellerSubtotals {
		ids = append(ids, id)
		total = total.Add(sub)
	}
	sort.Strings(ids)

	if total.IsZero() {
		for _, id := range ids {
			shares[id] = decimal.Zero
		}
		return shares
	}

	allocated := decimal.Zero
	largest := ids[0]
	for _, id := range ids {
		share := money.Round2(discount.Mul(sellerSubtotals[id]).Div(total))
		shares[id] = share
		allocated = allocated.Add(share)
		if sellerSubtotals[id].GreaterThan(sellerSubtotals[largest]) {
			largest = id
		}
	}

	if residual := discount.Sub(allocated); !residual.IsZero() {
		shares[largest] = shares[largest].Add(residual)
	}
	return shares
}
