package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
	"github.com/Shyesilbas/secondHand-sub003/internal/money"
)

var hundred = decimal.NewFromInt(100)

// DiscountedUnit applies a single discount to a unit price. Percentage
// discounts are computed off the unit price; fixed amounts are capped at
// the unit price so a unit can never be priced below zero. Rounded to
// cents at this step.
func DiscountedUnit(kind domain.DiscountKind, value, unit decimal.Decimal) decimal.Decimal {
	switch kind {
	case domain.DiscountPercentage:
		cut := money.Round2(unit.Mul(value).Div(hundred))
		return money.ClampZero(money.Round2(unit.Sub(cut)))
	case domain.DiscountFixedAmount:
		return money.ClampZero(money.Round2(unit.Sub(money.Min(value, unit))))
	default:
		return unit
	}
}

// ResolveCampaign selects the campaign yielding the largest absolute
// discount for the given listing and quantity among the active, in-window,
// eligibility-matching candidates. Ties go to the most recently created
// campaign. Returns nil when no campaign applies.
func ResolveCampaign(candidates []domain.Campaign, listing domain.Listing, quantity int, now time.Time) *domain.Campaign {
	qty := decimal.NewFromInt(int64(quantity))

	var best *domain.Campaign
	var bestSaving decimal.Decimal

	for i := range candidates {
		c := &candidates[i]
		if !c.Active || !c.InWindow(now) || c.SellerID != listing.SellerID || !c.AppliesTo(listing) {
			continue
		}
		unit := DiscountedUnit(c.Kind, c.Value, listing.Price)
		saving := listing.Price.Sub(unit).Mul(qty)
		if saving.LessThanOrEqual(decimal.Zero) {
			continue
		}
		switch {
		case best == nil, saving.GreaterThan(bestSaving):
			best, bestSaving = c, saving
		case saving.Equal(bestSaving) && c.CreatedAt.After(best.CreatedAt):
			best = c
		}
	}
	return best
}
