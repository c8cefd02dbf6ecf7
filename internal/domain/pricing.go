package domain

import "github.com/shopspring/decimal"

// PricedCartLine is the derived breakdown of one cart line. Not persisted.
type PricedCartLine struct {
	ListingID         string
	SellerID          string
	Quantity          int
	OriginalUnitPrice decimal.Decimal
	UnitPrice         decimal.Decimal
	LineSubtotal      decimal.Decimal
	CampaignID        *string
	OfferID           *string
}

// CampaignDiscount is the per-line saving against the original unit price.
func (l PricedCartLine) CampaignDiscount() decimal.Decimal {
	if l.OfferID != nil {
		return decimal.Zero
	}
	return l.OriginalUnitPrice.Sub(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PricingResult is the full deterministic output of pricing a cart. The
// same value is produced for preview and checkout given identical inputs.
type PricingResult struct {
	Lines            []PricedCartLine
	OriginalSubtotal decimal.Decimal
	Subtotal         decimal.Decimal // after campaigns/offers
	CampaignDiscount decimal.Decimal
	CouponCode       string
	CouponDiscount   decimal.Decimal
	TotalDiscount    decimal.Decimal
	Total            decimal.Decimal
	PayableBySeller  map[string]decimal.Decimal
	Diagnostics      []string
}

// DiagStaleOfferIgnored is appended when a referenced offer exists but is
// expired or not accepted; pricing falls through to normal listing pricing.
const DiagStaleOfferIgnored = "stale_offer_ignored"
