// Package pricing implements the deterministic pricing engine: campaign
// resolution, coupon evaluation, offer overrides, and per-seller payable
// splitting. Everything here is pure — given identical inputs and the same
// instant, Price produces an identical result — which lets preview and
// checkout share one code path.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
	"github.com/Shyesilbas/secondHand-sub003/internal/money"
)

// Line is one cart line to be priced.
type Line struct {
	Listing  domain.Listing
	Quantity int
}

// CouponContext is a resolved coupon plus its current redemption counts.
type CouponContext struct {
	Coupon domain.Coupon
	Usage  CouponUsage
}

// Input is everything Price needs. All policy data is fetched by the caller
// so the engine itself touches no storage.
type Input struct {
	Now               time.Time
	Lines             []Line
	CampaignsBySeller map[string][]domain.Campaign
	Coupon            *CouponContext
	Offer             *domain.Offer
}

// Price computes the full priced breakdown of a cart, strictly ordered:
// offer override or campaign per line, subtotals, coupon against the
// post-campaign subtotal, pro-rata seller split.
func Price(in Input) (domain.PricingResult, error) {
	result := domain.PricingResult{
		OriginalSubtotal: decimal.Zero,
		Subtotal:         decimal.Zero,
		CampaignDiscount: decimal.Zero,
		CouponDiscount:   decimal.Zero,
		PayableBySeller:  make(map[string]decimal.Decimal),
	}

	sellerSubtotals := make(map[string]decimal.Decimal)
	var cartTypes []domain.ListingType

	offerMatched := false
	for _, ln := range in.Lines {
		if in.Offer != nil && in.Offer.ListingID == ln.Listing.ID {
			offerMatched = true
		}
		line, ok := priceLine(in, ln)
		if !ok {
			result.Diagnostics = append(result.Diagnostics, domain.DiagStaleOfferIgnored)
			line = priceListingLine(in, ln)
		}

		result.Lines = append(result.Lines, line)
		result.OriginalSubtotal = result.OriginalSubtotal.Add(
			money.Round2(line.OriginalUnitPrice.Mul(decimal64(line.Quantity))))
		result.Subtotal = result.Subtotal.Add(line.LineSubtotal)
		result.CampaignDiscount = result.CampaignDiscount.Add(line.CampaignDiscount())
		sellerSubtotals[line.SellerID] = sellerSubtotals[line.SellerID].Add(line.LineSubtotal)
		cartTypes = append(cartTypes, ln.Listing.Type)
	}

	// An offer whose listing is not in the cart produces no override, so
	// flag it rather than let the absence pass silently.
	if in.Offer != nil && !offerMatched {
		result.Diagnostics = append(result.Diagnostics, domain.DiagStaleOfferIgnored)
	}

	couponShares := map[string]decimal.Decimal{}
	if in.Coupon != nil {
		discount, err := EvaluateCoupon(in.Coupon.Coupon, in.Coupon.Usage, result.Subtotal, cartTypes, in.Now)
		if err != nil {
			return domain.PricingResult{}, err
		}
		result.CouponCode = in.Coupon.Coupon.Code
		result.CouponDiscount = discount
		couponShares = DistributeProRata(discount, sellerSubtotals)
	}

	result.TotalDiscount = result.CampaignDiscount.Add(result.CouponDiscount)
	result.Total = money.ClampZero(result.Subtotal.Sub(result.CouponDiscount))

	for sellerID, sub := range sellerSubtotals {
		result.PayableBySeller[sellerID] = money.ClampZero(sub.Sub(couponShares[sellerID]))
	}

	return result, nil
}

// priceLine applies the offer override when the provided offer targets this
// line. ok is false only when a matching offer exists but is stale.
func priceLine(in Input, ln Line) (domain.PricedCartLine, bool) {
	if in.Offer != nil && in.Offer.ListingID == ln.Listing.ID {
		return ApplyOffer(*in.Offer, ln.Listing, in.Now)
	}
	return priceListingLine(in, ln), true
}

func priceListingLine(in Input, ln Line) domain.PricedCartLine {
	line := domain.PricedCartLine{
		ListingID:         ln.Listing.ID,
		SellerID:          ln.Listing.SellerID,
		Quantity:          ln.Quantity,
		OriginalUnitPrice: ln.Listing.Price,
		UnitPrice:         ln.Listing.Price,
	}

	if c := ResolveCampaign(in.CampaignsBySeller[ln.Listing.SellerID], ln.Listing, ln.Quantity, in.Now); c != nil {
		campaignID := c.ID
		line.CampaignID = &campaignID
		line.UnitPrice = DiscountedUnit(c.Kind, c.Value, ln.Listing.Price)
	}

	line.LineSubtotal = money.Round2(line.UnitPrice.Mul(decimal64(ln.Quantity)))
	return line
}

func decimal64(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
