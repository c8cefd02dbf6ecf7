package pricing

import (
	"time"

	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
	"github.com/Shyesilbas/secondHand-sub003/internal/money"
)

// ApplyOffer replaces a cart line's quantity and unit price with the
// negotiated terms of an accepted, unexpired offer. Negotiated prices are
// final: the line bypasses campaign resolution entirely. Returns false when
// the offer cannot be used, in which case the caller falls through to
// normal listing pricing.
func ApplyOffer(offer domain.Offer, listing domain.Listing, now time.Time) (domain.PricedCartLine, bool) {
	if !offer.Usable(now) || offer.Quantity <= 0 {
		return domain.PricedCartLine{}, false
	}

	offerID := offer.ID
	unit := money.Round2(offer.TotalPrice.Div(decimal64(offer.Quantity)))
	return domain.PricedCartLine{
		ListingID:         listing.ID,
		SellerID:          listing.SellerID,
		Quantity:          offer.Quantity,
		OriginalUnitPrice: listing.Price,
		UnitPrice:         unit,
		LineSubtotal:      money.Round2(unit.Mul(decimal64(offer.Quantity))),
		OfferID:           &offerID,
	}, true
}
