package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the record emitted by a successful settlement. Totals are copied
// verbatim from the pricing result the buyer saw; settlement never
// recomputes price on its own.
type Order struct {
	ID               string
	UserID           string
	Subtotal         decimal.Decimal
	CampaignDiscount decimal.Decimal
	CouponCode       string
	CouponDiscount   decimal.Decimal
	Total            decimal.Decimal
	ShippingAddress  string
	PaymentMethod    string
	CreatedAt        time.Time
}

// OrderLine preserves the priced breakdown of one settled cart line.
type OrderLine struct {
	OrderID    string
	ListingID  string
	SellerID   string
	Quantity   int
	UnitPrice  decimal.Decimal
	LineTotal  decimal.Decimal
	CampaignID *string
	OfferID    *string
}
