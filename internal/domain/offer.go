package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
	OfferStatusExpired  OfferStatus = "expired"
)

func (s OfferStatus) Terminal() bool {
	return s == OfferStatusAccepted || s == OfferStatusRejected || s == OfferStatusExpired
}

// Offer is a negotiated price agreement between a buyer and a seller for a
// single listing. TotalPrice is the negotiated amount for the whole
// quantity, not derived from the listing price. ParentOfferID is a
// non-owning back-reference forming a counter-offer chain for history; the
// pricing engine only ever reads the single currently accepted offer.
type Offer struct {
	ID            string
	ListingID     string
	BuyerID       string
	SellerID      string
	Quantity      int
	TotalPrice    decimal.Decimal
	Status        OfferStatus
	ExpiresAt     time.Time
	ParentOfferID *string
	CreatedAt     time.Time
}

func (o Offer) Expired(now time.Time) bool {
	return !o.ExpiresAt.After(now)
}

// Usable reports whether the offer may override a cart line's economics.
func (o Offer) Usable(now time.Time) bool {
	return o.Status == OfferStatusAccepted && !o.Expired(now)
}
