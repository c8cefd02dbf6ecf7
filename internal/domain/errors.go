package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrListingNotFound       = errors.New("listing not found")
	ErrListingNotActive      = errors.New("listing not active")
	ErrListingTypeNotAllowed = errors.New("listing type not allowed in cart")
	ErrOwnListingNotAllowed  = errors.New("own listing not allowed in cart")
	ErrInsufficientStock     = errors.New("insufficient stock")
	// ErrListingNearlyReserved wraps ErrInsufficientStock: callers matching
	// the generic error still catch it, while the UI can distinguish the
	// low-remaining-stock case.
	ErrListingNearlyReserved = fmt.Errorf("listing nearly reserved: %w", ErrInsufficientStock)
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrInvalidID             = errors.New("invalid id")

	ErrCouponNotFound          = errors.New("coupon not found")
	ErrCouponInactive          = errors.New("coupon inactive")
	ErrCouponExpired           = errors.New("coupon expired")
	ErrCouponUsageLimitReached = errors.New("coupon usage limit reached")
	ErrCouponNotApplicable     = errors.New("coupon not applicable")

	ErrOfferNotFound        = errors.New("offer not found")
	ErrOfferNotPending      = errors.New("offer not pending")
	ErrOfferExpired         = errors.New("offer expired")
	ErrOfferAlreadyAccepted = errors.New("listing already has an accepted offer")
	ErrOfferNotParticipant  = errors.New("user is not a participant of the offer")

	ErrEmptyCart = errors.New("cart is empty")
)

// StockConflictError is returned when settlement re-validation finds that
// one or more cart lines can no longer be covered by remaining stock.
// It unwraps to ErrInsufficientStock so callers can match either way.
type StockConflictError struct {
	ListingIDs []string
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("stock changed since reservation for listings: %s", strings.Join(e.ListingIDs, ", "))
}

func (e *StockConflictError) Unwrap() error {
	return ErrInsufficientStock
}
