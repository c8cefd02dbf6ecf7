package domain

import "time"

// Reservation is a time-boxed claim on listing stock tied to a user's cart
// line. At most one reservation exists per (user, listing); updates overwrite
// quantity and refresh the expiry rather than accumulating.
type Reservation struct {
	UserID     string
	ListingID  string
	Quantity   int
	ReservedAt time.Time
	ExpiresAt  time.Time
}

func (r Reservation) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
