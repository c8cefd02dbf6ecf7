package app

import (
	"context"
	"time"

	"github.com/Shyesilbas/secondHand-sub003/internal/clock"
	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
)

type CartRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetListingForUpdate(ctx context.Context, listingID string) (domain.Listing, error)
	SumActiveReservations(ctx context.Context, listingID, excludeUserID string, now time.Time) (int, error)
	UpsertReservation(ctx context.Context, res domain.Reservation) error
	DeleteReservation(ctx context.Context, userID, listingID string) error
	ListActiveReservations(ctx context.Context, userID string, now time.Time) ([]domain.Reservation, error)
}

// CartService is the reservation manager: it places, resizes, and releases
// time-boxed holds on listing stock. Holds are a UX convenience, not a
// guarantee — settlement re-validates availability under the same lock.
type CartService struct {
	repo          CartRepository
	clock         clock.Clock
	ttl           time.Duration
	nearThreshold int
}

const defaultReservationTTL = 15 * time.Minute

// defaultNearThreshold is a UX heuristic: at or below this much remaining
// stock a failed hold reports "nearly reserved" instead of the generic
// insufficient-stock error.
const defaultNearThreshold = 3

type CartServiceOption func(*CartService)

func WithReservationTTL(d time.Duration) CartServiceOption {
	return func(s *CartService) {
		if d > 0 {
			s.ttl = d
		}
	}
}

func WithNearReservedThreshold(n int) CartServiceOption {
	return func(s *CartService) {
		if n >= 0 {
			s.nearThreshold = n
		}
	}
}

func NewCartService(repo CartRepository, clk clock.Clock, opts ...CartServiceOption) *CartService {
	svc := &CartService{
		repo:          repo,
		clock:         clk,
		ttl:           defaultReservationTTL,
		nearThreshold: defaultNearThreshold,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// AddOrUpdateCartLine upserts the user's reservation for a listing. A user
// may freely resize their own hold but is bounded by the stock not claimed
// by other users' active holds; that availability read happens inside the
// same transaction as the write, after the listing row lock is taken.
func (s *CartService) AddOrUpdateCartLine(ctx context.Context, userID, listingID string, quantity int) (domain.Reservation, error) {
	if quantity <= 0 {
		return domain.Reservation{}, domain.ErrInvalidQuantity
	}

	now := s.clock.Now()
	var result domain.Reservation

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		listing, err := s.repo.GetListingForUpdate(txCtx, listingID)
		if err != nil {
			return err
		}
		if !listing.Active() {
			return domain.ErrListingNotActive
		}
		if !listing.Type.Reservable() {
			return domain.ErrListingTypeNotAllowed
		}
		if listing.SellerID == userID {
			return domain.ErrOwnListingNotAllowed
		}

		othersReserved, err := s.repo.SumActiveReservations(txCtx, listingID, userID, now)
		if err != nil {
			return err
		}

		available := listing.Quantity - othersReserved
		if quantity > available {
			if available <= s.nearThreshold {
				return domain.ErrListingNearlyReserved
			}
			return domain.ErrInsufficientStock
		}

		result = domain.Reservation{
			UserID:     userID,
			ListingID:  listingID,
			Quantity:   quantity,
			ReservedAt: now,
			ExpiresAt:  now.Add(s.ttl),
		}
		return s.repo.UpsertReservation(txCtx, result)
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	return result, nil
}

// RemoveCartLine releases the user's hold on a listing. Idempotent.
func (s *CartService) RemoveCartLine(ctx context.Context, userID, listingID string) error {
	return s.repo.DeleteReservation(ctx, userID, listingID)
}

// Cart returns the user's active (non-expired) reservation lines.
func (s *CartService) Cart(ctx context.Context, userID string) ([]domain.Reservation, error) {
	return s.repo.ListActiveReservations(ctx, userID, s.clock.Now())
}
