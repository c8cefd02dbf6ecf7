package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Shyesilbas/secondHand-sub003/internal/clock"
	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
	"github.com/Shyesilbas/secondHand-sub003/internal/pricing"
)

type PricingRepository interface {
	GetListing(ctx context.Context, listingID string) (domain.Listing, error)
	ListActiveReservations(ctx context.Context, userID string, now time.Time) ([]domain.Reservation, error)
	ListActiveCampaignsForSellers(ctx context.Context, sellerIDs []string, now time.Time) (map[string][]domain.Campaign, error)
	GetCouponByCode(ctx context.Context, code string) (domain.Coupon, error)
	CountRedemptions(ctx context.Context, couponID, userID string) (global int, byUser int, err error)
	GetOffer(ctx context.Context, offerID string) (domain.Offer, error)
}

// PricingService gathers the inputs for a pricing call and hands them to
// the pure engine. It never writes, so preview and checkout pricing share
// this path byte for byte.
type PricingService struct {
	repo  PricingRepository
	clock clock.Clock
}

func NewPricingService(repo PricingRepository, clk clock.Clock) *PricingService {
	return &PricingService{repo: repo, clock: clk}
}

// PriceRequest identifies a cart to price. The cart lines themselves come
// from the user's active reservations.
type PriceRequest struct {
	UserID     string
	CouponCode string
	OfferID    string
}

// PricedCart is a pricing result plus the resolved coupon (when any), which
// settlement needs to record the redemption.
type PricedCart struct {
	Result domain.PricingResult
	Coupon *domain.Coupon
}

// PreviewPricing prices the user's current cart with no side effects.
func (s *PricingService) PreviewPricing(ctx context.Context, req PriceRequest) (domain.PricingResult, error) {
	priced, err := s.PriceCart(ctx, req, s.clock.Now())
	if err != nil {
		return domain.PricingResult{}, err
	}
	return priced.Result, nil
}

// PriceCart builds the engine input at the given instant and evaluates it.
func (s *PricingService) PriceCart(ctx context.Context, req PriceRequest, now time.Time) (PricedCart, error) {
	reservations, err := s.repo.ListActiveReservations(ctx, req.UserID, now)
	if err != nil {
		return PricedCart{}, err
	}
	if len(reservations) == 0 {
		return PricedCart{}, domain.ErrEmptyCart
	}

	in := pricing.Input{Now: now}
	sellerSet := map[string]struct{}{}
	for _, res := range reservations {
		listing, err := s.repo.GetListing(ctx, res.ListingID)
		if err != nil {
			return PricedCart{}, err
		}
		in.Lines = append(in.Lines, pricing.Line{Listing: listing, Quantity: res.Quantity})
		sellerSet[listing.SellerID] = struct{}{}
	}

	sellerIDs := make([]string, 0, len(sellerSet))
	for id := range sellerSet {
		sellerIDs = append(sellerIDs, id)
	}
	in.CampaignsBySeller, err = s.repo.ListActiveCampaignsForSellers(ctx, sellerIDs, now)
	if err != nil {
		return PricedCart{}, err
	}

	var resolvedCoupon *domain.Coupon
	if code := strings.TrimSpace(req.CouponCode); code != "" {
		coupon, err := s.repo.GetCouponByCode(ctx, code)
		if err != nil {
			return PricedCart{}, err
		}
		global, byUser, err := s.repo.CountRedemptions(ctx, coupon.ID, req.UserID)
		if err != nil {
			return PricedCart{}, err
		}
		resolvedCoupon = &coupon
		in.Coupon = &pricing.CouponContext{
			Coupon: coupon,
			Usage:  pricing.CouponUsage{Global: global, ByUser: byUser},
		}
	}

	staleOffer := false
	if req.OfferID != "" {
		offer, err := s.repo.GetOffer(ctx, req.OfferID)
		switch {
		case errors.Is(err, domain.ErrOfferNotFound):
			// A vanished offer is non-fatal; pricing falls through to
			// listing economics like any other stale offer.
			staleOffer = true
		case err != nil:
			return PricedCart{}, err
		case offer.BuyerID != req.UserID:
			staleOffer = true
		default:
			in.Offer = &offer
		}
	}

	result, err := pricing.Price(in)
	if err != nil {
		return PricedCart{}, err
	}
	if staleOffer {
		result.Diagnostics = append(result.Diagnostics, domain.DiagStaleOfferIgnored)
	}
	return PricedCart{Result: result, Coupon: resolvedCoupon}, nil
}
