package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Shyesilbas/secondHand-sub003/internal/clock"
	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
	"github.com/Shyesilbas/secondHand-sub003/internal/money"
)

type OfferRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetListing(ctx context.Context, listingID string) (domain.Listing, error)
	CreateOffer(ctx context.Context, offer domain.Offer) error
	GetOfferForUpdate(ctx context.Context, offerID string) (domain.Offer, error)
	UpdateOfferStatus(ctx context.Context, offerID string, status domain.OfferStatus) error
	HasAcceptedOffer(ctx context.Context, listingID string) (bool, error)
}

// OfferService manages the negotiation lifecycle around price offers.
// Terminal states (accepted, rejected, expired) admit no further
// transitions; a pending offer past its expiry reads as expired before the
// sweep flips the row.
type OfferService struct {
	repo  OfferRepository
	clock clock.Clock
	ttl   time.Duration
}

const defaultOfferTTL = 24 * time.Hour

func NewOfferService(repo OfferRepository, clk clock.Clock) *OfferService {
	return &OfferService{repo: repo, clock: clk, ttl: defaultOfferTTL}
}

type CreateOfferInput struct {
	ListingID     string
	BuyerID       string
	Quantity      int
	TotalPrice    decimal.Decimal
	ParentOfferID *string
}

func (s *OfferService) Create(ctx context.Context, in CreateOfferInput) (domain.Offer, error) {
	if in.Quantity <= 0 {
		return domain.Offer{}, domain.ErrInvalidQuantity
	}

	listing, err := s.repo.GetListing(ctx, in.ListingID)
	if err != nil {
		return domain.Offer{}, err
	}
	if !listing.Active() {
		return domain.Offer{}, domain.ErrListingNotActive
	}
	if listing.SellerID == in.BuyerID {
		return domain.Offer{}, domain.ErrOwnListingNotAllowed
	}

	now := s.clock.Now()
	offer := domain.Offer{
		ID:            newID(),
		ListingID:     in.ListingID,
		BuyerID:       in.BuyerID,
		SellerID:      listing.SellerID,
		Quantity:      in.Quantity,
		TotalPrice:    money.Round2(in.TotalPrice),
		Status:        domain.OfferStatusPending,
		ExpiresAt:     now.Add(s.ttl),
		ParentOfferID: in.ParentOfferID,
		CreatedAt:     now,
	}
	if err := s.repo.CreateOffer(ctx, offer); err != nil {
		return domain.Offer{}, err
	}
	return offer, nil
}

// Accept transitions a pending offer to accepted. Only the seller may
// accept, and only one accepted offer may exist per listing; both checks
// run inside the transaction that takes the offer row lock.
func (s *OfferService) Accept(ctx context.Context, sellerID, offerID string) (domain.Offer, error) {
	now := s.clock.Now()
	var result domain.Offer

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		offer, err := s.repo.GetOfferForUpdate(txCtx, offerID)
		if err != nil {
			return err
		}
		if offer.SellerID != sellerID {
			return domain.ErrOfferNotParticipant
		}
		if offer.Status.Terminal() {
			return domain.ErrOfferNotPending
		}
		if offer.Expired(now) {
			return domain.ErrOfferExpired
		}

		accepted, err := s.repo.HasAcceptedOffer(txCtx, offer.ListingID)
		if err != nil {
			return err
		}
		if accepted {
			return domain.ErrOfferAlreadyAccepted
		}

		if err := s.repo.UpdateOfferStatus(txCtx, offerID, domain.OfferStatusAccepted); err != nil {
			return err
		}
		offer.Status = domain.OfferStatusAccepted
		result = offer
		return nil
	})
	if err != nil {
		return domain.Offer{}, err
	}
	return result, nil
}

func (s *OfferService) Reject(ctx context.Context, sellerID, offerID string) (domain.Offer, error) {
	now := s.clock.Now()
	var result domain.Offer

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		offer, err := s.repo.GetOfferForUpdate(txCtx, offerID)
		if err != nil {
			return err
		}
		if offer.SellerID != sellerID {
			return domain.ErrOfferNotParticipant
		}
		if offer.Status.Terminal() {
			return domain.ErrOfferNotPending
		}
		if offer.Expired(now) {
			return domain.ErrOfferExpired
		}

		if err := s.repo.UpdateOfferStatus(txCtx, offerID, domain.OfferStatusRejected); err != nil {
			return err
		}
		offer.Status = domain.OfferStatusRejected
		result = offer
		return nil
	})
	if err != nil {
		return domain.Offer{}, err
	}
	return result, nil
}
