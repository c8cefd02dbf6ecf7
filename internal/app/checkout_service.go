package app

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Shyesilbas/secondHand-sub003/internal/clock"
	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
	"github.com/Shyesilbas/secondHand-sub003/internal/events"
)

type CheckoutRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetListingForUpdate(ctx context.Context, listingID string) (domain.Listing, error)
	SumActiveReservations(ctx context.Context, listingID, excludeUserID string, now time.Time) (int, error)
	DecrementListingQuantity(ctx context.Context, listingID string, by int) error
	DeleteReservation(ctx context.Context, userID, listingID string) error
	CreateOrder(ctx context.Context, order domain.Order) error
	CreateOrderLine(ctx context.Context, line domain.OrderLine) error
	CountRedemptions(ctx context.Context, couponID, userID string) (global int, byUser int, err error)
	CreateCouponRedemption(ctx context.Context, red domain.CouponRedemption) error
}

// Pricer is the slice of PricingService settlement depends on.
type Pricer interface {
	PriceCart(ctx context.Context, req PriceRequest, now time.Time) (PricedCart, error)
}

// CheckoutService converts the user's reservations plus a priced cart into
// finalized stock decrements and an order, atomically across every line.
type CheckoutService struct {
	repo      CheckoutRepository
	pricer    Pricer
	publisher events.Publisher
	clock     clock.Clock
	logger    *zap.Logger
}

func NewCheckoutService(repo CheckoutRepository, pricer Pricer, publisher events.Publisher, clk clock.Clock, logger *zap.Logger) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		repo:      repo,
		pricer:    pricer,
		publisher: publisher,
		clock:     clk,
		logger:    logger,
	}
}

type CheckoutInput struct {
	UserID          string
	CouponCode      string
	OfferID         string
	ShippingAddress string
	PaymentMethod   string
}

// Checkout prices the cart and settles it in a single transaction: every
// line's availability is re-validated under its listing row lock (holds may
// have expired or shrunk since preview), stock is decremented, reservations
// deleted, the redemption recorded, and the order written with the priced
// totals verbatim. If any line fails validation nothing is committed and
// the offending listings are named in the returned StockConflictError.
func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (domain.Order, error) {
	now := s.clock.Now()

	priced, err := s.pricer.PriceCart(ctx, PriceRequest{
		UserID:     in.UserID,
		CouponCode: in.CouponCode,
		OfferID:    in.OfferID,
	}, now)
	if err != nil {
		return domain.Order{}, err
	}

	order := domain.Order{
		ID:               newID(),
		UserID:           in.UserID,
		Subtotal:         priced.Result.Subtotal,
		CampaignDiscount: priced.Result.CampaignDiscount,
		CouponCode:       priced.Result.CouponCode,
		CouponDiscount:   priced.Result.CouponDiscount,
		Total:            priced.Result.Total,
		ShippingAddress:  in.ShippingAddress,
		PaymentMethod:    in.PaymentMethod,
		CreatedAt:        now,
	}

	// Lock listing rows in one global order so two settlements sharing
	// listings queue up instead of deadlocking.
	lines := make([]domain.PricedCartLine, len(priced.Result.Lines))
	copy(lines, priced.Result.Lines)
	sort.Slice(lines, func(i, j int) bool { return lines[i].ListingID < lines[j].ListingID })

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		var conflicts []string
		for _, line := range lines {
			listing, err := s.repo.GetListingForUpdate(txCtx, line.ListingID)
			if err != nil {
				return err
			}
			othersReserved, err := s.repo.SumActiveReservations(txCtx, line.ListingID, in.UserID, now)
			if err != nil {
				return err
			}
			if line.Quantity > listing.Quantity-othersReserved {
				conflicts = append(conflicts, line.ListingID)
			}
		}
		if len(conflicts) > 0 {
			return &domain.StockConflictError{ListingIDs: conflicts}
		}

		for _, line := range lines {
			if err := s.repo.DecrementListingQuantity(txCtx, line.ListingID, line.Quantity); err != nil {
				return err
			}
			if err := s.repo.DeleteReservation(txCtx, in.UserID, line.ListingID); err != nil {
				return err
			}
		}

		if err := s.repo.CreateOrder(txCtx, order); err != nil {
			return err
		}
		for _, line := range lines {
			if err := s.repo.CreateOrderLine(txCtx, domain.OrderLine{
				OrderID:    order.ID,
				ListingID:  line.ListingID,
				SellerID:   line.SellerID,
				Quantity:   line.Quantity,
				UnitPrice:  line.UnitPrice,
				LineTotal:  line.LineSubtotal,
				CampaignID: line.CampaignID,
				OfferID:    line.OfferID,
			}); err != nil {
				return err
			}
		}

		if priced.Coupon != nil {
			// Usage counts were read outside this transaction; a rival
			// settlement may have redeemed the last allowed use since.
			global, byUser, err := s.repo.CountRedemptions(txCtx, priced.Coupon.ID, in.UserID)
			if err != nil {
				return err
			}
			if priced.Coupon.UsageLimitGlobal != nil && global >= *priced.Coupon.UsageLimitGlobal {
				return domain.ErrCouponUsageLimitReached
			}
			if priced.Coupon.UsageLimitPerUser != nil && byUser >= *priced.Coupon.UsageLimitPerUser {
				return domain.ErrCouponUsageLimitReached
			}
			return s.repo.CreateCouponRedemption(txCtx, domain.CouponRedemption{
				ID:        newID(),
				CouponID:  priced.Coupon.ID,
				UserID:    in.UserID,
				OrderID:   order.ID,
				CreatedAt: now,
			})
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	// Best effort: the order is committed regardless of publish outcome.
	if err := s.publisher.PublishOrderCreated(ctx, events.OrderCreated{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Total:      order.Total.String(),
		CouponCode: order.CouponCode,
		OccurredAt: now,
	}); err != nil {
		s.logger.Error("publish order created", zap.String("orderId", order.ID), zap.Error(err))
	}

	return order, nil
}
