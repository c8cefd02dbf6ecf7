package http

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/Shyesilbas/secondHand-sub003/internal/app"
	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
)

type stubCart struct {
	addFn    func(ctx context.Context, userID, listingID string, quantity int) (domain.Reservation, error)
	removeFn func(ctx context.Context, userID, listingID string) error
	cartFn   func(ctx context.Context, userID string) ([]domain.Reservation, error)
}

func (s *stubCart) AddOrUpdateCartLine(ctx context.Context, userID, listingID string, quantity int) (domain.Reservation, error) {
	return s.addFn(ctx, userID, listingID, quantity)
}

func (s *stubCart) RemoveCartLine(ctx context.Context, userID, listingID string) error {
	return s.removeFn(ctx, userID, listingID)
}

func (s *stubCart) Cart(ctx context.Context, userID string) ([]domain.Reservation, error) {
	return s.cartFn(ctx, userID)
}

type stubPricing struct {
	previewFn func(ctx context.Context, req app.PriceRequest) (domain.PricingResult, error)
}

func (s *stubPricing) PreviewPricing(ctx context.Context, req app.PriceRequest) (domain.PricingResult, error) {
	return s.previewFn(ctx, req)
}

type stubCheckout struct {
	checkoutFn func(ctx context.Context, in app.CheckoutInput) (domain.Order, error)
}

func (s *stubCheckout) Checkout(ctx context.Context, in app.CheckoutInput) (domain.Order, error) {
	return s.checkoutFn(ctx, in)
}

type stubOffers struct {
	createFn func(ctx context.Context, in app.CreateOfferInput) (domain.Offer, error)
	acceptFn func(ctx context.Context, sellerID, offerID string) (domain.Offer, error)
	rejectFn func(ctx context.Context, sellerID, offerID string) (domain.Offer, error)
}

func (s *stubOffers) Create(ctx context.Context, in app.CreateOfferInput) (domain.Offer, error) {
	return s.createFn(ctx, in)
}

func (s *stubOffers) Accept(ctx context.Context, sellerID, offerID string) (domain.Offer, error) {
	return s.acceptFn(ctx, sellerID, offerID)
}

func (s *stubOffers) Reject(ctx context.Context, sellerID, offerID string) (domain.Offer, error) {
	return s.rejectFn(ctx, sellerID, offerID)
}

func doRequest(svcs Services, method, target, body, userID string) *httptest.ResponseRecorder {
	router := NewRouter(svcs, nil, nil)

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
