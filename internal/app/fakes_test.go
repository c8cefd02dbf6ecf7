package app

import (
	"context"
	"strings"
	"time"

	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
	"github.com/Shyesilbas/secondHand-sub003/internal/events"
)

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type resKey struct {
	userID    string
	listingID string
}

// fakeStore is an in-memory stand-in for the Postgres repositories. WithTx
// snapshots state and restores it when fn fails, mirroring a rollback.
type fakeStore struct {
	listings     map[string]domain.Listing
	reservations map[resKey]domain.Reservation
	campaigns    []domain.Campaign
	coupons      map[string]domain.Coupon // keyed by upper-cased code
	redemptions  []domain.CouponRedemption
	offers       map[string]domain.Offer
	orders       []domain.Order
	orderLines   []domain.OrderLine
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		listings:     map[string]domain.Listing{},
		reservations: map[resKey]domain.Reservation{},
		coupons:      map[string]domain.Coupon{},
		offers:       map[string]domain.Offer{},
	}
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := f.clone()
	if err := fn(ctx); err != nil {
		*f = *snapshot
		return err
	}
	return nil
}

func (f *fakeStore) clone() *fakeStore {
	out := newFakeStore()
	for k, v := range f.listings {
		out.listings[k] = v
	}
	for k, v := range f.reservations {
		out.reservations[k] = v
	}
	for k, v := range f.coupons {
		out.coupons[k] = v
	}
	for k, v := range f.offers {
		out.offers[k] = v
	}
	out.campaigns = append(out.campaigns, f.campaigns...)
	out.redemptions = append(out.redemptions, f.redemptions...)
	out.orders = append(out.orders, f.orders...)
	out.orderLines = append(out.orderLines, f.orderLines...)
	return out
}

func (f *fakeStore) GetListing(_ context.Context, listingID string) (domain.Listing, error) {
	l, ok := f.listings[listingID]
	if !ok {
		return domain.Listing{}, domain.ErrListingNotFound
	}
	return l, nil
}

func (f *fakeStore) GetListingForUpdate(ctx context.Context, listingID string) (domain.Listing, error) {
	return f.GetListing(ctx, listingID)
}

func (f *fakeStore) SumActiveReservations(_ context.Context, listingID, excludeUserID string, now time.Time) (int, error) {
	total := 0
	for key, res := range f.reservations {
		if key.listingID == listingID && key.userID != excludeUserID && !res.Expired(now) {
			total += res.Quantity
		}
	}
	return total, nil
}

func (f *fakeStore) UpsertReservation(_ context.Context, res domain.Reservation) error {
	f.reservations[resKey{res.UserID, res.ListingID}] = res
	return nil
}

func (f *fakeStore) DeleteReservation(_ context.Context, userID, listingID string) error {
	delete(f.reservations, resKey{userID, listingID})
	return nil
}

func (f *fakeStore) ListActiveReservations(_ context.Context, userID string, now time.Time) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for key, res := range f.reservations {
		if key.userID == userID && !res.Expired(now) {
			out = append(out, res)
		}
	}
	// Stable order for deterministic assertions.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].ListingID < out[i].ListingID {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteExpiredReservations(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for key, res := range f.reservations {
		if res.ExpiresAt.Before(now) {
			delete(f.reservations, key)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) DeactivateExpiredCampaigns(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for i := range f.campaigns {
		c := &f.campaigns[i]
		if c.Active && c.EndsAt != nil && c.EndsAt.Before(now) {
			c.Active = false
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ExpirePendingOffers(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for id, o := range f.offers {
		if o.Status == domain.OfferStatusPending && o.ExpiresAt.Before(now) {
			o.Status = domain.OfferStatusExpired
			f.offers[id] = o
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ListActiveCampaignsForSellers(_ context.Context, sellerIDs []string, now time.Time) (map[string][]domain.Campaign, error) {
	out := map[string][]domain.Campaign{}
	for _, c := range f.campaigns {
		if !c.Active || !c.InWindow(now) {
			continue
		}
		for _, id := range sellerIDs {
			if c.SellerID == id {
				out[id] = append(out[id], c)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) GetCouponByCode(_ context.Context, code string) (domain.Coupon, error) {
	c, ok := f.coupons[normalizeCode(code)]
	if !ok {
		return domain.Coupon{}, domain.ErrCouponNotFound
	}
	return c, nil
}

func (f *fakeStore) CountRedemptions(_ context.Context, couponID, userID string) (int, int, error) {
	global, byUser := 0, 0
	for _, red := range f.redemptions {
		if red.CouponID == couponID {
			global++
			if red.UserID == userID {
				byUser++
			}
		}
	}
	return global, byUser, nil
}

func (f *fakeStore) GetOffer(_ context.Context, offerID string) (domain.Offer, error) {
	o, ok := f.offers[offerID]
	if !ok {
		return domain.Offer{}, domain.ErrOfferNotFound
	}
	return o, nil
}

func (f *fakeStore) GetOfferForUpdate(ctx context.Context, offerID string) (domain.Offer, error) {
	return f.GetOffer(ctx, offerID)
}

func (f *fakeStore) CreateOffer(_ context.Context, offer domain.Offer) error {
	f.offers[offer.ID] = offer
	return nil
}

func (f *fakeStore) UpdateOfferStatus(_ context.Context, offerID string, status domain.OfferStatus) error {
	o, ok := f.offers[offerID]
	if !ok {
		return domain.ErrOfferNotFound
	}
	o.Status = status
	f.offers[offerID] = o
	return nil
}

func (f *fakeStore) HasAcceptedOffer(_ context.Context, listingID string) (bool, error) {
	for _, o := range f.offers {
		if o.ListingID == listingID && o.Status == domain.OfferStatusAccepted {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) DecrementListingQuantity(_ context.Context, listingID string, by int) error {
	l, ok := f.listings[listingID]
	if !ok {
		return domain.ErrListingNotFound
	}
	if l.Quantity < by {
		return domain.ErrInsufficientStock
	}
	l.Quantity -= by
	f.listings[listingID] = l
	return nil
}

func (f *fakeStore) CreateOrder(_ context.Context, order domain.Order) error {
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeStore) CreateOrderLine(_ context.Context, line domain.OrderLine) error {
	f.orderLines = append(f.orderLines, line)
	return nil
}

func (f *fakeStore) CreateCouponRedemption(_ context.Context, red domain.CouponRedemption) error {
	f.redemptions = append(f.redemptions, red)
	return nil
}

type fakePublisher struct {
	published []events.OrderCreated
	err       error
}

func (p *fakePublisher) PublishOrderCreated(_ context.Context, event events.OrderCreated) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }
