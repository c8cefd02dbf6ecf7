package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
)

// PricingRepository serves the read-only data a pricing call needs. Pricing
// never mutates state, so nothing here takes locks.
type PricingRepository struct {
	pool *pgxpool.Pool
}

func NewPricingRepository(pool *pgxpool.Pool) *PricingRepository {
	return &PricingRepository{pool: pool}
}

func (r *PricingRepository) GetListing(ctx context.Context, listingID string) (domain.Listing, error) {
	const query = `
SELECT id, seller_id, title, price, quantity, listing_type, status
FROM listings
WHERE id = $1`

	var l domain.Listing
	err := r.pool.QueryRow(ctx, query, listingID).
		Scan(&l.ID, &l.SellerID, &l.Title, &l.Price, &l.Quantity, &l.Type, &l.Status)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Listing{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Listing{}, domain.ErrListingNotFound
		}
		return domain.Listing{}, fmt.Errorf("get listing: %w", err)
	}
	return l, nil
}

func (r *PricingRepository) ListActiveReservations(ctx context.Context, userID string, now time.Time) ([]domain.Reservation, error) {
	const query = `
SELECT user_id, listing_id, quantity, reserved_at, expires_at
FROM reservations
WHERE user_id = $1 AND expires_at > $2
ORDER BY reserved_at ASC, listing_id ASC`

	rows, err := r.pool.Query(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.UserID, &res.ListingID, &res.Quantity, &res.ReservedAt, &res.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, res)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate reservations: %w", rows.Err())
	}
	return out, nil
}

// ListActiveCampaignsForSellers fetches the active, in-window campaigns of
// the given sellers. Window re-checking also happens at read time here so a
// campaign whose window lapsed between sweeps is never applied.
func (r *PricingRepository) ListActiveCampaignsForSellers(ctx context.Context, sellerIDs []string, now time.Time) (map[string][]domain.Campaign, error) {
	if len(sellerIDs) == 0 {
		return map[string][]domain.Campaign{}, nil
	}

	const query = `
SELECT id, seller_id, name, discount_kind, discount_value, starts_at, ends_at,
       eligible_listing_ids, eligible_types, active, created_at
FROM campaigns
WHERE seller_id = ANY($1)
  AND active
  AND (starts_at IS NULL OR starts_at <= $2)
  AND (ends_at IS NULL OR ends_at >= $2)
ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, sellerIDs, now)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Campaign)
	for rows.Next() {
		var c domain.Campaign
		var types []string
		if err := rows.Scan(&c.ID, &c.SellerID, &c.Name, &c.Kind, &c.Value, &c.StartsAt, &c.EndsAt,
			&c.EligibleListingIDs, &types, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		for _, t := range types {
			c.EligibleTypes = append(c.EligibleTypes, domain.ListingType(t))
		}
		out[c.SellerID] = append(out[c.SellerID], c)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate campaigns: %w", rows.Err())
	}
	return out, nil
}

// GetCouponByCode resolves a coupon case-insensitively after trimming.
func (r *PricingRepository) GetCouponByCode(ctx context.Context, code string) (domain.Coupon, error) {
	const query = `
SELECT id, code, discount_kind, discount_value, min_subtotal, max_discount,
       eligible_types, usage_limit_global, usage_limit_per_user, starts_at, ends_at, active
FROM coupons
WHERE UPPER(code) = $1`

	normalized := strings.ToUpper(strings.TrimSpace(code))

	var c domain.Coupon
	var types []string
	err := r.pool.QueryRow(ctx, query, normalized).
		Scan(&c.ID, &c.Code, &c.Kind, &c.Value, &c.MinSubtotal, &c.MaxDiscount,
			&types, &c.UsageLimitGlobal, &c.UsageLimitPerUser, &c.StartsAt, &c.EndsAt, &c.Active)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Coupon{}, domain.ErrCouponNotFound
		}
		return domain.Coupon{}, fmt.Errorf("get coupon: %w", err)
	}
	for _, t := range types {
		c.EligibleTypes = append(c.EligibleTypes, domain.ListingType(t))
	}
	return c, nil
}

// CountRedemptions returns the total and per-user redemption counts for a
// coupon in one round trip.
func (r *PricingRepository) CountRedemptions(ctx context.Context, couponID, userID string) (global int, byUser int, err error) {
	const query = `
SELECT COUNT(*), COUNT(*) FILTER (WHERE user_id = $2)
FROM coupon_redemptions
WHERE coupon_id = $1`

	if err := r.pool.QueryRow(ctx, query, couponID, userID).Scan(&global, &byUser); err != nil {
		return 0, 0, fmt.Errorf("count redemptions: %w", err)
	}
	return global, byUser, nil
}

func (r *PricingRepository) GetOffer(ctx context.Context, offerID string) (domain.Offer, error) {
	const query = `
SELECT id, listing_id, buyer_id, seller_id, quantity, total_price, status, expires_at, parent_offer_id, created_at
FROM offers
WHERE id = $1`

	var o domain.Offer
	err := r.pool.QueryRow(ctx, query, offerID).
		Scan(&o.ID, &o.ListingID, &o.BuyerID, &o.SellerID, &o.Quantity, &o.TotalPrice,
			&o.Status, &o.ExpiresAt, &o.ParentOfferID, &o.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Offer{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Offer{}, domain.ErrOfferNotFound
		}
		return domain.Offer{}, fmt.Errorf("get offer: %w", err)
	}
	return o, nil
}
