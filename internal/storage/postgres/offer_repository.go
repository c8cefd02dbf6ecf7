package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
)

type OfferRepository struct {
	pool *pgxpool.Pool
}

func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

func (r *OfferRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *OfferRepository) GetListing(ctx context.Context, listingID string) (domain.Listing, error) {
	const query = `
SELECT id, seller_id, title, price, quantity, listing_type, status
FROM listings
WHERE id = $1`

	var l domain.Listing
	err := r.queryRow(ctx, query, listingID).
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

func (r *OfferRepository) CreateOffer(ctx context.Context, offer domain.Offer) error {
	const stmt = `
INSERT INTO offers (id, listing_id, buyer_id, seller_id, quantity, total_price, status, expires_at, parent_offer_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.exec(ctx, stmt,
		offer.ID, offer.ListingID, offer.BuyerID, offer.SellerID, offer.Quantity,
		offer.TotalPrice, offer.Status, offer.ExpiresAt, offer.ParentOfferID, offer.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create offer: %w", err)
	}
	return nil
}

func (r *OfferRepository) GetOfferForUpdate(ctx context.Context, offerID string) (domain.Offer, error) {
	const query = `
SELECT id, listing_id, buyer_id, seller_id, quantity, total_price, status, expires_at, parent_offer_id, created_at
FROM offers
WHERE id = $1
FOR UPDATE`

	var o domain.Offer
	err := r.queryRow(ctx, query, offerID).
		Scan(&o.ID, &o.ListingID, &o.BuyerID, &o.SellerID, &o.Quantity, &o.TotalPrice,
			&o.Status, &o.ExpiresAt, &o.ParentOfferID, &o.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Offer{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Offer{}, domain.ErrOfferNotFound
		}
		return domain.Offer{}, fmt.Errorf("get offer for update: %w", err)
	}
	return o, nil
}

// UpdateOfferStatus moves an offer to status. Accepting relies on the
// partial unique index on (listing_id) WHERE status = 'accepted' as the
// final arbiter under concurrency.
func (r *OfferRepository) UpdateOfferStatus(ctx context.Context, offerID string, status domain.OfferStatus) error {
	const stmt = `UPDATE offers SET status = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, offerID, status)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOfferAlreadyAccepted
		}
		return fmt.Errorf("update offer status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOfferNotFound
	}
	return nil
}

func (r *OfferRepository) HasAcceptedOffer(ctx context.Context, listingID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM offers WHERE listing_id = $1 AND status = 'accepted')`

	var exists bool
	if err := r.queryRow(ctx, query, listingID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check accepted offer: %w", err)
	}
	return exists, nil
}

func (r *OfferRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OfferRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
