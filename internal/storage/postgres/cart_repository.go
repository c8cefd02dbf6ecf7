package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
)

// CartRepository backs the reservation manager. All mutations run inside
// withTx; availability reads happen under the listing row lock taken by
// GetListingForUpdate so there is no read-then-write race window.
type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

func (r *CartRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *CartRepository) GetListingForUpdate(ctx context.Context, listingID string) (domain.Listing, error) {
	const query = `
SELECT id, seller_id, title, price, quantity, listing_type, status
FROM listings
WHERE id = $1
FOR UPDATE`

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
		return domain.Listing{}, fmt.Errorf("get listing for update: %w", err)
	}
	return l, nil
}

// SumActiveReservations returns the quantity held by other users' active
// reservations on a listing. Expired rows are filtered at read time; the
// sweep only reclaims space.
func (r *CartRepository) SumActiveReservations(ctx context.Context, listingID, excludeUserID string, now time.Time) (int, error) {
	const query = `
SELECT COALESCE(SUM(quantity), 0)
FROM reservations
WHERE listing_id = $1 AND user_id <> $2 AND expires_at > $3`

	var total int
	if err := r.queryRow(ctx, query, listingID, excludeUserID, now).Scan(&total); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("sum active reservations: %w", err)
	}
	return total, nil
}

func (r *CartRepository) UpsertReservation(ctx context.Context, res domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (user_id, listing_id, quantity, reserved_at, expires_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, listing_id)
DO UPDATE SET quantity = EXCLUDED.quantity, reserved_at = EXCLUDED.reserved_at, expires_at = EXCLUDED.expires_at`

	_, err := r.exec(ctx, stmt, res.UserID, res.ListingID, res.Quantity, res.ReservedAt, res.ExpiresAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("upsert reservation: %w", err)
	}
	return nil
}

func (r *CartRepository) DeleteReservation(ctx context.Context, userID, listingID string) error {
	const stmt = `DELETE FROM reservations WHERE user_id = $1 AND listing_id = $2`

	if _, err := r.exec(ctx, stmt, userID, listingID); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete reservation: %w", err)
	}
	return nil
}

func (r *CartRepository) ListActiveReservations(ctx context.Context, userID string, now time.Time) ([]domain.Reservation, error) {
	const query = `
SELECT user_id, listing_id, quantity, reserved_at, expires_at
FROM reservations
WHERE user_id = $1 AND expires_at > $2
ORDER BY reserved_at ASC, listing_id ASC`

	rows, err := r.query(ctx, query, userID, now)
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

func (r *CartRepository) DeleteExpiredReservations(ctx context.Context, now time.Time) (int64, error) {
	const stmt = `DELETE FROM reservations WHERE expires_at < $1`

	tag, err := r.pool.Exec(ctx, stmt, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired reservations: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *CartRepository) DeactivateExpiredCampaigns(ctx context.Context, now time.Time) (int64, error) {
	const stmt = `UPDATE campaigns SET active = FALSE WHERE active AND ends_at IS NOT NULL AND ends_at < $1`

	tag, err := r.pool.Exec(ctx, stmt, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired campaigns: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *CartRepository) ExpirePendingOffers(ctx context.Context, now time.Time) (int64, error) {
	const stmt = `UPDATE offers SET status = 'expired' WHERE status = 'pending' AND expires_at < $1`

	tag, err := r.pool.Exec(ctx, stmt, now)
	if err != nil {
		return 0, fmt.Errorf("expire pending offers: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *CartRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *CartRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *CartRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
