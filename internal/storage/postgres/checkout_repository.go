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

// CheckoutRepository performs settlement writes. Everything runs inside one
// WithTx call so a failed line re-validation rolls back every peer line.
type CheckoutRepository struct {
	pool *pgxpool.Pool
}

func NewCheckoutRepository(pool *pgxpool.Pool) *CheckoutRepository {
	return &CheckoutRepository{pool: pool}
}

func (r *CheckoutRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *CheckoutRepository) GetListingForUpdate(ctx context.Context, listingID string) (domain.Listing, error) {
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

func (r *CheckoutRepository) SumActiveReservations(ctx context.Context, listingID, excludeUserID string, now time.Time) (int, error) {
	const query = `
SELECT COALESCE(SUM(quantity), 0)
FROM reservations
WHERE listing_id = $1 AND user_id <> $2 AND expires_at > $3`

	var total int
	if err := r.queryRow(ctx, query, listingID, excludeUserID, now).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum active reservations: %w", err)
	}
	return total, nil
}

// DecrementListingQuantity is guarded by a CHECK (quantity >= 0) constraint
// in addition to the in-transaction availability check; tripping the
// constraint means the locking contract was violated somewhere.
func (r *CheckoutRepository) DecrementListingQuantity(ctx context.Context, listingID string, by int) error {
	const stmt = `UPDATE listings SET quantity = quantity - $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, listingID, by)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("decrement listing quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *CheckoutRepository) DeleteReservation(ctx context.Context, userID, listingID string) error {
	const stmt = `DELETE FROM reservations WHERE user_id = $1 AND listing_id = $2`

	if _, err := r.exec(ctx, stmt, userID, listingID); err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	return nil
}

func (r *CheckoutRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (id, user_id, subtotal, campaign_discount, coupon_code, coupon_discount, total,
                    shipping_address, payment_method, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.exec(ctx, stmt,
		order.ID, order.UserID, order.Subtotal, order.CampaignDiscount, order.CouponCode,
		order.CouponDiscount, order.Total, order.ShippingAddress, order.PaymentMethod, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *CheckoutRepository) CreateOrderLine(ctx context.Context, line domain.OrderLine) error {
	const stmt = `
INSERT INTO order_lines (order_id, listing_id, seller_id, quantity, unit_price, line_total, campaign_id, offer_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.exec(ctx, stmt,
		line.OrderID, line.ListingID, line.SellerID, line.Quantity,
		line.UnitPrice, line.LineTotal, line.CampaignID, line.OfferID)
	if err != nil {
		return fmt.Errorf("create order line: %w", err)
	}
	return nil
}

// CountRedemptions re-reads the usage counts inside the settlement
// transaction so a coupon's last allowed use cannot be redeemed twice.
func (r *CheckoutRepository) CountRedemptions(ctx context.Context, couponID, userID string) (global int, byUser int, err error) {
	const query = `
SELECT COUNT(*), COUNT(*) FILTER (WHERE user_id = $2)
FROM coupon_redemptions
WHERE coupon_id = $1`

	if err := r.queryRow(ctx, query, couponID, userID).Scan(&global, &byUser); err != nil {
		return 0, 0, fmt.Errorf("count redemptions: %w", err)
	}
	return global, byUser, nil
}

func (r *CheckoutRepository) CreateCouponRedemption(ctx context.Context, red domain.CouponRedemption) error {
	const stmt = `
INSERT INTO coupon_redemptions (id, coupon_id, user_id, order_id, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.exec(ctx, stmt, red.ID, red.CouponID, red.UserID, red.OrderID, red.CreatedAt)
	if err != nil {
		return fmt.Errorf("create coupon redemption: %w", err)
	}
	return nil
}

func (r *CheckoutRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *CheckoutRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
