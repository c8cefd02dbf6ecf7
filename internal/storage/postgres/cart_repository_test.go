package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
	"github.com/Shyesilbas/secondHand-sub003/internal/testutil"
)

func TestCartRepository_GetListingForUpdate(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)
	repo := NewCartRepository(pool)

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)

	listingID := testutil.InsertListing(t, ctx, pool, "00000000-0000-0000-0000-0000000000a1", decimal.RequireFromString("49.99"), 5, domain.ListingTypeClothing)

	listing, err := repo.GetListingForUpdate(ctx, listingID)
	if err != nil {
		t.Fatalf("get listing: %v", err)
	}
	if listing.ID != listingID || listing.Quantity != 5 {
		t.Fatalf("unexpected listing: %+v", listing)
	}
	if !listing.Price.Equal(decimal.RequireFromString("49.99")) {
		t.Fatalf("unexpected price: %s", listing.Price)
	}

	_, err = repo.GetListingForUpdate(ctx, "00000000-0000-0000-0000-000000000099")
	if !errors.Is(err, domain.ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}

	_, err = repo.GetListingForUpdate(ctx, "not-a-uuid")
	if !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestCartRepository_UpsertReservation(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)
	repo := NewCartRepository(pool)

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)

	now := time.Now().UTC().Truncate(time.Millisecond)
	listingID := testutil.InsertListing(t, ctx, pool, "00000000-0000-0000-0000-0000000000a1", decimal.RequireFromString("10"), 10, domain.ListingTypeGoods)
	userID := "00000000-0000-0000-0000-000000000001"

	first := domain.Reservation{
		UserID: userID, ListingID: listingID, Quantity: 2,
		ReservedAt: now, ExpiresAt: now.Add(15 * time.Minute),
	}
	if err := repo.UpsertReservation(ctx, first); err != nil {
		t.Fatalf("insert reservation: %v", err)
	}

	// Second upsert for the same (user, listing) overwrites instead of
	// accumulating.
	second := first
	second.Quantity = 5
	second.ExpiresAt = now.Add(30 * time.Minute)
	if err := repo.UpsertReservation(ctx, second); err != nil {
		t.Fatalf("upsert reservation: %v", err)
	}

	active, err := repo.ListActiveReservations(ctx, userID, now)
	if err != nil {
		t.Fatalf("list reservations: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 reservation, got %d", len(active))
	}
	if active[0].Quantity != 5 {
		t.Fatalf("expected overwritten quantity 5, got %d", active[0].Quantity)
	}
	if !active[0].ExpiresAt.After(now.Add(20 * time.Minute)) {
		t.Fatalf("expiry not refreshed: %v", active[0].ExpiresAt)
	}
}

func TestCartRepository_SumActiveReservations(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)
	repo := NewCartRepository(pool)

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)

	now := time.Now().UTC()
	listingID := testutil.InsertListing(t, ctx, pool, "00000000-0000-0000-0000-0000000000a1", decimal.RequireFromString("10"), 10, domain.ListingTypeGoods)

	testutil.InsertReservation(t, ctx, pool, domain.Reservation{
		UserID: "00000000-0000-0000-0000-000000000001", ListingID: listingID,
		Quantity: 3, ReservedAt: now, ExpiresAt: now.Add(10 * time.Minute),
	})
	testutil.InsertReservation(t, ctx, pool, domain.Reservation{
		UserID: "00000000-0000-0000-0000-000000000002", ListingID: listingID,
		Quantity: 2, ReservedAt: now, ExpiresAt: now.Add(10 * time.Minute),
	})
	// Expired hold and the excluded user's own hold must not count.
	testutil.InsertReservation(t, ctx, pool, domain.Reservation{
		UserID: "00000000-0000-0000-0000-000000000003", ListingID: listingID,
		Quantity: 4, ReservedAt: now.Add(-time.Hour), ExpiresAt: now.Add(-time.Minute),
	})

	total, err := repo.SumActiveReservations(ctx, listingID, "00000000-0000-0000-0000-000000000001", now)
	if err != nil {
		t.Fatalf("sum reservations: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 held by others, got %d", total)
	}
}

func TestCartRepository_DeleteReservation(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)
	repo := NewCartRepository(pool)

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)

	now := time.Now().UTC()
	listingID := testutil.InsertListing(t, ctx, pool, "00000000-0000-0000-0000-0000000000a1", decimal.RequireFromString("10"), 10, domain.ListingTypeGoods)
	userID := "00000000-0000-0000-0000-000000000001"

	testutil.InsertReservation(t, ctx, pool, domain.Reservation{
		UserID: userID, ListingID: listingID, Quantity: 1,
		ReservedAt: now, ExpiresAt: now.Add(10 * time.Minute),
	})

	if err := repo.DeleteReservation(ctx, userID, listingID); err != nil {
		t.Fatalf("delete reservation: %v", err)
	}
	// Deleting an absent row stays silent.
	if err := repo.DeleteReservation(ctx, userID, listingID); err != nil {
		t.Fatalf("delete absent reservation: %v", err)
	}

	active, err := repo.ListActiveReservations(ctx, userID, now)
	if err != nil {
		t.Fatalf("list reservations: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected empty cart, got %d rows", len(active))
	}
}

func TestCartRepository_Sweep(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)
	repo := NewCartRepository(pool)

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)

	now := time.Now().UTC()
	listingID := testutil.InsertListing(t, ctx, pool, "00000000-0000-0000-0000-0000000000a1", decimal.RequireFromString("10"), 10, domain.ListingTypeGoods)

	testutil.InsertReservation(t, ctx, pool, domain.Reservation{
		UserID: "00000000-0000-0000-0000-000000000001", ListingID: listingID,
		Quantity: 1, ReservedAt: now.Add(-time.Hour), ExpiresAt: now.Add(-time.Minute),
	})
	testutil.InsertReservation(t, ctx, pool, domain.Reservation{
		UserID: "00000000-0000-0000-0000-000000000002", ListingID: listingID,
		Quantity: 1, ReservedAt: now, ExpiresAt: now.Add(10 * time.Minute),
	})

	past := now.Add(-time.Minute)
	testutil.InsertCampaign(t, ctx, pool, domain.Campaign{
		SellerID: "00000000-0000-0000-0000-0000000000a1", Name: "Over", Kind: domain.DiscountPercentage,
		Value: decimal.RequireFromString("10"), EndsAt: &past, Active: true,
	})

	deleted, err := repo.DeleteExpiredReservations(ctx, now)
	if err != nil {
		t.Fatalf("delete expired reservations: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 reservation swept, got %d", deleted)
	}

	deactivated, err := repo.DeactivateExpiredCampaigns(ctx, now)
	if err != nil {
		t.Fatalf("deactivate campaigns: %v", err)
	}
	if deactivated != 1 {
		t.Fatalf("expected 1 campaign deactivated, got %d", deactivated)
	}

	expired, err := repo.ExpirePendingOffers(ctx, now)
	if err != nil {
		t.Fatalf("expire offers: %v", err)
	}
	if expired != 0 {
		t.Fatalf("expected no offers swept, got %d", expired)
	}
}

func TestCartRepository_WithTxRollsBack(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)
	repo := NewCartRepository(pool)

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)

	now := time.Now().UTC()
	listingID := testutil.InsertListing(t, ctx, pool, "00000000-0000-0000-0000-0000000000a1", decimal.RequireFromString("10"), 10, domain.ListingTypeGoods)
	userID := "00000000-0000-0000-0000-000000000001"

	sentinel := errors.New("abort")
	err := repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := repo.UpsertReservation(txCtx, domain.Reservation{
			UserID: userID, ListingID: listingID, Quantity: 1,
			ReservedAt: now, ExpiresAt: now.Add(10 * time.Minute),
		}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	active, err := repo.ListActiveReservations(ctx, userID, now)
	if err != nil {
		t.Fatalf("list reservations: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected rollback, got %d rows", len(active))
	}
}
