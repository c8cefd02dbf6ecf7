package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
)

// CartManager is the slice of the cart service the handlers need.
type CartManager interface {
	AddOrUpdateCartLine(ctx context.Context, userID, listingID string, quantity int) (domain.Reservation, error)
	RemoveCartLine(ctx context.Context, userID, listingID string) error
	Cart(ctx context.Context, userID string) ([]domain.Reservation, error)
}

type addCartLineRequest struct {
	ListingID string `json:"listing_id"`
	Quantity  int    `json:"quantity"`
}

type cartLineResponse struct {
	ListingID string    `json:"listing_id"`
	Quantity  int       `json:"quantity"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HandleAddCartLine reserves (or resizes) a cart line for the caller.
func HandleAddCartLine(svc CartManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := userID(r)
		if uid == "" {
			writeError(w, http.StatusUnauthorized, codeMissingUserID, "X-User-ID header is required")
			return
		}

		var req addCartLineRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.ListingID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidID, "listing_id is required")
			return
		}

		res, err := svc.AddOrUpdateCartLine(r.Context(), uid, req.ListingID, req.Quantity)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(cartLineResponse{
			ListingID: res.ListingID,
			Quantity:  res.Quantity,
			ExpiresAt: res.ExpiresAt,
		})
	}
}

// HandleRemoveCartLine releases a cart line. Always succeeds.
func HandleRemoveCartLine(svc CartManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := userID(r)
		if uid == "" {
			writeError(w, http.StatusUnauthorized, codeMissingUserID, "X-User-ID header is required")
			return
		}

		if err := svc.RemoveCartLine(r.Context(), uid, chi.URLParam(r, "listingID")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleGetCart lists the caller's active cart lines.
func HandleGetCart(svc CartManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := userID(r)
		if uid == "" {
			writeError(w, http.StatusUnauthorized, codeMissingUserID, "X-User-ID header is required")
			return
		}

		lines, err := svc.Cart(r.Context(), uid)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]cartLineResponse, 0, len(lines))
		for _, res := range lines {
			out = append(out, cartLineResponse{
				ListingID: res.ListingID,
				Quantity:  res.Quantity,
				ExpiresAt: res.ExpiresAt,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"lines": out})
	}
}
