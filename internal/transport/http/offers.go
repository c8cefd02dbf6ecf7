package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Shyesilbas/secondHand-sub003/internal/app"
	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
)

type OfferManager interface {
	Create(ctx context.Context, in app.CreateOfferInput) (domain.Offer, error)
	Accept(ctx context.Context, sellerID, offerID string) (domain.Offer, error)
	Reject(ctx context.Context, sellerID, offerID string) (domain.Offer, error)
}

type createOfferRequest struct {
	ListingID     string  `json:"listing_id"`
	Quantity      int     `json:"quantity"`
	TotalPrice    string  `json:"total_price"`
	ParentOfferID *string `json:"parent_offer_id,omitempty"`
}

type offerResponse struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listing_id"`
	Quantity   int       `json:"quantity"`
	TotalPrice string    `json:"total_price"`
	Status     string    `json:"status"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func toOfferResponse(o domain.Offer) offerResponse {
	return offerResponse{
		ID:         o.ID,
		ListingID:  o.ListingID,
		Quantity:   o.Quantity,
		TotalPrice: o.TotalPrice.StringFixed(2),
		Status:     string(o.Status),
		ExpiresAt:  o.ExpiresAt,
	}
}

func HandleCreateOffer(svc OfferManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := userID(r)
		if uid == "" {
			writeError(w, http.StatusUnauthorized, codeMissingUserID, "X-User-ID header is required")
			return
		}

		var req createOfferRequest
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
		price, err := decimal.NewFromString(req.TotalPrice)
		if err != nil || !price.IsPositive() {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "total_price must be a positive amount")
			return
		}

		offer, err := svc.Create(r.Context(), app.CreateOfferInput{
			ListingID:     req.ListingID,
			BuyerID:       uid,
			Quantity:      req.Quantity,
			TotalPrice:    price,
			ParentOfferID: req.ParentOfferID,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toOfferResponse(offer))
	}
}

func HandleAcceptOffer(svc OfferManager) http.HandlerFunc {
	return offerTransition(func(ctx context.Context, sellerID, offerID string) (domain.Offer, error) {
		return svc.Accept(ctx, sellerID, offerID)
	})
}

func HandleRejectOffer(svc OfferManager) http.HandlerFunc {
	return offerTransition(func(ctx context.Context, sellerID, offerID string) (domain.Offer, error) {
		return svc.Reject(ctx, sellerID, offerID)
	})
}

func offerTransition(fn func(ctx context.Context, sellerID, offerID string) (domain.Offer, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := userID(r)
		if uid == "" {
			writeError(w, http.StatusUnauthorized, codeMissingUserID, "X-User-ID header is required")
			return
		}

		offer, err := fn(r.Context(), uid, chi.URLParam(r, "offerID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toOfferResponse(offer))
	}
}
