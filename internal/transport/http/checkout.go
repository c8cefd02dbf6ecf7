package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Shyesilbas/secondHand-sub003/internal/app"
	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
)

type CheckoutRunner interface {
	Checkout(ctx context.Context, in app.CheckoutInput) (domain.Order, error)
}

type checkoutRequest struct {
	CouponCode      string `json:"coupon_code,omitempty"`
	OfferID         string `json:"offer_id,omitempty"`
	ShippingAddress string `json:"shipping_address"`
	PaymentMethod   string `json:"payment_method"`
}

type checkoutResponse struct {
	OrderID          string    `json:"order_id"`
	Subtotal         string    `json:"subtotal"`
	CampaignDiscount string    `json:"campaign_discount"`
	CouponCode       string    `json:"coupon_code,omitempty"`
	CouponDiscount   string    `json:"coupon_discount"`
	Total            string    `json:"total"`
	CreatedAt        time.Time `json:"created_at"`
}

// HandleCheckout settles the caller's cart into an order.
func HandleCheckout(svc CheckoutRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := userID(r)
		if uid == "" {
			writeError(w, http.StatusUnauthorized, codeMissingUserID, "X-User-ID header is required")
			return
		}

		var req checkoutRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.ShippingAddress == "" || req.PaymentMethod == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "shipping_address and payment_method are required")
			return
		}

		order, err := svc.Checkout(r.Context(), app.CheckoutInput{
			UserID:          uid,
			CouponCode:      req.CouponCode,
			OfferID:         req.OfferID,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(checkoutResponse{
			OrderID:          order.ID,
			Subtotal:         order.Subtotal.StringFixed(2),
			CampaignDiscount: order.CampaignDiscount.StringFixed(2),
			CouponCode:       order.CouponCode,
			CouponDiscount:   order.CouponDiscount.StringFixed(2),
			Total:            order.Total.StringFixed(2),
			CreatedAt:        order.CreatedAt,
		})
	}
}
