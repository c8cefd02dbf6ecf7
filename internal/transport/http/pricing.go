package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Shyesilbas/secondHand-sub003/internal/app"
	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
)

// PricingPreviewer prices the caller's cart without side effects.
type PricingPreviewer interface {
	PreviewPricing(ctx context.Context, req app.PriceRequest) (domain.PricingResult, error)
}

type pricingRequest struct {
	CouponCode string `json:"coupon_code,omitempty"`
	OfferID    string `json:"offer_id,omitempty"`
}

type pricedLineResponse struct {
	ListingID         string `json:"listing_id"`
	SellerID          string `json:"seller_id"`
	Quantity          int    `json:"quantity"`
	OriginalUnitPrice string `json:"original_unit_price"`
	UnitPrice         string `json:"unit_price"`
	LineSubtotal      string `json:"line_subtotal"`
	CampaignID        string `json:"campaign_id,omitempty"`
	OfferID           string `json:"offer_id,omitempty"`
}

type pricingResponse struct {
	Lines            []pricedLineResponse `json:"lines"`
	OriginalSubtotal string               `json:"original_subtotal"`
	Subtotal         string               `json:"subtotal"`
	CampaignDiscount string               `json:"campaign_discount"`
	CouponCode       string               `json:"coupon_code,omitempty"`
	CouponDiscount   string               `json:"coupon_discount"`
	TotalDiscount    string               `json:"total_discount"`
	Total            string               `json:"total"`
	PayableBySeller  map[string]string    `json:"payable_by_seller"`
	Diagnostics      []string             `json:"diagnostics,omitempty"`
}

func toPricingResponse(result domain.PricingResult) pricingResponse {
	resp := pricingResponse{
		OriginalSubtotal: result.OriginalSubtotal.StringFixed(2),
		Subtotal:         result.Subtotal.StringFixed(2),
		CampaignDiscount: result.CampaignDiscount.StringFixed(2),
		CouponCode:       result.CouponCode,
		CouponDiscount:   result.CouponDiscount.StringFixed(2),
		TotalDiscount:    result.TotalDiscount.StringFixed(2),
		Total:            result.Total.StringFixed(2),
		PayableBySeller:  make(map[string]string, len(result.PayableBySeller)),
		Diagnostics:      result.Diagnostics,
	}
	for _, line := range result.Lines {
		lr := pricedLineResponse{
			ListingID:         line.ListingID,
			SellerID:          line.SellerID,
			Quantity:          line.Quantity,
			OriginalUnitPrice: line.OriginalUnitPrice.StringFixed(2),
			UnitPrice:         line.UnitPrice.StringFixed(2),
			LineSubtotal:      line.LineSubtotal.StringFixed(2),
		}
		if line.CampaignID != nil {
			lr.CampaignID = *line.CampaignID
		}
		if line.OfferID != nil {
			lr.OfferID = *line.OfferID
		}
		resp.Lines = append(resp.Lines, lr)
	}
	for sellerID, amount := range result.PayableBySeller {
		resp.PayableBySeller[sellerID] = amount.StringFixed(2)
	}
	return resp
}

// HandlePreviewPricing prices the caller's current cart.
func HandlePreviewPricing(svc PricingPreviewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := userID(r)
		if uid == "" {
			writeError(w, http.StatusUnauthorized, codeMissingUserID, "X-User-ID header is required")
			return
		}

		var req pricingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		result, err := svc.PreviewPricing(r.Context(), app.PriceRequest{
			UserID:     uid,
			CouponCode: req.CouponCode,
			OfferID:    req.OfferID,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toPricingResponse(result))
	}
}
