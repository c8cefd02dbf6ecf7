package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
)

const (
	codeNotFound                = "not_found"
	codeForbidden               = "forbidden"
	codeInvalidRequestBody      = "invalid_request_body"
	codeMissingUserID           = "missing_user_id"
	codeInvalidQuantity         = "invalid_quantity"
	codeInvalidID               = "invalid_id"
	codeListingNotFound         = "listing_not_found"
	codeListingNotActive        = "listing_not_active"
	codeListingTypeNotAllowed   = "listing_type_not_allowed"
	codeOwnListingNotAllowed    = "own_listing_not_allowed"
	codeInsufficientStock       = "insufficient_stock"
	codeListingNearlyReserved   = "listing_nearly_reserved"
	codeStockChanged            = "stock_changed_since_reservation"
	codeEmptyCart               = "empty_cart"
	codeCouponNotFound          = "coupon_not_found"
	codeCouponInactive          = "coupon_inactive"
	codeCouponExpired           = "coupon_expired"
	codeCouponUsageLimitReached = "coupon_usage_limit_reached"
	codeCouponNotApplicable     = "coupon_not_applicable"
	codeOfferNotFound           = "offer_not_found"
	codeOfferNotPending         = "offer_not_pending"
	codeOfferExpired            = "offer_expired"
	codeOfferAlreadyAccepted    = "offer_already_accepted"
	codeInternalError           = "internal_error"
)

type errorResponse struct {
	Error    string   `json:"error"`
	Code     string   `json:"code"`
	Listings []string `json:"listings,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeErrorPayload(w, status, errorResponse{Error: msg, Code: code})
}

func writeErrorPayload(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(resp)
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeServiceError maps domain errors to HTTP statuses and stable codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var stockConflict *domain.StockConflictError
	if errors.As(err, &stockConflict) {
		writeErrorPayload(w, http.StatusConflict, errorResponse{
			Error:    stockConflict.Error(),
			Code:     codeStockChanged,
			Listings: stockConflict.ListingIDs,
		})
		return
	}

	status, code := http.StatusInternalServerError, codeInternalError
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		status, code = http.StatusBadRequest, codeInvalidQuantity
	case errors.Is(err, domain.ErrInvalidID):
		status, code = http.StatusBadRequest, codeInvalidID
	case errors.Is(err, domain.ErrEmptyCart):
		status, code = http.StatusBadRequest, codeEmptyCart
	case errors.Is(err, domain.ErrListingNotFound):
		status, code = http.StatusNotFound, codeListingNotFound
	case errors.Is(err, domain.ErrOfferNotFound):
		status, code = http.StatusNotFound, codeOfferNotFound
	case errors.Is(err, domain.ErrListingNotActive):
		status, code = http.StatusConflict, codeListingNotActive
	case errors.Is(err, domain.ErrListingTypeNotAllowed):
		status, code = http.StatusUnprocessableEntity, codeListingTypeNotAllowed
	case errors.Is(err, domain.ErrOwnListingNotAllowed):
		status, code = http.StatusUnprocessableEntity, codeOwnListingNotAllowed
	case errors.Is(err, domain.ErrListingNearlyReserved):
		status, code = http.StatusConflict, codeListingNearlyReserved
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code = http.StatusConflict, codeInsufficientStock
	case errors.Is(err, domain.ErrCouponNotFound):
		status, code = http.StatusNotFound, codeCouponNotFound
	case errors.Is(err, domain.ErrCouponInactive):
		status, code = http.StatusConflict, codeCouponInactive
	case errors.Is(err, domain.ErrCouponExpired):
		status, code = http.StatusConflict, codeCouponExpired
	case errors.Is(err, domain.ErrCouponUsageLimitReached):
		status, code = http.StatusConflict, codeCouponUsageLimitReached
	case errors.Is(err, domain.ErrCouponNotApplicable):
		status, code = http.StatusConflict, codeCouponNotApplicable
	case errors.Is(err, domain.ErrOfferNotPending):
		status, code = http.StatusConflict, codeOfferNotPending
	case errors.Is(err, domain.ErrOfferExpired):
		status, code = http.StatusConflict, codeOfferExpired
	case errors.Is(err, domain.ErrOfferAlreadyAccepted):
		status, code = http.StatusConflict, codeOfferAlreadyAccepted
	case errors.Is(err, domain.ErrOfferNotParticipant):
		status, code = http.StatusForbidden, codeForbidden
	}

	msg := "internal error"
	if status != http.StatusInternalServerError {
		msg = err.Error()
	}
	writeError(w, status, code, msg)
}
