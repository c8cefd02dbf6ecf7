package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shyesilbas/secondHand-sub003/internal/app"
	"github.com/Shyesilbas/secondHand-sub003/internal/domain"
)

func TestHandlePreviewPricing(t *testing.T) {
	t.Parallel()

	t.Run("renders priced cart", func(t *testing.T) {
		campaignID := "camp1"
		svc := &stubPricing{
			previewFn: func(_ context.Context, req app.PriceRequest) (domain.PricingResult, error) {
				return domain.PricingResult{
					Lines: []domain.PricedCartLine{{
						ListingID:         "l1",
						SellerID:          "s1",
						Quantity:          1,
						OriginalUnitPrice: decimal.RequireFromString("100"),
						UnitPrice:         decimal.RequireFromString("90"),
						LineSubtotal:      decimal.RequireFromString("90"),
						CampaignID:        &campaignID,
					}},
					OriginalSubtotal: decimal.RequireFromString("100"),
					Subtotal:         decimal.RequireFromString("90"),
					CampaignDiscount: decimal.RequireFromString("10"),
					CouponCode:       req.CouponCode,
					CouponDiscount:   decimal.RequireFromString("9"),
					TotalDiscount:    decimal.RequireFromString("19"),
					Total:            decimal.RequireFromString("81"),
					PayableBySeller:  map[string]decimal.Decimal{"s1": decimal.RequireFromString("81")},
				}, nil
			},
		}
		rec := doRequest(Services{Pricing: svc}, http.MethodPost, "/pricing/preview",
			`{"coupon_code":"SAVE10"}`, "buyer-1")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp pricingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Lines, 1)
		assert.Equal(t, "90.00", resp.Lines[0].UnitPrice)
		assert.Equal(t, "camp1", resp.Lines[0].CampaignID)
		assert.Equal(t, "SAVE10", resp.CouponCode)
		assert.Equal(t, "81.00", resp.Total)
		assert.Equal(t, "81.00", resp.PayableBySeller["s1"])
	})

	t.Run("passes diagnostics through", func(t *testing.T) {
		svc := &stubPricing{
			previewFn: func(context.Context, app.PriceRequest) (domain.PricingResult, error) {
				return domain.PricingResult{
					Diagnostics: []string{domain.DiagStaleOfferIgnored},
				}, nil
			},
		}
		rec := doRequest(Services{Pricing: svc}, http.MethodPost, "/pricing/preview",
			`{"offer_id":"o1"}`, "buyer-1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), domain.DiagStaleOfferIgnored)
	})

	couponErrors := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", domain.ErrCouponNotFound, http.StatusNotFound, codeCouponNotFound},
		{"inactive", domain.ErrCouponInactive, http.StatusConflict, codeCouponInactive},
		{"expired", domain.ErrCouponExpired, http.StatusConflict, codeCouponExpired},
		{"limit reached", domain.ErrCouponUsageLimitReached, http.StatusConflict, codeCouponUsageLimitReached},
		{"not applicable", domain.ErrCouponNotApplicable, http.StatusConflict, codeCouponNotApplicable},
	}

	for _, tt := range couponErrors {
		t.Run("coupon "+tt.name, func(t *testing.T) {
			svc := &stubPricing{
				previewFn: func(context.Context, app.PriceRequest) (domain.PricingResult, error) {
					return domain.PricingResult{}, tt.err
				},
			}
			rec := doRequest(Services{Pricing: svc}, http.MethodPost, "/pricing/preview",
				`{"coupon_code":"X"}`, "buyer-1")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantCode)
		})
	}

	t.Run("empty cart", func(t *testing.T) {
		svc := &stubPricing{
			previewFn: func(context.Context, app.PriceRequest) (domain.PricingResult, error) {
				return domain.PricingResult{}, domain.ErrEmptyCart
			},
		}
		rec := doRequest(Services{Pricing: svc}, http.MethodPost, "/pricing/preview", "", "buyer-1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing user header", func(t *testing.T) {
		rec := doRequest(Services{Pricing: &stubPricing{}}, http.MethodPost, "/pricing/preview", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
