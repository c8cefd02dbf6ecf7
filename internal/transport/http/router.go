package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Services groups everything the router exposes.
type Services struct {
	Cart     CartManager
	Pricing  PricingPreviewer
	Checkout CheckoutRunner
	Offers   OfferManager
}

// NewRouter wires all routes plus logging and CORS middleware.
func NewRouter(svcs Services, corsOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", HealthHandler)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", HandleGetCart(svcs.Cart))
		r.Post("/items", HandleAddCartLine(svcs.Cart))
		r.Delete("/items/{listingID}", HandleRemoveCartLine(svcs.Cart))
	})

	r.Post("/pricing/preview", HandlePreviewPricing(svcs.Pricing))
	r.Post("/checkout", HandleCheckout(svcs.Checkout))

	r.Route("/offers", func(r chi.Router) {
		r.Post("/", HandleCreateOffer(svcs.Offers))
		r.Post("/{offerID}/accept", HandleAcceptOffer(svcs.Offers))
		r.Post("/{offerID}/reject", HandleRejectOffer(svcs.Offers))
	})

	r.NotFound(NotFoundHandler().ServeHTTP)

	return RequestLogger(CORS(corsOrigins, r), logger)
}
