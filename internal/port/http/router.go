package http

import (
	"net/http"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/platform/logger"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/platform/metrics"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterDeps struct {
	Auth        service.AuthService
	Catalog     service.CatalogService
	Cart        service.CartService
	Log         logger.Logger
	Metrics     *metrics.Manager
	RateLimiter *RateLimiter
}

// NewRouter builds the public REST API. Anonymous requests are rate limited
// by client IP, authenticated ones by user id.
func NewRouter(deps RouterDeps) http.Handler {
	authHandler := NewAuthHandler(deps.Auth, deps.Log)
	catalogHandler := NewCatalogHandler(deps.Catalog, deps.Log)
	cartHandler := NewCartHandler(deps.Cart, deps.Log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(deps.Log))
	if deps.Metrics != nil {
		r.Use(Metrics(deps.Metrics))
	}

	limit := func(next http.Handler) http.Handler { return next }
	if deps.RateLimiter != nil {
		limit = deps.RateLimiter.Middleware
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondOK(w, http.StatusOK, "ok", nil)
	})

	r.Group(func(public chi.Router) {
		public.Use(limit)
		public.Post("/api/auth/register", authHandler.Register)
		public.Post("/api/auth/login", authHandler.Login)
		public.Get("/api/categories", catalogHandler.Categories)
		public.Get("/api/listings", catalogHandler.SearchListings)
		public.Get("/api/listings/{listingId}", catalogHandler.GetListing)
	})

	r.Group(func(authRouter chi.Router) {
		authRouter.Use(JWTAuth(deps.Auth, deps.Log))
		authRouter.Use(limit)

		authRouter.Post("/api/auth/logout", authHandler.Logout)
		authRouter.Get("/api/auth/me", authHandler.Me)

		authRouter.Route("/api/cart", func(cart chi.Router) {
			cart.Get("/", cartHandler.Get)
			cart.Post("/", cartHandler.Add)
			cart.Delete("/clear", cartHandler.Clear)
			cart.Put("/{cartItemId}", cartHandler.UpdateQuantity)
			cart.Delete("/{cartItemId}", cartHandler.Remove)
			cart.Patch("/{cartItemId}/selection", cartHandler.SetSelection)
		})
	})

	return otelhttp.NewHandler(r, "marketplace-api")
}
