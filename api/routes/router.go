package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/ticket-escrow-backend/api/controllers"
	"github.com/angelmondragon/ticket-escrow-backend/api/middleware"
	"github.com/angelmondragon/ticket-escrow-backend/internal/access"
	"github.com/angelmondragon/ticket-escrow-backend/internal/bids"
	"github.com/angelmondragon/ticket-escrow-backend/internal/ledger"
	"github.com/angelmondragon/ticket-escrow-backend/internal/listings"
	"github.com/angelmondragon/ticket-escrow-backend/internal/settlement"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/config"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/logger"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/redis"
)

// redisStore is the slice of the Redis client the HTTP layer depends on.
type redisStore interface {
	redis.IdempotencyStore
	redis.RateLimiter
	redis.Pinger
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient redisStore,
	gatherer prometheus.Gatherer,
	accessService access.Service,
	ledgerService ledger.Service,
	listingService listings.Service,
	bidService bids.Service,
	settlementService settlement.Service,
	sweeper controllers.Sweeper,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	decimals := cfg.Escrow.TokenDecimals
	writePolicy := middleware.NewWriteRateLimitPolicy("write", cfg.HTTP.WriteRateWindow, cfg.HTTP.WriteRateLimit)

	var (
		idempotencyStore redis.IdempotencyStore
		rateLimiter      redis.RateLimiter
	)
	deps := []controllers.Dependency{{Name: "db", Pinger: dbP}}
	if redisClient != nil {
		idempotencyStore = redisClient
		rateLimiter = redisClient
		deps = append(deps, controllers.Dependency{Name: "redis", Pinger: redisClient})
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps...))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	if !cfg.App.IsProd() {
		r.Route("/api/dev", func(r chi.Router) {
			r.Use(middleware.WriteRateLimit(writePolicy, rateLimiter, logg))
			r.Post("/token", controllers.DevToken(cfg.JWT, logg))
		})
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/marketplace", controllers.MarketplaceInfo(accessService, cfg.Escrow, logg))

		r.Get("/listings", controllers.ListingList(listingService, decimals, logg))
		r.Get("/listings/{listingId}", controllers.ListingGet(listingService, decimals, logg))
		r.Get("/listings/{listingId}/bids", controllers.ListingBids(bidService, decimals, logg))
		r.Get("/listings/{listingId}/best-bid", controllers.ListingBestBid(settlementService, decimals, logg))
		r.Get("/listings/{listingId}/custody", controllers.ListingCustody(settlementService, decimals, logg))
		r.Get("/sellers/{account}/listings", controllers.SellerListings(listingService, decimals, logg))
		r.Get("/bidders/{account}/bids", controllers.BidderBids(bidService, decimals, logg))
		r.Get("/accounts/{account}/balance", controllers.AccountBalance(ledgerService, decimals, logg))
		r.Get("/accounts/{account}/history", controllers.AccountHistory(ledgerService, decimals, logg))

		r.Group(func(r chi.Router) {
			r.Use(
				middleware.Auth(cfg.JWT, logg),
				middleware.WriteRateLimit(writePolicy, rateLimiter, logg),
				middleware.Idempotency(idempotencyStore, cfg.HTTP.IdempotencyTTL, logg),
			)

			r.Post("/listings", controllers.ListingCreate(listingService, decimals, logg))
			r.Post("/listings/{listingId}/bids", controllers.BidPlace(bidService, decimals, logg))
			r.Post("/listings/{listingId}/attestation", controllers.ListingAttest(settlementService, decimals, logg))
			r.Post("/listings/{listingId}/close", controllers.ListingClose(settlementService, decimals, logg))
			r.Post("/sweeps", controllers.SweepRun(sweeper, logg))
			r.Put("/admin/verifier", controllers.AdminSetVerifier(accessService, cfg.Escrow, logg))
			r.Post("/ledger/approvals", controllers.LedgerApprove(ledgerService, decimals, logg))
			r.Post("/ledger/mint", controllers.LedgerMint(ledgerService, decimals, logg))
		})
	})

	return r
}
