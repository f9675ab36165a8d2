package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/ticket-escrow-backend/internal/access"
	"github.com/angelmondragon/ticket-escrow-backend/internal/bids"
	"github.com/angelmondragon/ticket-escrow-backend/internal/expiry"
	"github.com/angelmondragon/ticket-escrow-backend/internal/ledger"
	"github.com/angelmondragon/ticket-escrow-backend/internal/listings"
	"github.com/angelmondragon/ticket-escrow-backend/internal/settlement"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/config"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/db"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/logger"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/metrics"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/outbox"
)

// Services is the marketplace service graph shared by the api and the cron
// worker.
type Services struct {
	Outbox     *outbox.Repository
	Access     access.Service
	Ledger     ledger.Service
	Listings   listings.Service
	Bids       bids.Service
	Settlement settlement.Service
	Sweeper    *expiry.Sweeper
}

// NewServices builds every domain service on one database client and seeds
// the marketplace settings. Boot fails if the configured owner or custody
// account disagrees with what is already stored.
func NewServices(ctx context.Context, cfg *config.Config, client *db.Client, logg *logger.Logger, reg prometheus.Registerer) (*Services, error) {
	outboxRepo := outbox.NewRepository(client.DB())
	emitter := outbox.NewService(outboxRepo, logg)

	accessService, err := access.NewService(access.ServiceParams{
		Repo:   access.NewRepository(client.DB()),
		DB:     client,
		Outbox: emitter,
		Logger: logg,
	})
	if err != nil {
		return nil, fmt.Errorf("access service: %w", err)
	}
	settings, err := accessService.Initialize(ctx, access.InitializeInput{
		Owner:          cfg.Escrow.OwnerAccount,
		CustodyAccount: cfg.Escrow.CustodyAccount,
		Verifier:       cfg.Escrow.VerifierAccount,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize marketplace: %w", err)
	}

	ledgerService, err := ledger.NewService(ledger.ServiceParams{
		Repo:           ledger.NewRepository(client.DB()),
		DB:             client,
		Owners:         accessService,
		CustodyAccount: settings.CustodyAccount,
	})
	if err != nil {
		return nil, fmt.Errorf("ledger service: %w", err)
	}

	listingRepo := listings.NewRepository(client.DB())
	bidRepo := bids.NewRepository(client.DB())

	listingService, err := listings.NewService(listings.ServiceParams{
		Repo:   listingRepo,
		DB:     client,
		Outbox: emitter,
		Logger: logg,
	})
	if err != nil {
		return nil, fmt.Errorf("listings service: %w", err)
	}

	bidService, err := bids.NewService(bids.ServiceParams{
		Repo:     bidRepo,
		Listings: listingRepo,
		Escrow:   ledgerService,
		DB:       client,
		Outbox:   emitter,
		Logger:   logg,
	})
	if err != nil {
		return nil, fmt.Errorf("bids service: %w", err)
	}

	settlementService, err := settlement.NewService(settlement.ServiceParams{
		Listings:  listingRepo,
		Bids:      bidRepo,
		Custody:   ledgerService,
		Verifiers: accessService,
		DB:        client,
		Outbox:    emitter,
		Logger:    logg,
		Metrics:   metrics.NewSettlementMetrics(reg),
	})
	if err != nil {
		return nil, fmt.Errorf("settlement service: %w", err)
	}

	sweeper, err := expiry.NewSweeper(expiry.SweeperParams{
		Listings: listingRepo,
		Bids:     bidRepo,
		Closer:   settlementService,
		Logger:   logg,
	})
	if err != nil {
		return nil, fmt.Errorf("expiry sweeper: %w", err)
	}

	return &Services{
		Outbox:     outboxRepo,
		Access:     accessService,
		Ledger:     ledgerService,
		Listings:   listingService,
		Bids:       bidService,
		Settlement: settlementService,
		Sweeper:    sweeper,
	}, nil
}
