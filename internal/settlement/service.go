package settlement

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/ticket-escrow-backend/internal/bids"
	"github.com/angelmondragon/ticket-escrow-backend/internal/ledger"
	"github.com/angelmondragon/ticket-escrow-backend/internal/listings"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/db"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/db/models"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ticket-escrow-backend/pkg/errors"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/logger"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/metrics"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/outbox"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/outbox/payloads"
)

// Service is the only component that moves funds out of custody.
type Service interface {
	EvaluateBestBid(ctx context.Context, listingID uint64) (*BestBid, error)
	ResolveWithAttestation(ctx context.Context, input ResolveInput) (*Resolution, error)
	CloseUnresolved(ctx context.Context, listingID uint64) (*Resolution, error)
	CustodyForListing(ctx context.Context, listingID uint64) (int64, error)
}

type ResolveInput struct {
	ListingID uint64
	Caller    string
	Delivered bool
}

// Custody releases escrowed funds inside the caller's transaction.
type Custody interface {
	Credit(ctx context.Context, tx *gorm.DB, to string, amount int64, ref ledger.Reference) error
	CustodyForListing(ctx context.Context, listingID uint64) (int64, error)
}

// VerifierAuthorizer admits only the registered verifier.
type VerifierAuthorizer interface {
	RequireVerifier(ctx context.Context, caller string) error
}

type ServiceParams struct {
	Listings  listings.Repository
	Bids      bids.Repository
	Custody   Custody
	Verifiers VerifierAuthorizer
	DB        db.TxRunner
	Outbox    outbox.Emitter
	Logger    *logger.Logger
	Metrics   *metrics.SettlementMetrics
	Clock     func() time.Time
}

type service struct {
	listings  listings.Repository
	bids      bids.Repository
	custody   Custody
	verifiers VerifierAuthorizer
	tx        db.TxRunner
	outbox    outbox.Emitter
	logg      *logger.Logger
	metrics   *metrics.SettlementMetrics
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Listings == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if params.Bids == nil {
		return nil, fmt.Errorf("bids repository required")
	}
	if params.Custody == nil {
		return nil, fmt.Errorf("custody ledger required")
	}
	if params.Verifiers == nil {
		return nil, fmt.Errorf("verifier authorizer required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &service{
		listings:  params.Listings,
		bids:      params.Bids,
		custody:   params.Custody,
		verifiers: params.Verifiers,
		tx:        params.DB,
		outbox:    params.Outbox,
		logg:      params.Logger,
		metrics:   params.Metrics,
		now:       now,
	}, nil
}

// EvaluateBestBid reads the active bid set and never writes. It returns nil
// when the listing has no active bids.
func (s *service) EvaluateBestBid(ctx context.Context, listingID uint64) (*BestBid, error) {
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing == nil {
		return nil, pkgerrors.ErrListingNotFound.WithDetails(map[string]any{"listingId": listingID})
	}
	active, err := s.bids.ListActiveByListing(ctx, listingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active bids")
	}
	best := selectBest(active)
	if best == nil {
		return nil, nil
	}
	return &BestBid{BidID: best.ID, Bidder: best.Bidder, Amount: best.Amount}, nil
}

func (s *service) ResolveWithAttestation(ctx context.Context, input ResolveInput) (*Resolution, error) {
	if err := s.verifiers.RequireVerifier(ctx, input.Caller); err != nil {
		return nil, err
	}

	var resolution *Resolution
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		listing, active, err := s.lockOpen(ctx, tx, input.ListingID)
		if err != nil {
			return err
		}
		if listing.Status != enums.ListingStatusOpen {
			return pkgerrors.ErrListingAlreadyResolved.WithDetails(map[string]any{"listingId": listing.ID, "status": listing.Status})
		}

		now := s.now().UTC()
		outcome := OutcomeNotDelivered
		switch {
		case listing.IsExpired(int64(len(active)), now):
			outcome = OutcomeExpired
		case len(active) == 0:
			outcome = OutcomeNoBids
		case input.Delivered:
			outcome = OutcomeDelivered
		}

		resolution, err = s.settle(ctx, tx, listing, active, outcome, now, input.Caller)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.observe(ctx, resolution)
	return resolution, nil
}

// CloseUnresolved runs the refund path for an expired listing on behalf of any
// caller. A listing that is already terminal, or not yet expired, is left
// alone and nil is returned.
func (s *service) CloseUnresolved(ctx context.Context, listingID uint64) (*Resolution, error) {
	var resolution *Resolution
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		listing, active, err := s.lockOpen(ctx, tx, listingID)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		if !listing.IsExpired(int64(len(active)), now) {
			return nil
		}
		resolution, err = s.settle(ctx, tx, listing, active, OutcomeExpired, now, "")
		return err
	})
	if err != nil || resolution == nil {
		return nil, err
	}
	s.observe(ctx, resolution)
	return resolution, nil
}

func (s *service) CustodyForListing(ctx context.Context, listingID uint64) (int64, error) {
	return s.custody.CustodyForListing(ctx, listingID)
}

// lockOpen loads the listing under a row lock together with its active bids.
func (s *service) lockOpen(ctx context.Context, tx *gorm.DB, listingID uint64) (*models.Listing, []models.Bid, error) {
	listing, err := s.listings.WithTx(tx).FindByIDForUpdate(ctx, listingID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing == nil {
		return nil, nil, pkgerrors.ErrListingNotFound.WithDetails(map[string]any{"listingId": listingID})
	}
	if listing.Status != enums.ListingStatusOpen {
		return listing, nil, nil
	}
	active, err := s.bids.WithTx(tx).ListActiveByListing(ctx, listingID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active bids")
	}
	return listing, active, nil
}

// settle applies the outcome inside tx. Only a delivered outcome pays the
// seller; every other outcome refunds all active bids and closes the listing.
func (s *service) settle(ctx context.Context, tx *gorm.DB, listing *models.Listing, active []models.Bid, outcome Outcome, now time.Time, actor string) (*Resolution, error) {
	bidRepo := s.bids.WithTx(tx)
	resolution := &Resolution{
		ListingID:  listing.ID,
		Status:     enums.ListingStatusClosed,
		Outcome:    outcome,
		Refunds:    []Refund{},
		ResolvedAt: now,
	}

	var winner *models.Bid
	if outcome == OutcomeDelivered {
		winner = selectBest(active)
	}
	var buyerRef *string
	if winner != nil {
		ref := ledger.Reference{ListingID: listing.ID, BidID: winner.ID, Type: enums.LedgerEventTypePayoutCredit}
		if err := s.custody.Credit(ctx, tx, listing.Seller, winner.Amount, ref); err != nil {
			return nil, err
		}
		if err := s.transition(ctx, bidRepo, winner.ID, enums.BidStatusWon, now); err != nil {
			return nil, err
		}
		buyer := winner.Bidder
		resolution.Status = enums.ListingStatusSettled
		resolution.Buyer = &buyer
		resolution.WinningBid = &BestBid{BidID: winner.ID, Bidder: winner.Bidder, Amount: winner.Amount}
		resolution.SellerProceeds = winner.Amount
		if winner.BidderRef != "" {
			bidderRef := winner.BidderRef
			buyerRef = &bidderRef
		}
	}

	for _, bid := range active {
		if winner != nil && bid.ID == winner.ID {
			continue
		}
		ref := ledger.Reference{ListingID: listing.ID, BidID: bid.ID, Type: enums.LedgerEventTypeRefundCredit}
		if err := s.custody.Credit(ctx, tx, bid.Bidder, bid.Amount, ref); err != nil {
			return nil, err
		}
		if err := s.transition(ctx, bidRepo, bid.ID, enums.BidStatusRefunded, now); err != nil {
			return nil, err
		}
		resolution.Refunds = append(resolution.Refunds, Refund{BidID: bid.ID, Bidder: bid.Bidder, Amount: bid.Amount})
	}

	moved, err := s.listings.WithTx(tx).MarkResolved(ctx, listings.Resolution{
		ListingID:  listing.ID,
		Status:     resolution.Status,
		Buyer:      resolution.Buyer,
		BuyerRef:   buyerRef,
		ResolvedAt: now,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve listing")
	}
	if !moved {
		return nil, pkgerrors.ErrListingAlreadyResolved.WithDetails(map[string]any{"listingId": listing.ID})
	}

	if err := s.emit(ctx, tx, resolution, actor); err != nil {
		return nil, err
	}
	return resolution, nil
}

func (s *service) transition(ctx context.Context, repo bids.Repository, bidID uint64, status enums.BidStatus, now time.Time) error {
	ok, err := repo.UpdateStatus(ctx, bidID, status, now)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update bid status")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "bid is no longer active").WithDetails(map[string]any{"bidId": bidID})
	}
	return nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, resolution *Resolution, actor string) error {
	eventType := enums.EventListingClosed
	if resolution.Status == enums.ListingStatusSettled {
		eventType = enums.EventListingSettled
	}
	data := payloads.ListingResolvedEvent{
		ListingID:      resolution.ListingID,
		Status:         resolution.Status,
		Outcome:        string(resolution.Outcome),
		Buyer:          resolution.Buyer,
		SellerProceeds: resolution.SellerProceeds,
		RefundedBids:   len(resolution.Refunds),
		RefundedTotal:  resolution.RefundedTotal(),
		ResolvedAt:     resolution.ResolvedAt,
	}
	if resolution.WinningBid != nil {
		bidID := resolution.WinningBid.BidID
		data.WinningBidID = &bidID
	}
	event := outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateListing,
		AggregateID:   strconv.FormatUint(resolution.ListingID, 10),
		OccurredAt:    resolution.ResolvedAt,
		Data:          data,
	}
	if actor != "" {
		event.Actor = &outbox.ActorRef{Account: actor, Role: "verifier"}
	}
	return s.outbox.Emit(ctx, tx, event)
}

func (s *service) observe(ctx context.Context, resolution *Resolution) {
	s.metrics.ObserveResolution(
		string(resolution.Status),
		string(resolution.Outcome),
		resolution.SellerProceeds,
		len(resolution.Refunds),
		resolution.RefundedTotal(),
	)
	logCtx := s.logg.WithFields(s.logg.WithListingID(ctx, resolution.ListingID), map[string]any{
		"status":       resolution.Status,
		"outcome":      resolution.Outcome,
		"refunded":     len(resolution.Refunds),
		"seller_units": resolution.SellerProceeds,
	})
	s.logg.Info(logCtx, "listing resolved")
}
