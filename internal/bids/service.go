package bids

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/ticket-escrow-backend/internal/ledger"
	"github.com/angelmondragon/ticket-escrow-backend/internal/listings"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/account"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/db"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/db/models"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ticket-escrow-backend/pkg/errors"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/logger"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/outbox"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/outbox/payloads"
)

// Service is the bid book.
type Service interface {
	PlaceBid(ctx context.Context, input PlaceBidInput) (*models.Bid, error)
	ListForListing(ctx context.Context, listingID uint64) ([]models.Bid, error)
	ListForBidder(ctx context.Context, bidder string) ([]models.Bid, error)
}

type PlaceBidInput struct {
	ListingID uint64
	Bidder    string
	BidderRef string
	Amount    int64
}

// Escrow pulls bid funds into custody inside the caller's transaction.
type Escrow interface {
	Debit(ctx context.Context, tx *gorm.DB, from string, amount int64, ref ledger.Reference) error
}

type ServiceParams struct {
	Repo     Repository
	Listings listings.Repository
	Escrow   Escrow
	DB       db.TxRunner
	Outbox   outbox.Emitter
	Logger   *logger.Logger
	Clock    func() time.Time
}

type service struct {
	repo     Repository
	listings listings.Repository
	escrow   Escrow
	tx       db.TxRunner
	outbox   outbox.Emitter
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("bids repository required")
	}
	if params.Listings == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if params.Escrow == nil {
		return nil, fmt.Errorf("escrow ledger required")
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
		repo:     params.Repo,
		listings: params.Listings,
		escrow:   params.Escrow,
		tx:       params.DB,
		outbox:   params.Outbox,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// PlaceBid admits a bid and moves its amount into custody. Any failure,
// including a rejected debit, leaves no bid row and no ledger movement.
func (s *service) PlaceBid(ctx context.Context, input PlaceBidInput) (*models.Bid, error) {
	bidder, err := account.Normalize(input.Bidder)
	if err != nil {
		return nil, err
	}

	var bid *models.Bid
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		listing, err := s.listings.WithTx(tx).FindByIDForUpdate(ctx, input.ListingID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
		}
		if listing == nil {
			return pkgerrors.ErrListingNotFound.WithDetails(map[string]any{"listingId": input.ListingID})
		}

		now := s.now().UTC()
		if err := admit(listing, input.Amount, now); err != nil {
			return err
		}

		repo := s.repo.WithTx(tx)
		dup, err := repo.HasActiveBid(ctx, listing.ID, bidder)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing bid")
		}
		if dup {
			return pkgerrors.ErrDuplicateBid.WithDetails(map[string]any{"listingId": listing.ID, "bidder": bidder})
		}

		bid = &models.Bid{
			ListingID: listing.ID,
			Bidder:    bidder,
			BidderRef: strings.TrimSpace(input.BidderRef),
			Amount:    input.Amount,
			Status:    enums.BidStatusActive,
			CreatedAt: now,
		}
		if err := repo.Create(ctx, bid); err != nil {
			if db.IsUniqueViolation(err, "ux_bids_active_bidder") {
				return pkgerrors.ErrDuplicateBid.WithDetails(map[string]any{"listingId": listing.ID, "bidder": bidder})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bid")
		}

		ref := ledger.Reference{ListingID: listing.ID, BidID: bid.ID}
		if err := s.escrow.Debit(ctx, tx, bidder, bid.Amount, ref); err != nil {
			if isTransferFailure(err) {
				return pkgerrors.ErrTransferRejected.WithCause(err).WithDetails(map[string]any{"bidder": bidder, "amount": bid.Amount})
			}
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBidPlaced,
			AggregateType: enums.AggregateListing,
			AggregateID:   strconv.FormatUint(listing.ID, 10),
			Actor:         &outbox.ActorRef{Account: bidder, Role: "bidder"},
			OccurredAt:    now,
			Data: payloads.BidPlacedEvent{
				ListingID: listing.ID,
				BidID:     bid.ID,
				Bidder:    bidder,
				Amount:    bid.Amount,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithListingID(s.logg.WithAccount(ctx, bidder), bid.ListingID)
	s.logg.Info(s.logg.WithField(logCtx, "bid_id", bid.ID), "bid placed")
	return bid, nil
}

// admit applies the listing-level admission rules in reporting order.
func admit(listing *models.Listing, amount int64, now time.Time) error {
	if listing.Status != enums.ListingStatusOpen {
		return pkgerrors.ErrListingClosed.WithDetails(map[string]any{"listingId": listing.ID, "status": listing.Status})
	}
	if now.After(listing.BidDeadline) {
		return pkgerrors.ErrBiddingExpired.WithDetails(map[string]any{"listingId": listing.ID, "bidDeadline": listing.BidDeadline})
	}
	if amount < listing.MinimumBid {
		return pkgerrors.ErrBidTooLow.WithDetails(map[string]any{"listingId": listing.ID, "minimumBid": listing.MinimumBid})
	}
	return nil
}

func isTransferFailure(err error) bool {
	typed := pkgerrors.As(err)
	if typed == nil {
		return false
	}
	return typed.Code() == pkgerrors.CodeTransferRejected
}

func (s *service) ListForListing(ctx context.Context, listingID uint64) ([]models.Bid, error) {
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing == nil {
		return nil, pkgerrors.ErrListingNotFound.WithDetails(map[string]any{"listingId": listingID})
	}
	rows, err := s.repo.ListByListing(ctx, listingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listing bids")
	}
	return rows, nil
}

func (s *service) ListForBidder(ctx context.Context, bidder string) ([]models.Bid, error) {
	addr, err := account.Normalize(bidder)
	if err != nil {
		return []models.Bid{}, nil
	}
	rows, err := s.repo.ListByBidder(ctx, addr)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bidder bids")
	}
	return rows, nil
}
