package listings

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/ticket-escrow-backend/pkg/account"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/db"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/db/models"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ticket-escrow-backend/pkg/errors"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/logger"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/outbox"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/outbox/payloads"
)

// Service is the listing registry.
type Service interface {
	Create(ctx context.Context, input CreateListingInput) (*models.Listing, error)
	Get(ctx context.Context, id uint64) (*models.Listing, error)
	ListByOwner(ctx context.Context, seller string) ([]models.Listing, error)
	ListAll(ctx context.Context) ([]models.Listing, error)
}

type CreateListingInput struct {
	Seller             string
	SellerRef          string
	EventName          string
	EventDetails       string
	EventDate          string
	Location           string
	MediaRef           string
	MinimumBid         int64
	BidDeadline        time.Time
	ResolutionDeadline time.Time
}

type ServiceParams struct {
	Repo   Repository
	DB     db.TxRunner
	Outbox outbox.Emitter
	Logger *logger.Logger
	Clock  func() time.Time
}

type service struct {
	repo   Repository
	tx     db.TxRunner
	outbox outbox.Emitter
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("listings repository required")
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
		repo:   params.Repo,
		tx:     params.DB,
		outbox: params.Outbox,
		logg:   params.Logger,
		now:    now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateListingInput) (*models.Listing, error) {
	listing, err := s.buildListing(input)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, listing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventListingCreated,
			AggregateType: enums.AggregateListing,
			AggregateID:   strconv.FormatUint(listing.ID, 10),
			Actor:         &outbox.ActorRef{Account: listing.Seller, Role: "seller"},
			OccurredAt:    listing.CreatedAt,
			Data: payloads.ListingCreatedEvent{
				ListingID:          listing.ID,
				Seller:             listing.Seller,
				EventName:          listing.EventName,
				MinimumBid:         listing.MinimumBid,
				BidDeadline:        listing.BidDeadline,
				ResolutionDeadline: listing.ResolutionDeadline,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithListingID(s.logg.WithAccount(ctx, listing.Seller), listing.ID)
	s.logg.Info(logCtx, "listing created")
	return listing, nil
}

func (s *service) buildListing(input CreateListingInput) (*models.Listing, error) {
	problems := map[string]string{}

	seller, err := account.Normalize(input.Seller)
	if err != nil {
		problems["seller"] = "must be a valid account address"
	}
	required := map[string]string{
		"eventName":    input.EventName,
		"eventDetails": input.EventDetails,
		"eventDate":    input.EventDate,
		"location":     input.Location,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			problems[field] = "is required"
		}
	}
	if input.MinimumBid <= 0 {
		problems["minimumBid"] = "must be greater than 0"
	}
	if input.BidDeadline.IsZero() {
		problems["bidDeadline"] = "is required"
	}
	if input.ResolutionDeadline.IsZero() {
		problems["resolutionDeadline"] = "is required"
	}
	if !input.BidDeadline.IsZero() && !input.ResolutionDeadline.IsZero() && !input.BidDeadline.Before(input.ResolutionDeadline) {
		problems["resolutionDeadline"] = "must be after bidDeadline"
	}
	if len(problems) > 0 {
		return nil, pkgerrors.ErrInvalidListing.WithDetails(problems)
	}

	return &models.Listing{
		Seller:             seller,
		SellerRef:          strings.TrimSpace(input.SellerRef),
		EventName:          strings.TrimSpace(input.EventName),
		EventDetails:       strings.TrimSpace(input.EventDetails),
		EventDate:          strings.TrimSpace(input.EventDate),
		Location:           strings.TrimSpace(input.Location),
		MediaRef:           strings.TrimSpace(input.MediaRef),
		MinimumBid:         input.MinimumBid,
		BidDeadline:        input.BidDeadline.UTC(),
		ResolutionDeadline: input.ResolutionDeadline.UTC(),
		Status:             enums.ListingStatusOpen,
		CreatedAt:          s.now().UTC(),
	}, nil
}

func (s *service) Get(ctx context.Context, id uint64) (*models.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing == nil {
		return nil, pkgerrors.ErrListingNotFound.WithDetails(map[string]any{"listingId": id})
	}
	return listing, nil
}

// ListByOwner returns an empty slice for sellers with no listings or
// addresses that could never have listed.
func (s *service) ListByOwner(ctx context.Context, seller string) ([]models.Listing, error) {
	addr, err := account.Normalize(seller)
	if err != nil {
		return []models.Listing{}, nil
	}
	rows, err := s.repo.ListBySeller(ctx, addr)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller listings")
	}
	return rows, nil
}

func (s *service) ListAll(ctx context.Context) ([]models.Listing, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listings")
	}
	return rows, nil
}
