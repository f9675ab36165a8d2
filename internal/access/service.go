package access

import (
	"context"
	"fmt"
	"strconv"

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

// Service guards the owner-only and verifier-only operations.
type Service interface {
	Initialize(ctx context.Context, input InitializeInput) (*models.MarketplaceSettings, error)
	Settings(ctx context.Context) (*models.MarketplaceSettings, error)
	SetVerifier(ctx context.Context, caller, verifier string) (*models.MarketplaceSettings, error)
	RequireOwner(ctx context.Context, caller string) error
	RequireVerifier(ctx context.Context, caller string) error
}

// InitializeInput seeds the settings row. Verifier is optional.
type InitializeInput struct {
	Owner          string
	CustodyAccount string
	Verifier       string
}

type ServiceParams struct {
	Repo   Repository
	DB     db.TxRunner
	Outbox outbox.Emitter
	Logger *logger.Logger
}

type service struct {
	repo   Repository
	tx     db.TxRunner
	outbox outbox.Emitter
	logg   *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("access repository required")
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
	return &service{repo: params.Repo, tx: params.DB, outbox: params.Outbox, logg: params.Logger}, nil
}

// Initialize writes the settings row on first boot. Later boots must agree on
// the owner and custody account, which are fixed for the marketplace lifetime.
func (s *service) Initialize(ctx context.Context, input InitializeInput) (*models.MarketplaceSettings, error) {
	owner, err := account.Normalize(input.Owner)
	if err != nil {
		return nil, fmt.Errorf("owner account: %w", err)
	}
	custody, err := account.Normalize(input.CustodyAccount)
	if err != nil {
		return nil, fmt.Errorf("custody account: %w", err)
	}
	seed := &models.MarketplaceSettings{Owner: owner, CustodyAccount: custody}
	if input.Verifier != "" {
		verifier, err := account.Normalize(input.Verifier)
		if err != nil {
			return nil, fmt.Errorf("verifier account: %w", err)
		}
		seed.Verifier = &verifier
	}

	var settings *models.MarketplaceSettings
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateIfAbsent(ctx, seed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed marketplace settings")
		}
		current, err := repo.Get(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load marketplace settings")
		}
		if current == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, "marketplace settings missing after seed")
		}
		if !account.Equal(current.Owner, owner) {
			return pkgerrors.New(pkgerrors.CodeConflict, "marketplace owner is fixed and cannot be reassigned")
		}
		if !account.Equal(current.CustodyAccount, custody) {
			return pkgerrors.New(pkgerrors.CodeConflict, "custody account is fixed and cannot be reassigned")
		}
		settings = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"owner": settings.Owner, "custody": settings.CustodyAccount}), "marketplace settings ready")
	return settings, nil
}

func (s *service) Settings(ctx context.Context) (*models.MarketplaceSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load marketplace settings")
	}
	if settings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "marketplace not initialized")
	}
	return settings, nil
}

// SetVerifier replaces the verifier. Only the owner may call it.
func (s *service) SetVerifier(ctx context.Context, caller, verifier string) (*models.MarketplaceSettings, error) {
	next, err := account.Normalize(verifier)
	if err != nil {
		return nil, err
	}

	var updated *models.MarketplaceSettings
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.GetForUpdate(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load marketplace settings")
		}
		if current == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, "marketplace not initialized")
		}
		if !account.Equal(current.Owner, caller) {
			return pkgerrors.ErrNotOwner
		}
		previous := current.Verifier
		if err := repo.UpdateVerifier(ctx, next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update verifier")
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventVerifierChanged,
			AggregateType: enums.AggregateMarketplace,
			AggregateID:   strconv.Itoa(models.MarketplaceSettingsID),
			Actor:         &outbox.ActorRef{Account: current.Owner, Role: "owner"},
			Data:          payloads.VerifierChangedEvent{Previous: previous, Verifier: next},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit verifier changed")
		}
		current.Verifier = &next
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "verifier", next), "verifier updated")
	return updated, nil
}

func (s *service) RequireOwner(ctx context.Context, caller string) error {
	settings, err := s.Settings(ctx)
	if err != nil {
		return err
	}
	if caller == "" || !account.Equal(settings.Owner, caller) {
		return pkgerrors.ErrNotOwner
	}
	return nil
}

// RequireVerifier fails with ErrNotVerifier when no verifier is registered.
func (s *service) RequireVerifier(ctx context.Context, caller string) error {
	settings, err := s.Settings(ctx)
	if err != nil {
		return err
	}
	if caller == "" || settings.Verifier == nil || !account.Equal(*settings.Verifier, caller) {
		return pkgerrors.ErrNotVerifier
	}
	return nil
}
