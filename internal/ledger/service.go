package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/ticket-escrow-backend/pkg/account"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/db"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/db/models"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ticket-escrow-backend/pkg/errors"
)

// Service is the fungible token ledger escrow settles against. Funds pulled
// from bidders land in the custody account and only leave it through Credit.
type Service interface {
	CustodyAccount() string
	Balance(ctx context.Context, address string) (int64, error)
	Allowance(ctx context.Context, owner, spender string) (int64, error)
	Approve(ctx context.Context, owner, spender string, amount int64) error
	Mint(ctx context.Context, caller, to string, amount int64) error
	Debit(ctx context.Context, tx *gorm.DB, from string, amount int64, ref Reference) error
	Credit(ctx context.Context, tx *gorm.DB, to string, amount int64, ref Reference) error
	CustodyForListing(ctx context.Context, listingID uint64) (int64, error)
	History(ctx context.Context, address string, limit int) ([]models.LedgerEvent, error)
}

// OwnerAuthorizer gates minting to the marketplace owner.
type OwnerAuthorizer interface {
	RequireOwner(ctx context.Context, caller string) error
}

// Reference attributes a custody movement to a listing and bid. Type picks
// the journal entry for credits and is ignored by Debit.
type Reference struct {
	ListingID uint64
	BidID     uint64
	Type      enums.LedgerEventType
	Metadata  map[string]any
}

type ServiceParams struct {
	Repo           Repository
	DB             db.TxRunner
	Owners         OwnerAuthorizer
	CustodyAccount string
}

type service struct {
	repo    Repository
	tx      db.TxRunner
	owners  OwnerAuthorizer
	custody string
}

// NewService wires a ledger service with the provided repository.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("ledger tx runner required")
	}
	if params.Owners == nil {
		return nil, fmt.Errorf("ledger owner authorizer required")
	}
	custody, err := account.Normalize(params.CustodyAccount)
	if err != nil {
		return nil, fmt.Errorf("custody account: %w", err)
	}
	return &service{
		repo:    params.Repo,
		tx:      params.DB,
		owners:  params.Owners,
		custody: custody,
	}, nil
}

func (s *service) CustodyAccount() string {
	return s.custody
}

func (s *service) Balance(ctx context.Context, address string) (int64, error) {
	addr, err := account.Normalize(address)
	if err != nil {
		return 0, err
	}
	balance, err := s.repo.Balance(ctx, addr)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read balance")
	}
	return balance, nil
}

func (s *service) Allowance(ctx context.Context, owner, spender string) (int64, error) {
	ownerAddr, err := account.Normalize(owner)
	if err != nil {
		return 0, err
	}
	spenderAddr, err := account.Normalize(spender)
	if err != nil {
		return 0, err
	}
	amount, err := s.repo.Allowance(ctx, ownerAddr, spenderAddr)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read allowance")
	}
	return amount, nil
}

// Approve replaces the allowance spender may pull from owner.
func (s *service) Approve(ctx context.Context, owner, spender string, amount int64) error {
	if amount < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "allowance cannot be negative")
	}
	ownerAddr, err := account.Normalize(owner)
	if err != nil {
		return err
	}
	spenderAddr, err := account.Normalize(spender)
	if err != nil {
		return err
	}
	if err := s.repo.SetAllowance(ctx, ownerAddr, spenderAddr, amount); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write allowance")
	}
	return nil
}

func (s *service) Mint(ctx context.Context, caller, to string, amount int64) error {
	if err := s.owners.RequireOwner(ctx, caller); err != nil {
		return err
	}
	if amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "mint amount must be positive")
	}
	toAddr, err := account.Normalize(to)
	if err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.AddBalance(ctx, toAddr, amount); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit minted funds")
		}
		return repo.CreateEvent(ctx, &models.LedgerEvent{
			ID:      uuid.New(),
			Type:    enums.LedgerEventTypeMint,
			Account: toAddr,
			Amount:  amount,
		})
	})
}

// Debit pulls amount from `from` into custody inside tx. The custody account
// must hold an allowance from `from` covering amount.
func (s *service) Debit(ctx context.Context, tx *gorm.DB, from string, amount int64, ref Reference) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "debit requires a transaction")
	}
	if amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "debit amount must be positive")
	}
	fromAddr, err := account.Normalize(from)
	if err != nil {
		return err
	}

	repo := s.repo.WithTx(tx)
	ok, err := repo.ConsumeAllowance(ctx, fromAddr, s.custody, amount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume allowance")
	}
	if !ok {
		return pkgerrors.ErrNotAuthorized.WithDetails(map[string]any{"account": fromAddr, "amount": amount})
	}
	ok, err = repo.SubtractBalance(ctx, fromAddr, amount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit balance")
	}
	if !ok {
		return pkgerrors.ErrInsufficientFunds.WithDetails(map[string]any{"account": fromAddr, "amount": amount})
	}
	if err := repo.AddBalance(ctx, s.custody, amount); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit custody")
	}
	return s.journal(ctx, repo, enums.LedgerEventTypeEscrowDebit, fromAddr, amount, ref)
}

// Credit releases amount from custody to `to` inside tx.
func (s *service) Credit(ctx context.Context, tx *gorm.DB, to string, amount int64, ref Reference) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "credit requires a transaction")
	}
	if amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be positive")
	}
	if !ref.Type.IsCustodyCredit() {
		return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("ledger event %q does not release custody", ref.Type))
	}
	toAddr, err := account.Normalize(to)
	if err != nil {
		return err
	}

	repo := s.repo.WithTx(tx)
	ok, err := repo.SubtractBalance(ctx, s.custody, amount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit custody")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeInternal, "custody balance below release amount")
	}
	if err := repo.AddBalance(ctx, toAddr, amount); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit account")
	}
	return s.journal(ctx, repo, ref.Type, toAddr, amount, ref)
}

func (s *service) journal(ctx context.Context, repo Repository, eventType enums.LedgerEventType, addr string, amount int64, ref Reference) error {
	id, err := uuid.NewV7()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate ledger event id")
	}
	event := &models.LedgerEvent{
		ID:      id,
		Type:    eventType,
		Account: addr,
		Amount:  amount,
	}
	if ref.ListingID != 0 {
		listingID := ref.ListingID
		event.ListingID = &listingID
	}
	if ref.BidID != 0 {
		bidID := ref.BidID
		event.BidID = &bidID
	}
	if len(ref.Metadata) > 0 {
		raw, err := json.Marshal(ref.Metadata)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal ledger metadata")
		}
		event.Metadata = raw
	}
	if err := repo.CreateEvent(ctx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record ledger event")
	}
	return nil
}

func (s *service) CustodyForListing(ctx context.Context, listingID uint64) (int64, error) {
	total, err := s.repo.CustodyForListing(ctx, listingID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum listing custody")
	}
	return total, nil
}

// History returns the newest limit journal rows for an account.
func (s *service) History(ctx context.Context, address string, limit int) ([]models.LedgerEvent, error) {
	addr, err := account.Normalize(address)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "history limit must be positive")
	}
	events, err := s.repo.ListEventsByAccount(ctx, addr, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger events")
	}
	return events, nil
}
