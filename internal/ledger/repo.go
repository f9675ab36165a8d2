package ledger

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/ticket-escrow-backend/pkg/db/models"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/enums"
)

// Repository manages persistence for balances, allowances and the journal.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Balance(ctx context.Context, address string) (int64, error)
	Allowance(ctx context.Context, owner, spender string) (int64, error)
	SetAllowance(ctx context.Context, owner, spender string, amount int64) error
	ConsumeAllowance(ctx context.Context, owner, spender string, amount int64) (bool, error)
	AddBalance(ctx context.Context, address string, amount int64) error
	SubtractBalance(ctx context.Context, address string, amount int64) (bool, error)
	CreateEvent(ctx context.Context, event *models.LedgerEvent) error
	ListEventsByListing(ctx context.Context, listingID uint64) ([]models.LedgerEvent, error)
	ListEventsByAccount(ctx context.Context, account string, limit int) ([]models.LedgerEvent, error)
	CustodyForListing(ctx context.Context, listingID uint64) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Balance(ctx context.Context, address string) (int64, error) {
	var balance int64
	err := r.db.WithContext(ctx).
		Model(&models.LedgerAccount{}).
		Select("COALESCE(MAX(balance), 0)").
		Where("address = ?", address).
		Scan(&balance).Error
	return balance, err
}

func (r *repository) Allowance(ctx context.Context, owner, spender string) (int64, error) {
	var amount int64
	err := r.db.WithContext(ctx).
		Model(&models.LedgerAllowance{}).
		Select("COALESCE(MAX(amount), 0)").
		Where("owner = ? AND spender = ?", owner, spender).
		Scan(&amount).Error
	return amount, err
}

func (r *repository) SetAllowance(ctx context.Context, owner, spender string, amount int64) error {
	row := models.LedgerAllowance{Owner: owner, Spender: spender, Amount: amount}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner"}, {Name: "spender"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
		}).
		Create(&row).Error
}

// ConsumeAllowance reports false when the allowance does not cover amount.
func (r *repository) ConsumeAllowance(ctx context.Context, owner, spender string, amount int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.LedgerAllowance{}).
		Where("owner = ? AND spender = ? AND amount >= ?", owner, spender, amount).
		Update("amount", gorm.Expr("amount - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) AddBalance(ctx context.Context, address string, amount int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.LedgerAccount{Address: address}).Error; err != nil {
		return err
	}
	return db.Model(&models.LedgerAccount{}).
		Where("address = ?", address).
		Update("balance", gorm.Expr("balance + ?", amount)).Error
}

// SubtractBalance reports false when the balance does not cover amount.
func (r *repository) SubtractBalance(ctx context.Context, address string, amount int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.LedgerAccount{}).
		Where("address = ? AND balance >= ?", address, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreateEvent(ctx context.Context, event *models.LedgerEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ListEventsByListing returns a listing's custody movements oldest first.
// Journal ids are time ordered and break created_at ties.
func (r *repository) ListEventsByListing(ctx context.Context, listingID uint64) ([]models.LedgerEvent, error) {
	var events []models.LedgerEvent
	if err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// ListEventsByAccount returns at most limit movements, newest first.
func (r *repository) ListEventsByAccount(ctx context.Context, account string, limit int) ([]models.LedgerEvent, error) {
	var events []models.LedgerEvent
	if err := r.db.WithContext(ctx).
		Where("account = ?", account).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// CustodyForListing sums escrow debits minus custody credits for a listing.
func (r *repository) CustodyForListing(ctx context.Context, listingID uint64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEvent{}).
		Select(
			"COALESCE(SUM(CASE WHEN type = ? THEN amount WHEN type IN ? THEN -amount ELSE 0 END), 0)",
			enums.LedgerEventTypeEscrowDebit,
			[]enums.LedgerEventType{enums.LedgerEventTypePayoutCredit, enums.LedgerEventTypeRefundCredit},
		).
		Where("listing_id = ?", listingID).
		Scan(&total).Error
	return total, err
}
