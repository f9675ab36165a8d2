package bids

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/ticket-escrow-backend/pkg/db/models"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/enums"
)

// Repository owns the bids table. Rows are appended and their status updated,
// never deleted.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, bid *models.Bid) error
	HasActiveBid(ctx context.Context, listingID uint64, bidder string) (bool, error)
	ListByListing(ctx context.Context, listingID uint64) ([]models.Bid, error)
	ListActiveByListing(ctx context.Context, listingID uint64) ([]models.Bid, error)
	ListByBidder(ctx context.Context, bidder string) ([]models.Bid, error)
	CountActiveByListing(ctx context.Context, listingID uint64) (int64, error)
	UpdateStatus(ctx context.Context, bidID uint64, status enums.BidStatus, resolvedAt time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, bid *models.Bid) error {
	return r.db.WithContext(ctx).Create(bid).Error
}

func (r *repository) HasActiveBid(ctx context.Context, listingID uint64, bidder string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Bid{}).
		Where("listing_id = ? AND bidder = ? AND status = ?", listingID, bidder, enums.BidStatusActive).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ListByListing(ctx context.Context, listingID uint64) ([]models.Bid, error) {
	var rows []models.Bid
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// ListActiveByListing returns active bids in submission order.
func (r *repository) ListActiveByListing(ctx context.Context, listingID uint64) ([]models.Bid, error) {
	var rows []models.Bid
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND status = ?", listingID, enums.BidStatusActive).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListByBidder(ctx context.Context, bidder string) ([]models.Bid, error) {
	var rows []models.Bid
	err := r.db.WithContext(ctx).
		Where("bidder = ?", bidder).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountActiveByListing(ctx context.Context, listingID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Bid{}).
		Where("listing_id = ? AND status = ?", listingID, enums.BidStatusActive).
		Count(&count).Error
	return count, err
}

// UpdateStatus moves an active bid to a terminal status.
func (r *repository) UpdateStatus(ctx context.Context, bidID uint64, status enums.BidStatus, resolvedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Bid{}).
		Where("id = ? AND status = ?", bidID, enums.BidStatusActive).
		Updates(map[string]any{"status": status, "resolved_at": resolvedAt})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
