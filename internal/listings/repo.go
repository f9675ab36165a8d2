package listings

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/ticket-escrow-backend/pkg/db"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/db/models"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/enums"
)

// Repository owns the listings table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, listing *models.Listing) error
	FindByID(ctx context.Context, id uint64) (*models.Listing, error)
	FindByIDForUpdate(ctx context.Context, id uint64) (*models.Listing, error)
	ListBySeller(ctx context.Context, seller string) ([]models.Listing, error)
	ListAll(ctx context.Context) ([]models.Listing, error)
	ListOpenIDs(ctx context.Context) ([]uint64, error)
	MarkResolved(ctx context.Context, update Resolution) (bool, error)
}

// Resolution moves an open listing to a terminal status.
type Resolution struct {
	ListingID  uint64
	Status     enums.ListingStatus
	Buyer      *string
	BuyerRef   *string
	ResolvedAt time.Time
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

func (r *repository) Create(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

// FindByID returns nil without error when the listing does not exist.
func (r *repository) FindByID(ctx context.Context, id uint64) (*models.Listing, error) {
	return r.first(r.db.WithContext(ctx), id)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uint64) (*models.Listing, error) {
	return r.first(db.ForUpdate(r.db.WithContext(ctx)), id)
}

func (r *repository) first(query *gorm.DB, id uint64) (*models.Listing, error) {
	var listing models.Listing
	err := query.Where("id = ?", id).First(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) ListBySeller(ctx context.Context, seller string) ([]models.Listing, error) {
	var rows []models.Listing
	err := r.db.WithContext(ctx).
		Where("seller = ?", seller).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListAll(ctx context.Context) ([]models.Listing, error) {
	var rows []models.Listing
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) ListOpenIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("status = ?", enums.ListingStatusOpen).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// MarkResolved only touches open rows and reports whether the transition happened.
func (r *repository) MarkResolved(ctx context.Context, update Resolution) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ? AND status = ?", update.ListingID, enums.ListingStatusOpen).
		Updates(map[string]any{
			"status":      update.Status,
			"buyer":       update.Buyer,
			"buyer_ref":   update.BuyerRef,
			"resolved_at": update.ResolvedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
