package access

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/ticket-escrow-backend/pkg/db"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/db/models"
)

// Repository persists the single marketplace settings row.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context) (*models.MarketplaceSettings, error)
	GetForUpdate(ctx context.Context) (*models.MarketplaceSettings, error)
	CreateIfAbsent(ctx context.Context, settings *models.MarketplaceSettings) error
	UpdateVerifier(ctx context.Context, verifier string) error
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

// Get returns nil without error when the marketplace is not initialized.
func (r *repository) Get(ctx context.Context) (*models.MarketplaceSettings, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *repository) GetForUpdate(ctx context.Context) (*models.MarketplaceSettings, error) {
	return r.find(db.ForUpdate(r.db.WithContext(ctx)))
}

func (r *repository) find(query *gorm.DB) (*models.MarketplaceSettings, error) {
	var settings models.MarketplaceSettings
	err := query.Where("id = ?", models.MarketplaceSettingsID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *repository) CreateIfAbsent(ctx context.Context, settings *models.MarketplaceSettings) error {
	settings.ID = models.MarketplaceSettingsID
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(settings).Error
}

func (r *repository) UpdateVerifier(ctx context.Context, verifier string) error {
	return r.db.WithContext(ctx).
		Model(&models.MarketplaceSettings{}).
		Where("id = ?", models.MarketplaceSettingsID).
		Update("verifier", verifier).Error
}
