package models

import "time"

// MarketplaceSettingsID is the primary key of the single settings row.
const MarketplaceSettingsID = 1

// MarketplaceSettings holds the fixed owner, the replaceable verifier and the
// custody account escrowed funds are held in.
type MarketplaceSettings struct {
	ID             uint      `gorm:"column:id;primaryKey"`
	Owner          string    `gorm:"column:owner;not null"`
	Verifier       *string   `gorm:"column:verifier"`
	CustodyAccount string    `gorm:"column:custody_account;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (MarketplaceSettings) TableName() string {
	return "marketplace_settings"
}
