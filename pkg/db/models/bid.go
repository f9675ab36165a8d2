package models

import (
	"time"

	"github.com/angelmondragon/ticket-escrow-backend/pkg/enums"
)

// Bid is an escrowed offer against a listing. Rows are never deleted.
type Bid struct {
	ID         uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	ListingID  uint64          `gorm:"column:listing_id;not null;index:idx_bids_listing"`
	Bidder     string          `gorm:"column:bidder;not null;index:idx_bids_bidder"`
	BidderRef  string          `gorm:"column:bidder_ref;not null;default:''"`
	Amount     int64           `gorm:"column:amount;not null"`
	Status     enums.BidStatus `gorm:"column:status;type:bid_status_enum;not null"`
	ResolvedAt *time.Time      `gorm:"column:resolved_at"`
	CreatedAt  time.Time       `gorm:"column:created_at"`
}
