package models

import (
	"time"

	"github.com/angelmondragon/ticket-escrow-backend/pkg/enums"
)

// Listing is a ticket offered for resale. Status only ever leaves open once.
type Listing struct {
	ID                 uint64              `gorm:"column:id;primaryKey;autoIncrement"`
	Seller             string              `gorm:"column:seller;not null;index:idx_listings_seller"`
	SellerRef          string              `gorm:"column:seller_ref;not null;default:''"`
	EventName          string              `gorm:"column:event_name;not null"`
	EventDetails       string              `gorm:"column:event_details;not null"`
	EventDate          string              `gorm:"column:event_date;not null"`
	Location           string              `gorm:"column:location;not null"`
	MediaRef           string              `gorm:"column:media_ref;not null;default:''"`
	MinimumBid         int64               `gorm:"column:minimum_bid;not null"`
	BidDeadline        time.Time           `gorm:"column:bid_deadline;not null"`
	ResolutionDeadline time.Time           `gorm:"column:resolution_deadline;not null"`
	Status             enums.ListingStatus `gorm:"column:status;type:listing_status_enum;not null;index:idx_listings_status"`
	Buyer              *string             `gorm:"column:buyer"`
	BuyerRef           *string             `gorm:"column:buyer_ref"`
	ResolvedAt         *time.Time          `gorm:"column:resolved_at"`
	CreatedAt          time.Time           `gorm:"column:created_at"`
	UpdatedAt          time.Time           `gorm:"column:updated_at"`
}

// IsExpired reports whether an open listing can no longer reach a sale: its
// resolution deadline has passed, or bidding closed without any active bid.
// Terminal listings are never expired.
func (l *Listing) IsExpired(activeBids int64, now time.Time) bool {
	if l == nil || l.Status != enums.ListingStatusOpen {
		return false
	}
	if now.After(l.ResolutionDeadline) {
		return true
	}
	return activeBids == 0 && now.After(l.BidDeadline)
}
