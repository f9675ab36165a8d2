package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/ticket-escrow-backend/pkg/enums"
)

// LedgerEvent records an immutable token movement. Custody movements carry
// the listing and bid they belong to.
type LedgerEvent struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Type      enums.LedgerEventType `gorm:"column:type;type:ledger_event_type_enum;not null"`
	Account   string                `gorm:"column:account;not null;index:idx_ledger_events_account"`
	Amount    int64                 `gorm:"column:amount;not null"`
	ListingID *uint64               `gorm:"column:listing_id;index:idx_ledger_events_listing"`
	BidID     *uint64               `gorm:"column:bid_id"`
	Metadata  json.RawMessage       `gorm:"column:metadata;type:jsonb"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
}
