package payloads

import (
	"time"

	"github.com/angelmondragon/ticket-escrow-backend/pkg/enums"
)

// ListingCreatedEvent announces a new listing open for bids.
type ListingCreatedEvent struct {
	ListingID          uint64    `json:"listing_id"`
	Seller             string    `json:"seller"`
	EventName          string    `json:"event_name"`
	MinimumBid         int64     `json:"minimum_bid"`
	BidDeadline        time.Time `json:"bid_deadline"`
	ResolutionDeadline time.Time `json:"resolution_deadline"`
}

// BidPlacedEvent reports funds moved into custody for a bid.
type BidPlacedEvent struct {
	ListingID uint64 `json:"listing_id"`
	BidID     uint64 `json:"bid_id"`
	Bidder    string `json:"bidder"`
	Amount    int64  `json:"amount"`
}

// ListingResolvedEvent is emitted for both settlement and closure.
type ListingResolvedEvent struct {
	ListingID      uint64              `json:"listing_id"`
	Status         enums.ListingStatus `json:"status"`
	Outcome        string              `json:"outcome"`
	Buyer          *string             `json:"buyer,omitempty"`
	WinningBidID   *uint64             `json:"winning_bid_id,omitempty"`
	SellerProceeds int64               `json:"seller_proceeds"`
	RefundedBids   int                 `json:"refunded_bids"`
	RefundedTotal  int64               `json:"refunded_total"`
	ResolvedAt     time.Time           `json:"resolved_at"`
}

// VerifierChangedEvent records a verifier replacement by the owner.
type VerifierChangedEvent struct {
	Previous *string `json:"previous,omitempty"`
	Verifier string  `json:"verifier"`
}
