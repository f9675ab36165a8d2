package settlement

import (
	"time"

	"github.com/angelmondragon/ticket-escrow-backend/pkg/db/models"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/enums"
)

// Outcome explains why a listing reached its terminal status.
type Outcome string

const (
	OutcomeDelivered    Outcome = "delivered"
	OutcomeNotDelivered Outcome = "not_delivered"
	OutcomeNoBids       Outcome = "no_bids"
	OutcomeExpired      Outcome = "expired"
)

// BestBid is the bid that would win if the listing settled now.
type BestBid struct {
	BidID  uint64 `json:"bidId"`
	Bidder string `json:"bidder"`
	Amount int64  `json:"amount"`
}

// Refund is one bid returned to its bidder.
type Refund struct {
	BidID  uint64 `json:"bidId"`
	Bidder string `json:"bidder"`
	Amount int64  `json:"amount"`
}

// Resolution describes a committed settlement or closure.
type Resolution struct {
	ListingID      uint64              `json:"listingId"`
	Status         enums.ListingStatus `json:"status"`
	Outcome        Outcome             `json:"outcome"`
	Buyer          *string             `json:"buyer,omitempty"`
	WinningBid     *BestBid            `json:"winningBid,omitempty"`
	SellerProceeds int64               `json:"sellerProceeds"`
	Refunds        []Refund            `json:"refunds"`
	ResolvedAt     time.Time           `json:"resolvedAt"`
}

// RefundedTotal sums every refund in the resolution.
func (r *Resolution) RefundedTotal() int64 {
	var total int64
	for _, refund := range r.Refunds {
		total += refund.Amount
	}
	return total
}

// selectBest picks the strictly greatest amount; on equal amounts the lower
// bid id, which was admitted first, keeps precedence. bids must be active.
func selectBest(bids []models.Bid) *models.Bid {
	var best *models.Bid
	for i := range bids {
		candidate := &bids[i]
		if best == nil ||
			candidate.Amount > best.Amount ||
			(candidate.Amount == best.Amount && candidate.ID < best.ID) {
			best = candidate
		}
	}
	return best
}
