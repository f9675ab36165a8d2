package controllers

import (
	"time"

	"github.com/angelmondragon/ticket-escrow-backend/internal/settlement"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/amount"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/db/models"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/enums"
)

// Money pairs ledger base units with the display value for the token.
type Money struct {
	Units   int64  `json:"units"`
	Display string `json:"display"`
}

func newMoney(units int64, decimals int32) Money {
	return Money{Units: units, Display: amount.Format(units, decimals)}
}

type ListingDTO struct {
	ID                 uint64              `json:"listingId"`
	Seller             string              `json:"seller"`
	SellerRef          string              `json:"sellerRef"`
	EventName          string              `json:"eventName"`
	EventDetails       string              `json:"eventDetails"`
	EventDate          string              `json:"eventDate"`
	Location           string              `json:"location"`
	MediaRef           string              `json:"mediaRef"`
	MinimumBid         Money               `json:"minimumBid"`
	BidDeadline        time.Time           `json:"bidDeadline"`
	ResolutionDeadline time.Time           `json:"resolutionDeadline"`
	Status             enums.ListingStatus `json:"status"`
	Buyer              *string             `json:"buyer,omitempty"`
	BuyerRef           *string             `json:"buyerRef,omitempty"`
	ResolvedAt         *time.Time          `json:"resolvedAt,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
}

func newListingDTO(l models.Listing, decimals int32) ListingDTO {
	return ListingDTO{
		ID:                 l.ID,
		Seller:             l.Seller,
		SellerRef:          l.SellerRef,
		EventName:          l.EventName,
		EventDetails:       l.EventDetails,
		EventDate:          l.EventDate,
		Location:           l.Location,
		MediaRef:           l.MediaRef,
		MinimumBid:         newMoney(l.MinimumBid, decimals),
		BidDeadline:        l.BidDeadline.UTC(),
		ResolutionDeadline: l.ResolutionDeadline.UTC(),
		Status:             l.Status,
		Buyer:              l.Buyer,
		BuyerRef:           l.BuyerRef,
		ResolvedAt:         l.ResolvedAt,
		CreatedAt:          l.CreatedAt.UTC(),
	}
}

func newListingDTOs(rows []models.Listing, decimals int32) []ListingDTO {
	out := make([]ListingDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, newListingDTO(row, decimals))
	}
	return out
}

type BidDTO struct {
	ID         uint64          `json:"bidId"`
	ListingID  uint64          `json:"listingId"`
	Bidder     string          `json:"bidder"`
	BidderRef  string          `json:"bidderRef"`
	Amount     Money           `json:"amount"`
	Status     enums.BidStatus `json:"status"`
	ResolvedAt *time.Time      `json:"resolvedAt,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func newBidDTO(b models.Bid, decimals int32) BidDTO {
	return BidDTO{
		ID:         b.ID,
		ListingID:  b.ListingID,
		Bidder:     b.Bidder,
		BidderRef:  b.BidderRef,
		Amount:     newMoney(b.Amount, decimals),
		Status:     b.Status,
		ResolvedAt: b.ResolvedAt,
		CreatedAt:  b.CreatedAt.UTC(),
	}
}

func newBidDTOs(rows []models.Bid, decimals int32) []BidDTO {
	out := make([]BidDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, newBidDTO(row, decimals))
	}
	return out
}

type BestBidDTO struct {
	ListingID uint64 `json:"listingId"`
	BidID     uint64 `json:"bidId,omitempty"`
	Bidder    string `json:"bidder,omitempty"`
	Amount    *Money `json:"amount,omitempty"`
	HasBid    bool   `json:"hasBid"`
}

func newBestBidDTO(listingID uint64, best *settlement.BestBid, decimals int32) BestBidDTO {
	dto := BestBidDTO{ListingID: listingID}
	if best == nil {
		return dto
	}
	m := newMoney(best.Amount, decimals)
	dto.BidID = best.BidID
	dto.Bidder = best.Bidder
	dto.Amount = &m
	dto.HasBid = true
	return dto
}

type RefundDTO struct {
	BidID  uint64 `json:"bidId"`
	Bidder string `json:"bidder"`
	Amount Money  `json:"amount"`
}

type ResolutionDTO struct {
	ListingID      uint64              `json:"listingId"`
	Status         enums.ListingStatus `json:"status"`
	Outcome        settlement.Outcome  `json:"outcome"`
	Buyer          *string             `json:"buyer,omitempty"`
	WinningBidID   *uint64             `json:"winningBidId,omitempty"`
	SellerProceeds Money               `json:"sellerProceeds"`
	Refunds        []RefundDTO         `json:"refunds"`
	ResolvedAt     time.Time           `json:"resolvedAt"`
}

func newResolutionDTO(res *settlement.Resolution, decimals int32) ResolutionDTO {
	dto := ResolutionDTO{
		ListingID:      res.ListingID,
		Status:         res.Status,
		Outcome:        res.Outcome,
		Buyer:          res.Buyer,
		SellerProceeds: newMoney(res.SellerProceeds, decimals),
		Refunds:        make([]RefundDTO, 0, len(res.Refunds)),
		ResolvedAt:     res.ResolvedAt.UTC(),
	}
	if res.WinningBid != nil {
		id := res.WinningBid.BidID
		dto.WinningBidID = &id
	}
	for _, refund := range res.Refunds {
		dto.Refunds = append(dto.Refunds, RefundDTO{
			BidID:  refund.BidID,
			Bidder: refund.Bidder,
			Amount: newMoney(refund.Amount, decimals),
		})
	}
	return dto
}

type LedgerEventDTO struct {
	Type      enums.LedgerEventType `json:"type"`
	Amount    Money                 `json:"amount"`
	ListingID *uint64               `json:"listingId,omitempty"`
	BidID     *uint64               `json:"bidId,omitempty"`
	CreatedAt time.Time             `json:"createdAt"`
}

func newLedgerEventDTOs(rows []models.LedgerEvent, decimals int32) []LedgerEventDTO {
	out := make([]LedgerEventDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, LedgerEventDTO{
			Type:      row.Type,
			Amount:    newMoney(row.Amount, decimals),
			ListingID: row.ListingID,
			BidID:     row.BidID,
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return out
}
