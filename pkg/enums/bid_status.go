package enums

import "fmt"

// BidStatus maps to the bid_status_enum enum in Postgres.
type BidStatus string

const (
	BidStatusActive   BidStatus = "active"
	BidStatusWon      BidStatus = "won"
	BidStatusRefunded BidStatus = "refunded"
)

var validBidStatuses = []BidStatus{
	BidStatusActive,
	BidStatusWon,
	BidStatusRefunded,
}

func (s BidStatus) IsValid() bool {
	for _, candidate := range validBidStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseBidStatus(value string) (BidStatus, error) {
	for _, candidate := range validBidStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bid status %q", value)
}
