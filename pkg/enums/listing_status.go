package enums

import "fmt"

// ListingStatus maps to the listing_status_enum enum in Postgres.
type ListingStatus string

const (
	ListingStatusOpen    ListingStatus = "open"
	ListingStatusSettled ListingStatus = "settled"
	ListingStatusClosed  ListingStatus = "closed"
)

var validListingStatuses = []ListingStatus{
	ListingStatusOpen,
	ListingStatusSettled,
	ListingStatusClosed,
}

// IsValid reports whether the value matches the canonical listing status enum.
func (s ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s ListingStatus) IsTerminal() bool {
	return s == ListingStatusSettled || s == ListingStatusClosed
}

// ParseListingStatus converts raw input into ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}
