package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/angelmondragon/ticket-escrow-backend/pkg/enums"
)

func TestIsExpired(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	listing := &Listing{
		Status:             enums.ListingStatusOpen,
		BidDeadline:        base.Add(time.Hour),
		ResolutionDeadline: base.Add(24 * time.Hour),
	}

	cases := []struct {
		name   string
		bids   int64
		now    time.Time
		expect bool
	}{
		{"before bid deadline", 0, base, false},
		{"at bid deadline without bids", 0, listing.BidDeadline, false},
		{"after bid deadline without bids", 0, listing.BidDeadline.Add(time.Second), true},
		{"after bid deadline with bids", 2, listing.BidDeadline.Add(time.Second), false},
		{"at resolution deadline", 2, listing.ResolutionDeadline, false},
		{"after resolution deadline", 2, listing.ResolutionDeadline.Add(time.Nanosecond), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, listing.IsExpired(tc.bids, tc.now))
		})
	}
}

func TestIsExpiredIgnoresTerminalListings(t *testing.T) {
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, status := range []enums.ListingStatus{enums.ListingStatusSettled, enums.ListingStatusClosed} {
		listing := &Listing{Status: status, BidDeadline: past, ResolutionDeadline: past.Add(time.Hour)}
		assert.False(t, listing.IsExpired(0, time.Now()))
	}
	var missing *Listing
	assert.False(t, missing.IsExpired(0, time.Now()))
}
