// Package expiry force-closes listings whose deadlines passed without a
// resolution. Nothing here runs on its own; callers decide when to sweep.
package expiry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/ticket-escrow-backend/internal/bids"
	"github.com/angelmondragon/ticket-escrow-backend/internal/listings"
	"github.com/angelmondragon/ticket-escrow-backend/internal/settlement"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/logger"
)

// Closer runs the refund path for one listing. It returns nil when the
// listing was already terminal or not expired under its own lock.
type Closer interface {
	CloseUnresolved(ctx context.Context, listingID uint64) (*settlement.Resolution, error)
}

// SweepResult summarises one pass over the open listings.
type SweepResult struct {
	Closed  []uint64 `json:"closed"`
	Skipped int      `json:"skipped"`
	Failed  []uint64 `json:"failed"`
}

type SweeperParams struct {
	Listings listings.Repository
	Bids     bids.Repository
	Closer   Closer
	Logger   *logger.Logger
	Clock    func() time.Time
}

type Sweeper struct {
	listings listings.Repository
	bids     bids.Repository
	closer   Closer
	logg     *logger.Logger
	now      func() time.Time
}

func NewSweeper(params SweeperParams) (*Sweeper, error) {
	if params.Listings == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if params.Bids == nil {
		return nil, fmt.Errorf("bids repository required")
	}
	if params.Closer == nil {
		return nil, fmt.Errorf("closer required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &Sweeper{
		listings: params.Listings,
		bids:     params.Bids,
		closer:   params.Closer,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// SweepExpired closes every open listing that is expired at the time of the
// call. A failure on one listing does not stop the pass; all failures are
// returned together. Running sweeps concurrently is safe because the close
// re-checks status under the listing row lock.
func (s *Sweeper) SweepExpired(ctx context.Context) (SweepResult, error) {
	result := SweepResult{Closed: []uint64{}, Failed: []uint64{}}

	ids, err := s.listings.ListOpenIDs(ctx)
	if err != nil {
		return result, fmt.Errorf("list open listings: %w", err)
	}

	var errs error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, multierr.Append(errs, err)
		}
		closed, err := s.sweepOne(ctx, id)
		switch {
		case err != nil:
			result.Failed = append(result.Failed, id)
			errs = multierr.Append(errs, fmt.Errorf("listing %d: %w", id, err))
			s.logg.Error(s.logg.WithListingID(ctx, id), "expiry sweep failed", err)
		case closed:
			result.Closed = append(result.Closed, id)
		default:
			result.Skipped++
		}
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"closed":  len(result.Closed),
		"skipped": result.Skipped,
		"failed":  len(result.Failed),
	})
	s.logg.Info(logCtx, "expiry sweep finished")
	return result, errs
}

func (s *Sweeper) sweepOne(ctx context.Context, id uint64) (bool, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if listing == nil {
		return false, nil
	}
	active, err := s.bids.CountActiveByListing(ctx, id)
	if err != nil {
		return false, err
	}
	if !listing.IsExpired(active, s.now().UTC()) {
		return false, nil
	}
	resolution, err := s.closer.CloseUnresolved(ctx, id)
	if err != nil {
		return false, err
	}
	return resolution != nil, nil
}
