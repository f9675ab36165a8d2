package expiry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/ticket-escrow-backend/internal/bids"
	"github.com/angelmondragon/ticket-escrow-backend/internal/ledger"
	"github.com/angelmondragon/ticket-escrow-backend/internal/listings"
	"github.com/angelmondragon/ticket-escrow-backend/internal/settlement"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/db/dbtest"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ticket-escrow-backend/pkg/errors"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/logger"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/outbox"
)

const (
	ownerAddr   = "0x1000000000000000000000000000000000000001"
	custodyAddr = "0x2000000000000000000000000000000000000002"
	sellerAddr  = "0x3000000000000000000000000000000000000003"
	aliceAddr   = "0x4000000000000000000000000000000000000004"
	bobAddr     = "0x5000000000000000000000000000000000000005"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type allowAll struct{}

func (allowAll) RequireOwner(context.Context, string) error    { return nil }
func (allowAll) RequireVerifier(context.Context, string) error { return nil }

type harness struct {
	sweeper    *Sweeper
	ledger     ledger.Service
	listings   listings.Service
	bids       bids.Service
	settlement settlement.Service
	listRepo   listings.Repository
	bidRepo    bids.Repository
	clock      *time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	client := dbtest.Open(t)
	clock := baseTime
	now := func() time.Time { return clock }
	emitter := outbox.NewService(outbox.NewRepository(client.DB()), nil)

	ledgerSvc, err := ledger.NewService(ledger.ServiceParams{
		Repo: ledger.NewRepository(client.DB()), DB: client, Owners: allowAll{}, CustodyAccount: custodyAddr,
	})
	require.NoError(t, err)
	listRepo := listings.NewRepository(client.DB())
	bidRepo := bids.NewRepository(client.DB())

	listingSvc, err := listings.NewService(listings.ServiceParams{Repo: listRepo, DB: client, Outbox: emitter, Logger: logger.Nop(), Clock: now})
	require.NoError(t, err)
	bidSvc, err := bids.NewService(bids.ServiceParams{
		Repo: bidRepo, Listings: listRepo, Escrow: ledgerSvc, DB: client, Outbox: emitter, Logger: logger.Nop(), Clock: now,
	})
	require.NoError(t, err)
	settlementSvc, err := settlement.NewService(settlement.ServiceParams{
		Listings: listRepo, Bids: bidRepo, Custody: ledgerSvc, Verifiers: allowAll{},
		DB: client, Outbox: emitter, Logger: logger.Nop(), Clock: now,
	})
	require.NoError(t, err)

	sweeper, err := NewSweeper(SweeperParams{Listings: listRepo, Bids: bidRepo, Closer: settlementSvc, Logger: logger.Nop(), Clock: now})
	require.NoError(t, err)

	return &harness{
		sweeper: sweeper, ledger: ledgerSvc, listings: listingSvc, bids: bidSvc, settlement: settlementSvc,
		listRepo: listRepo, bidRepo: bidRepo, clock: &clock,
	}
}

func (h *harness) listing(t *testing.T, bidWindow, resolveWindow time.Duration) uint64 {
	t.Helper()
	listing, err := h.listings.Create(context.Background(), listings.CreateListingInput{
		Seller:             sellerAddr,
		EventName:          "Opening Night",
		EventDetails:       "Balcony B12",
		EventDate:          "2026-05-01",
		Location:           "Chicago, IL",
		MinimumBid:         10,
		BidDeadline:        baseTime.Add(bidWindow),
		ResolutionDeadline: baseTime.Add(resolveWindow),
	})
	require.NoError(t, err)
	return listing.ID
}

func (h *harness) bid(t *testing.T, listingID uint64, bidder string, amount int64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.ledger.Mint(ctx, ownerAddr, bidder, amount))
	require.NoError(t, h.ledger.Approve(ctx, bidder, custodyAddr, amount))
	_, err := h.bids.PlaceBid(ctx, bids.PlaceBidInput{ListingID: listingID, Bidder: bidder, Amount: amount})
	require.NoError(t, err)
}

func (h *harness) status(t *testing.T, id uint64) enums.ListingStatus {
	t.Helper()
	listing, err := h.listings.Get(context.Background(), id)
	require.NoError(t, err)
	return listing.Status
}

func TestSweepExpiredClosesOnlyExpiredListings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	pastResolution := h.listing(t, time.Hour, 2*time.Hour)
	h.bid(t, pastResolution, aliceAddr, 40)
	h.bid(t, pastResolution, bobAddr, 55)

	noBids := h.listing(t, time.Hour, 10*time.Hour)

	awaitingVerifier := h.listing(t, time.Hour, 10*time.Hour)
	h.bid(t, awaitingVerifier, aliceAddr, 25)

	stillBidding := h.listing(t, 5*time.Hour, 10*time.Hour)

	*h.clock = baseTime.Add(3 * time.Hour)
	result, err := h.sweeper.SweepExpired(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{pastResolution, noBids}, result.Closed)
	assert.Equal(t, 2, result.Skipped)
	assert.Empty(t, result.Failed)

	assert.Equal(t, enums.ListingStatusClosed, h.status(t, pastResolution))
	assert.Equal(t, enums.ListingStatusClosed, h.status(t, noBids))
	assert.Equal(t, enums.ListingStatusOpen, h.status(t, awaitingVerifier))
	assert.Equal(t, enums.ListingStatusOpen, h.status(t, stillBidding))

	alice, err := h.ledger.Balance(ctx, aliceAddr)
	require.NoError(t, err)
	assert.EqualValues(t, 40, alice)
	bob, err := h.ledger.Balance(ctx, bobAddr)
	require.NoError(t, err)
	assert.EqualValues(t, 55, bob)
	seller, err := h.ledger.Balance(ctx, sellerAddr)
	require.NoError(t, err)
	assert.Zero(t, seller)
}

func TestSweepExpiredIsRepeatable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.listing(t, time.Hour, 2*time.Hour)
	h.bid(t, id, aliceAddr, 30)
	*h.clock = baseTime.Add(3 * time.Hour)

	first, err := h.sweeper.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint64{id}, first.Closed)

	second, err := h.sweeper.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Empty(t, second.Closed)
	assert.Zero(t, second.Skipped)

	balance, err := h.ledger.Balance(ctx, aliceAddr)
	require.NoError(t, err)
	assert.EqualValues(t, 30, balance, "refund must not be paid twice")
}

func TestConcurrentSweepsCloseOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.listing(t, time.Hour, 2*time.Hour)
	h.bid(t, id, aliceAddr, 40)
	h.bid(t, id, bobAddr, 55)
	*h.clock = baseTime.Add(3 * time.Hour)

	const sweeps = 8
	results := make([]SweepResult, sweeps)
	errs := make([]error, sweeps)
	var wg sync.WaitGroup
	for i := 0; i < sweeps; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = h.sweeper.SweepExpired(ctx)
		}(i)
	}
	wg.Wait()

	closed := 0
	for i := range results {
		require.NoError(t, errs[i])
		assert.Empty(t, results[i].Failed)
		closed += len(results[i].Closed)
	}
	assert.Equal(t, 1, closed)
	assert.Equal(t, enums.ListingStatusClosed, h.status(t, id))

	alice, err := h.ledger.Balance(ctx, aliceAddr)
	require.NoError(t, err)
	assert.EqualValues(t, 40, alice)
	bob, err := h.ledger.Balance(ctx, bobAddr)
	require.NoError(t, err)
	assert.EqualValues(t, 55, bob)

	held, err := h.settlement.CustodyForListing(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, held)
}

func TestSweepExpiredNothingToDo(t *testing.T) {
	h := newHarness(t)
	result, err := h.sweeper.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Closed)
	assert.Empty(t, result.Failed)
	assert.Zero(t, result.Skipped)
}

type failingCloser struct {
	inner  Closer
	failID uint64
}

func (f failingCloser) CloseUnresolved(ctx context.Context, listingID uint64) (*settlement.Resolution, error) {
	if listingID == f.failID {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "ledger unavailable")
	}
	return f.inner.CloseUnresolved(ctx, listingID)
}

func TestSweepExpiredContinuesPastFailures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	broken := h.listing(t, time.Hour, 2*time.Hour)
	healthy := h.listing(t, time.Hour, 2*time.Hour)
	*h.clock = baseTime.Add(3 * time.Hour)

	sweeper, err := NewSweeper(SweeperParams{
		Listings: h.listRepo,
		Bids:     h.bidRepo,
		Closer:   failingCloser{inner: h.settlement, failID: broken},
		Logger:   logger.Nop(),
		Clock:    func() time.Time { return *h.clock },
	})
	require.NoError(t, err)

	result, err := sweeper.SweepExpired(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger unavailable")
	assert.Equal(t, []uint64{broken}, result.Failed)
	assert.Equal(t, []uint64{healthy}, result.Closed)
	assert.Equal(t, enums.ListingStatusOpen, h.status(t, broken))
}

func TestSweepExpiredStopsOnCancelledContext(t *testing.T) {
	h := newHarness(t)
	h.listing(t, time.Hour, 2*time.Hour)
	*h.clock = baseTime.Add(3 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.sweeper.SweepExpired(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewSweeperValidatesParams(t *testing.T) {
	_, err := NewSweeper(SweeperParams{})
	assert.Error(t, err)
}
