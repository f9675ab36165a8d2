package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/ticket-escrow-backend/pkg/db"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/db/dbtest"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/db/models"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ticket-escrow-backend/pkg/errors"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/logger"
	"github.com/angelmondragon/ticket-escrow-backend/pkg/outbox"
)

const (
	ownerAddr    = "0x1000000000000000000000000000000000000001"
	custodyAddr  = "0x2000000000000000000000000000000000000002"
	verifierAddr = "0x5000000000000000000000000000000000000005"
	strangerAddr = "0x6000000000000000000000000000000000000006"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(client.DB()),
		DB:     client,
		Outbox: outbox.NewService(outbox.NewRepository(client.DB()), nil),
		Logger: logger.Nop(),
	})
	require.NoError(t, err)
	return svc, client
}

func initialized(t *testing.T) (Service, *db.Client) {
	t.Helper()
	svc, client := newTestService(t)
	_, err := svc.Initialize(context.Background(), InitializeInput{Owner: ownerAddr, CustodyAccount: custodyAddr})
	require.NoError(t, err)
	return svc, client
}

func TestInitializeFixesOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	settings, err := svc.Initialize(ctx, InitializeInput{Owner: ownerAddr, CustodyAccount: custodyAddr})
	require.NoError(t, err)
	assert.Equal(t, ownerAddr, settings.Owner)
	assert.Nil(t, settings.Verifier)

	again, err := svc.Initialize(ctx, InitializeInput{Owner: ownerAddr, CustodyAccount: custodyAddr, Verifier: verifierAddr})
	require.NoError(t, err)
	assert.Nil(t, again.Verifier, "seed verifier only applies on first boot")

	_, err = svc.Initialize(ctx, InitializeInput{Owner: strangerAddr, CustodyAccount: custodyAddr})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestInitializeSeedsVerifier(t *testing.T) {
	svc, _ := newTestService(t)
	settings, err := svc.Initialize(context.Background(), InitializeInput{Owner: ownerAddr, CustodyAccount: custodyAddr, Verifier: verifierAddr})
	require.NoError(t, err)
	require.NotNil(t, settings.Verifier)
	assert.Equal(t, verifierAddr, *settings.Verifier)
}

func TestInitializeRejectsMalformedAccounts(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Initialize(context.Background(), InitializeInput{Owner: "owner", CustodyAccount: custodyAddr})
	assert.Error(t, err)
}

func TestSetVerifierOwnerOnly(t *testing.T) {
	svc, client := initialized(t)
	ctx := context.Background()

	_, err := svc.SetVerifier(ctx, strangerAddr, verifierAddr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrNotOwner))

	updated, err := svc.SetVerifier(ctx, ownerAddr, verifierAddr)
	require.NoError(t, err)
	require.NotNil(t, updated.Verifier)
	assert.Equal(t, verifierAddr, *updated.Verifier)

	var events []models.OutboxEvent
	require.NoError(t, client.DB().Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventVerifierChanged, events[0].EventType)
}

func TestSetVerifierReplacesPrevious(t *testing.T) {
	svc, _ := initialized(t)
	ctx := context.Background()

	_, err := svc.SetVerifier(ctx, ownerAddr, verifierAddr)
	require.NoError(t, err)
	_, err = svc.SetVerifier(ctx, ownerAddr, strangerAddr)
	require.NoError(t, err)

	assert.True(t, errors.Is(svc.RequireVerifier(ctx, verifierAddr), pkgerrors.ErrNotVerifier))
	assert.NoError(t, svc.RequireVerifier(ctx, strangerAddr))
}

func TestRequireVerifierWithoutVerifier(t *testing.T) {
	svc, _ := initialized(t)
	err := svc.RequireVerifier(context.Background(), ownerAddr)
	assert.True(t, errors.Is(err, pkgerrors.ErrNotVerifier))
}

func TestRequireOwner(t *testing.T) {
	svc, _ := initialized(t)
	ctx := context.Background()
	assert.NoError(t, svc.RequireOwner(ctx, ownerAddr))
	assert.True(t, errors.Is(svc.RequireOwner(ctx, strangerAddr), pkgerrors.ErrNotOwner))
	assert.True(t, errors.Is(svc.RequireOwner(ctx, ""), pkgerrors.ErrNotOwner))
}

func TestSettingsBeforeInitialize(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Settings(context.Background())
	assert.Error(t, err)
}
