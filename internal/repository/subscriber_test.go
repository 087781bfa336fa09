package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/idxwatch/internal/repository"
	"github.com/jonesrussell/idxwatch/internal/testhelpers"
)

func TestSubscribeAndListActive(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	repo := repository.NewSubscriberRepository(db.DB(), testhelpers.NewTestLogger())
	ctx := context.Background()

	require.NoError(t, repo.Subscribe(ctx, 100, "alice"))
	require.NoError(t, repo.Subscribe(ctx, 200, "bob"))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, int64(100), active[0].UserID)
	assert.Equal(t, "alice", active[0].Username)
	assert.Equal(t, int64(200), active[1].UserID)
}

func TestSubscribeIsIdempotent(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	repo := repository.NewSubscriberRepository(db.DB(), testhelpers.NewTestLogger())
	ctx := context.Background()

	require.NoError(t, repo.Subscribe(ctx, 100, "alice"))
	require.NoError(t, repo.Subscribe(ctx, 100, "alice-renamed"))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "alice-renamed", active[0].Username)
}

func TestDeactivate(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	repo := repository.NewSubscriberRepository(db.DB(), testhelpers.NewTestLogger())
	ctx := context.Background()

	require.NoError(t, repo.Subscribe(ctx, 100, "alice"))
	require.NoError(t, repo.Deactivate(ctx, 100))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	// Row is kept; resubscribing reactivates it.
	isActive, err := repo.IsActive(ctx, 100)
	require.NoError(t, err)
	assert.False(t, isActive)

	require.NoError(t, repo.Subscribe(ctx, 100, "alice"))
	isActive, err = repo.IsActive(ctx, 100)
	require.NoError(t, err)
	assert.True(t, isActive)
}

func TestDeactivateUnknownUserIsNoop(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	repo := repository.NewSubscriberRepository(db.DB(), testhelpers.NewTestLogger())

	assert.NoError(t, repo.Deactivate(context.Background(), 999))
}

func TestIsActiveUnknownUser(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	repo := repository.NewSubscriberRepository(db.DB(), testhelpers.NewTestLogger())

	active, err := repo.IsActive(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestCountActive(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	repo := repository.NewSubscriberRepository(db.DB(), testhelpers.NewTestLogger())
	ctx := context.Background()

	require.NoError(t, repo.Subscribe(ctx, 100, "alice"))
	require.NoError(t, repo.Subscribe(ctx, 200, "bob"))
	require.NoError(t, repo.Deactivate(ctx, 200))

	count, err := repo.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
