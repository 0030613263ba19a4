package repository

import (
	"context"
	"testing"
	"time"

	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationRepo_AddOnsRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteReservationRepo(db)
	ctx := context.Background()

	withMagic := testutil.NewTestReservation("u1")
	empty := testutil.NewTestReservation("u1", testutil.WithAddOns())
	legacy := testutil.NewTestReservation("u1", testutil.WithoutAddOns())
	for _, r := range []*domain.Reservation{withMagic, empty, legacy} {
		require.NoError(t, repo.Create(ctx, r))
	}

	got, err := repo.GetByID(ctx, withMagic.ID)
	require.NoError(t, err)
	assert.True(t, got.AllowsMagic())

	got, err = repo.GetByID(ctx, empty.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.AddOns)
	assert.False(t, got.AllowsMagic())

	got, err = repo.GetByID(ctx, legacy.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AddOns)
	assert.True(t, got.AllowsMagic())
}

func TestReservationRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, err := NewSQLiteReservationRepo(db).GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReservationRepo_ListCheckInBetween(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteReservationRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	soon := testutil.NewTestReservation("u1", testutil.WithCheckIn(now.Add(72*time.Hour), 2))
	later := testutil.NewTestReservation("u1", testutil.WithCheckIn(now.AddDate(0, 0, 30), 2))
	pending := testutil.NewTestReservation("u2", testutil.WithCheckIn(now.Add(24*time.Hour), 2),
		testutil.WithReservationStatus(domain.ReservationPending))
	for _, r := range []*domain.Reservation{soon, later, pending} {
		require.NoError(t, repo.Create(ctx, r))
	}

	got, err := repo.ListCheckInBetween(ctx, domain.ReservationConfirmed, now, now.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, soon.ID, got[0].ID)
	assert.WithinDuration(t, soon.CheckIn, got[0].CheckIn, time.Millisecond)
}
