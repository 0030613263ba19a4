package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/linapoint/resortagents/internal/domain"
	"github.com/linapoint/resortagents/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsAppRepo_SessionContextRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteWhatsAppRepo(db)
	ctx := context.Background()

	_, err := repo.GetActiveSession(ctx, "+5016000001")
	require.ErrorIs(t, err, ErrNotFound)

	s := &domain.WhatsAppSession{PhoneNumber: "+5016000001", IsActive: true}
	require.NoError(t, repo.CreateSession(ctx, s))

	now := time.Now().UTC()
	s.LastMessage = "book a room"
	s.LastMessageAt = &now
	s.Context = domain.ConversationContext{
		LastIntent: "booking",
		LastAction: "BOOK_ROOM",
		PendingAction: &domain.PendingAction{
			Type: domain.PendingBookFlow,
			Data: map[string]any{"guests": float64(2)},
		},
	}
	require.NoError(t, repo.UpdateSession(ctx, s))

	got, err := repo.GetActiveSession(ctx, "+5016000001")
	require.NoError(t, err)
	assert.Equal(t, "booking", got.Context.LastIntent)
	require.NotNil(t, got.Context.PendingAction)
	assert.Equal(t, domain.PendingBookFlow, got.Context.PendingAction.Type)
	assert.Equal(t, float64(2), got.Context.PendingAction.Data["guests"])
	require.NotNil(t, got.LastMessageAt)
	assert.WithinDuration(t, now, *got.LastMessageAt, time.Millisecond)
}

func TestWhatsAppRepo_ListRecentMessagesChronological(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteWhatsAppRepo(db)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := range 7 {
		require.NoError(t, repo.CreateMessage(ctx, &domain.WhatsAppMessage{
			SessionID:   "s1",
			PhoneNumber: "+5016000001",
			Direction:   domain.DirectionInbound,
			Body:        fmt.Sprintf("msg %d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := repo.ListRecentMessages(ctx, "s1", 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "msg 2", got[0].Body)
	assert.Equal(t, "msg 6", got[4].Body)

	all, err := repo.ListMessagesByPhone(ctx, "+5016000001")
	require.NoError(t, err)
	assert.Len(t, all, 7)
}
