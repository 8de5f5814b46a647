package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetOrCreateReferralCode(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	code, err := db.GetOrCreateReferralCode(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, code, 8)

	// second call returns the same code
	again, err := db.GetOrCreateReferralCode(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, code, again)

	// different users get different codes
	other, err := db.GetOrCreateReferralCode(ctx, "user-2")
	require.NoError(t, err)
	require.NotEqual(t, code, other)
}

func TestTrackReferral(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	code, err := db.GetOrCreateReferralCode(ctx, "referrer")
	require.NoError(t, err)

	require.NoError(t, db.TrackReferral(ctx, code))
	require.NoError(t, db.TrackReferral(ctx, code))

	pending, completed, err := db.CountReferrals(ctx, "referrer")
	require.NoError(t, err)
	require.Equal(t, 2, pending)
	require.Equal(t, 0, completed)

	require.ErrorIs(t, db.TrackReferral(ctx, "NOPE1234"), ErrCodeNotFound)
}

func TestCompleteReferral(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	code, err := db.GetOrCreateReferralCode(ctx, "referrer")
	require.NoError(t, err)
	require.NoError(t, db.TrackReferral(ctx, code))

	require.NoError(t, db.CompleteReferral(ctx, 1))

	pending, completed, err := db.CountReferrals(ctx, "referrer")
	require.NoError(t, err)
	require.Equal(t, 0, pending)
	require.Equal(t, 1, completed)
}

func TestSubscribers(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertSubscriber(ctx, Subscriber{
		Email:      "a@example.com",
		Name:       "Ada",
		IdeaAlerts: true,
	}))
	require.NoError(t, db.UpsertSubscriber(ctx, Subscriber{
		Email:      "b@example.com",
		IdeaAlerts: false,
	}))

	subs, err := db.ListAlertSubscribers(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Equal(t, "a@example.com", subs[0].Email)

	// each list honors its own flag
	require.NoError(t, db.UpsertSubscriber(ctx, Subscriber{
		Email:        "c@example.com",
		WeeklyDigest: true,
	}))
	weekly, err := db.ListWeeklyDigestSubscribers(ctx)
	require.NoError(t, err)
	require.Len(t, weekly, 1)
	require.Equal(t, "c@example.com", weekly[0].Email)

	// upsert flips preferences in place
	require.NoError(t, db.UpsertSubscriber(ctx, Subscriber{
		Email:      "a@example.com",
		Name:       "Ada",
		IdeaAlerts: false,
	}))
	subs, err = db.ListAlertSubscribers(ctx)
	require.NoError(t, err)
	require.Empty(t, subs)
}
