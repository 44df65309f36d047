package notificationstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/archway-network/alertrelay/internal/alertdomain"
	"github.com/archway-network/alertrelay/internal/notificationstore"
)

// TestStatisticsWindow reproduces spec §8 scenario S6: 3 notifications in
// the last 24h with (total_response_time, num_responses) = (1.0,1),(2.0,1),
// (3.0,2), and 5 older ones, yields total_alerts=8, total_alerts_today=3,
// avg_response_time=1.5.
func TestStatisticsWindow(t *testing.T) {
	now := int64(10 * time.Hour)
	ctx := context.Background()

	// MemStore's clock is fixed per instance, so a clockSequence simulates
	// records created at two different times within one store: 5 old
	// notifications, then the 3 recent ones the scenario asserts on.
	store := notificationstore.NewMemStore(clockSequence(now-int64(25*time.Hour), now))
	for i := 0; i < 5; i++ {
		_, err := store.Create(ctx, notificationstore.CreateRequest{
			Payload: alertdomain.ArchwayBroadcastNotification{},
			RuleID:  1,
		})
		require.NoError(t, err)
	}

	recent := []struct {
		totalResponseTime float64
		numResponses      int32
	}{
		{1.0, 1}, {2.0, 1}, {3.0, 2},
	}
	for _, r := range recent {
		_, err := store.Create(ctx, notificationstore.CreateRequest{
			Payload:           alertdomain.ArchwayBroadcastNotification{},
			RuleID:            1,
			TotalResponseTime: r.totalResponseTime,
			NumResponses:      r.numResponses,
		})
		require.NoError(t, err)
	}

	stats, err := store.Statistics(ctx, []int32{1})
	require.NoError(t, err)
	require.Equal(t, int64(8), stats.TotalAlerts)
	require.Equal(t, int64(3), stats.TotalAlertsToday)
	require.InDelta(t, 1.5, stats.AvgResponseTime, 0.0001)
}

// clockSequence returns a clock that yields "old" for the first five calls
// and "recent" thereafter, letting a single MemStore instance simulate
// records created at two different times.
func clockSequence(old, recent int64) func() int64 {
	calls := 0
	return func() int64 {
		calls++
		if calls <= 5 {
			return old
		}
		return recent
	}
}

func TestStatisticsEmptyRuleSetIsZero(t *testing.T) {
	store := notificationstore.NewMemStore(func() int64 { return 0 })
	stats, err := store.Statistics(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, stats.TotalAlerts)
	require.Zero(t, stats.AvgResponseTime)
}

func TestStatisticsZeroResponsesAvoidsDivideByZero(t *testing.T) {
	store := notificationstore.NewMemStore(func() int64 { return 0 })
	ctx := context.Background()

	_, err := store.Create(ctx, notificationstore.CreateRequest{
		Payload: alertdomain.ArchwayBroadcastNotification{},
		RuleID:  1,
	})
	require.NoError(t, err)

	stats, err := store.Statistics(ctx, []int32{1})
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.TotalAlerts)
	require.Zero(t, stats.AvgResponseTime)
}

func TestGetByRuleIDExcludesOtherRules(t *testing.T) {
	store := notificationstore.NewMemStore(func() int64 { return 0 })
	ctx := context.Background()

	_, err := store.Create(ctx, notificationstore.CreateRequest{Payload: alertdomain.ArchwayBroadcastNotification{}, RuleID: 1})
	require.NoError(t, err)
	_, err = store.Create(ctx, notificationstore.CreateRequest{Payload: alertdomain.ArchwayBroadcastNotification{}, RuleID: 2})
	require.NoError(t, err)

	notifications, err := store.GetByRuleID(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	require.Equal(t, int32(1), notifications[0].RuleID)
}

// TestGetScopesToUserID covers spec §4.5's required filter.user_id: a
// caller never sees another user's notifications even when querying with an
// empty filter otherwise.
func TestGetScopesToUserID(t *testing.T) {
	store := notificationstore.NewMemStore(func() int64 { return 0 })
	ctx := context.Background()

	_, err := store.Create(ctx, notificationstore.CreateRequest{Payload: alertdomain.ArchwayBroadcastNotification{}, RuleID: 1, UserID: "alice"})
	require.NoError(t, err)
	_, err = store.Create(ctx, notificationstore.CreateRequest{Payload: alertdomain.ArchwayBroadcastNotification{}, RuleID: 2, UserID: "bob"})
	require.NoError(t, err)

	notifications, err := store.Get(ctx, notificationstore.Filter{UserID: "alice"}, nil)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	require.Equal(t, "alice", notifications[0].UserID)
}

// TestGetFiltersByIDAlertIDAndCreatedAtRange exercises the optional
// narrowing fields spec §4.5 names alongside the required user_id.
func TestGetFiltersByIDAlertIDAndCreatedAtRange(t *testing.T) {
	ctx := context.Background()
	clock := int64(0)
	store := notificationstore.NewMemStore(func() int64 {
		clock += int64(time.Hour)
		return clock
	})

	first, err := store.Create(ctx, notificationstore.CreateRequest{Payload: alertdomain.ArchwayBroadcastNotification{}, RuleID: 1, UserID: "alice"})
	require.NoError(t, err)
	second, err := store.Create(ctx, notificationstore.CreateRequest{Payload: alertdomain.ArchwayBroadcastNotification{}, RuleID: 2, UserID: "alice"})
	require.NoError(t, err)

	byID, err := store.Get(ctx, notificationstore.Filter{UserID: "alice", ID: &second.ID}, nil)
	require.NoError(t, err)
	require.Len(t, byID, 1)
	require.Equal(t, second.ID, byID[0].ID)

	byAlertID, err := store.Get(ctx, notificationstore.Filter{UserID: "alice", AlertID: &first.RuleID}, nil)
	require.NoError(t, err)
	require.Len(t, byAlertID, 1)
	require.Equal(t, first.ID, byAlertID[0].ID)

	after := first.CreatedAtNanos + 1
	byRange, err := store.Get(ctx, notificationstore.Filter{UserID: "alice", CreatedAfter: &after}, nil)
	require.NoError(t, err)
	require.Len(t, byRange, 1)
	require.Equal(t, second.ID, byRange[0].ID)
}

func TestTelegramChatIDRoundTrip(t *testing.T) {
	store := notificationstore.NewMemStore(func() int64 { return 0 })
	ctx := context.Background()

	_, err := store.GetTelegramChatID(ctx, "unknown")
	require.Error(t, err)

	require.NoError(t, store.SetTelegramChatID(ctx, "alice", 42))
	chatID, err := store.GetTelegramChatID(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(42), chatID)

	require.NoError(t, store.SetTelegramChatID(ctx, "alice", 99))
	chatID, err = store.GetTelegramChatID(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(99), chatID)
}
