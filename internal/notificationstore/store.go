// Package notificationstore implements the Notification Store (spec §4.5):
// persistence of dispatched notifications, range queries, and aggregate
// statistics.
package notificationstore

import (
	"context"

	"github.com/archway-network/alertrelay/internal/alertdomain"
)

// CreateRequest is the caller-supplied subset of a Notification row; ID and
// CreatedAtNanos are assigned by the store (spec §3, "Notification"). UserID
// is the owning rule's user id, denormalized onto the row at write time so
// Get can restrict to a caller's own notifications without a runtime join
// back into the Rule Store.
type CreateRequest struct {
	Payload           alertdomain.NotificationPayload
	RuleID            int32
	AlertSourceID     string
	UserID            string
	TotalResponseTime float64
	NumResponses      int32
}

// Notification is a persisted dispatch record (spec §3).
type Notification struct {
	ID                int64
	Payload           alertdomain.NotificationPayload
	RuleID            int32
	AlertSourceID     string
	UserID            string
	CreatedAtNanos    int64
	TotalResponseTime float64
	NumResponses      int32
}

// Filter selects notifications for Get (spec §4.5 get()). UserID is
// required: every Get call is scoped to one caller's own notifications,
// joining back to the rule that owns each row. ID, AlertID (the owning
// rule id), and the CreatedAt range are optional narrowing filters.
type Filter struct {
	UserID        string
	ID            *int64
	AlertID       *int32
	CreatedAfter  *int64
	CreatedBefore *int64
}

// Statistics aggregates notification counts and average response time over
// a window (spec §8 scenario S6). SubscriberCount and CreationDate are never
// set by Statistics itself (the store has no notion of a rule's subscriber
// count or creation date) — they're left for the caller to fill in from the
// Rule Store, mirroring the original gateway-service get_statistics response
// shape that enriched the same aggregate with rule-owned fields.
type Statistics struct {
	TotalAlerts      int64
	TotalAlertsToday int64
	AvgResponseTime  float64
	SubscriberCount  int64
	CreationDate     *int64
}

// Store is the Notification Store contract (spec §4.5). Get and Statistics
// take different ownership inputs on purpose: Get's filter.user_id joins
// back to the rule table itself (the owning rule's user_id is denormalized
// onto each row at Create time, see CreateRequest.UserID), while Statistics
// takes a caller-resolved rule id set, because aggregating "this user's
// alerts" and aggregating "these specific rules" are different entry points
// into the same table (spec §3, "Ownership"; spec §8 scenario S6).
//
// GetTelegramChatID/SetTelegramChatID are a second, independent
// notification-routing lookup the store owns alongside webhook dispatch:
// a side table mapping a Telegram username to the chat id notifications
// should be pushed to. Nothing in the webhook dispatch path reads it; it's
// carried because nothing in spec §1's Non-goals excludes it.
type Store interface {
	Create(ctx context.Context, req CreateRequest) (Notification, error)
	Get(ctx context.Context, filter Filter, page *int) ([]Notification, error)
	GetByRuleID(ctx context.Context, ruleID int32, page *int) ([]Notification, error)
	Statistics(ctx context.Context, ruleIDs []int32) (Statistics, error)
	Delete(ctx context.Context, id int64) error

	GetTelegramChatID(ctx context.Context, username string) (int64, error)
	SetTelegramChatID(ctx context.Context, username string, chatID int64) error
}
