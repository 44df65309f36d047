package notificationstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/archway-network/alertrelay/internal/alerterrors"
)

const pageSize = 20

const dayNanos = int64(24 * time.Hour)

// MemStore is an in-memory Store, used in tests and as a reference
// implementation for the paging and statistics contract.
type MemStore struct {
	mu             sync.RWMutex
	nextID         int64
	notifications  map[int64]Notification
	deleted        map[int64]bool
	telegramChatID map[string]int64
	nowFn          func() int64
}

// NewMemStore builds an empty MemStore. nowFn supplies the current time as
// nanoseconds since epoch.
func NewMemStore(nowFn func() int64) *MemStore {
	return &MemStore{
		notifications:  make(map[int64]Notification),
		deleted:        make(map[int64]bool),
		telegramChatID: make(map[string]int64),
		nowFn:          nowFn,
	}
}

func (s *MemStore) Create(_ context.Context, req CreateRequest) (Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	n := Notification{
		ID:                s.nextID,
		Payload:           req.Payload,
		RuleID:            req.RuleID,
		AlertSourceID:     req.AlertSourceID,
		UserID:            req.UserID,
		CreatedAtNanos:    s.nowFn(),
		TotalResponseTime: req.TotalResponseTime,
		NumResponses:      req.NumResponses,
	}
	s.notifications[n.ID] = n
	return n, nil
}

// Get implements spec §4.5's get(filter, page?) against the in-memory table,
// restricting to filter.UserID and then narrowing by any of ID, AlertID, or
// a CreatedAt range.
func (s *MemStore) Get(_ context.Context, filter Filter, page *int) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Notification
	for _, n := range s.notifications {
		if s.deleted[n.ID] || n.UserID != filter.UserID {
			continue
		}
		if filter.ID != nil && n.ID != *filter.ID {
			continue
		}
		if filter.AlertID != nil && n.RuleID != *filter.AlertID {
			continue
		}
		if filter.CreatedAfter != nil && n.CreatedAtNanos < *filter.CreatedAfter {
			continue
		}
		if filter.CreatedBefore != nil && n.CreatedAtNanos > *filter.CreatedBefore {
			continue
		}
		matched = append(matched, n)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	if page == nil {
		return matched, nil
	}
	start := *page * pageSize
	if start >= len(matched) {
		return []Notification{}, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (s *MemStore) GetByRuleID(_ context.Context, ruleID int32, page *int) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Notification
	for _, n := range s.notifications {
		if s.deleted[n.ID] || n.RuleID != ruleID {
			continue
		}
		matched = append(matched, n)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	if page == nil {
		return matched, nil
	}
	start := *page * pageSize
	if start >= len(matched) {
		return []Notification{}, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

// Statistics computes total_alerts, total_alerts_today, and avg_response_time
// over the given rule ids (spec §8 scenario S6). An empty rule set or zero
// total response count yields all-zero statistics rather than an error or a
// division panic (spec §9 open question: avg_response_time on a zero
// divisor is defined to be 0, not NaN or an error).
func (s *MemStore) Statistics(_ context.Context, ruleIDs []int32) (Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make(map[int32]bool, len(ruleIDs))
	for _, id := range ruleIDs {
		owned[id] = true
	}

	now := s.nowFn()
	var stats Statistics
	var totalResponseTime float64
	var totalResponses int64

	for _, n := range s.notifications {
		if s.deleted[n.ID] || !owned[n.RuleID] {
			continue
		}
		stats.TotalAlerts++
		if now-n.CreatedAtNanos < dayNanos {
			stats.TotalAlertsToday++
			totalResponseTime += n.TotalResponseTime
			totalResponses += int64(n.NumResponses)
		}
	}

	if totalResponses > 0 {
		stats.AvgResponseTime = totalResponseTime / float64(totalResponses)
	}
	return stats, nil
}

func (s *MemStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notifications[id]; !ok || s.deleted[id] {
		return alerterrors.ErrNotificationNotFound.Wrapf("notification %d", id)
	}
	s.deleted[id] = true
	return nil
}

func (s *MemStore) GetTelegramChatID(_ context.Context, username string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chatID, ok := s.telegramChatID[username]
	if !ok {
		return 0, alerterrors.ErrTelegramChatIDNotFound.Wrapf("username %s", username)
	}
	return chatID, nil
}

func (s *MemStore) SetTelegramChatID(_ context.Context, username string, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.telegramChatID[username] = chatID
	return nil
}
