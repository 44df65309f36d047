package rulestore

import (
	"context"
	"sort"
	"sync"

	"github.com/archway-network/alertrelay/internal/alertdomain"
	"github.com/archway-network/alertrelay/internal/alerterrors"
)

// MemStore is an in-memory Store, used in tests and as a reference
// implementation of the paging/filter/soft-delete contract that the
// Postgres-backed Store must also satisfy.
type MemStore struct {
	mu     sync.RWMutex
	nextID int32
	rules  map[int32]alertdomain.UserAlert
	nowFn  func() int64
}

// NewMemStore builds an empty MemStore. nowFn supplies the current time as
// nanoseconds since epoch; tests can substitute a fixed clock.
func NewMemStore(nowFn func() int64) *MemStore {
	return &MemStore{
		rules: make(map[int32]alertdomain.UserAlert),
		nowFn: nowFn,
	}
}

func (s *MemStore) Create(_ context.Context, req CreateRequest, clientID string) (alertdomain.UserAlert, error) {
	if req.Body == nil {
		return alertdomain.UserAlert{}, alerterrors.ErrInvalidRule.Wrap("rule body is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := s.nowFn()
	rule := alertdomain.UserAlert{
		ID:             s.nextID,
		UserID:         req.UserID,
		ClientID:       clientID,
		ChainID:        req.ChainID,
		Status:         alertdomain.StatusEnabled,
		AlertSource:    alertdomain.ClassifySource(req.Body),
		Name:           req.Name,
		Message:        req.Message,
		Body:           req.Body,
		CreatedAtNanos: now,
		UpdatedAtNanos: now,
	}
	s.rules[rule.ID] = rule
	return rule, nil
}

func (s *MemStore) Get(_ context.Context, filter Filter, page *int) ([]alertdomain.UserAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []alertdomain.UserAlert
	for _, rule := range s.rules {
		if rule.Deleted() {
			continue
		}
		if !filterMatches(filter, rule) {
			continue
		}
		matched = append(matched, rule)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	if page == nil {
		return matched, nil
	}

	start := *page * pageSize
	if start >= len(matched) {
		return []alertdomain.UserAlert{}, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (s *MemStore) GetByID(_ context.Context, id int32) (alertdomain.UserAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rule, ok := s.rules[id]
	if !ok || rule.Deleted() {
		return alertdomain.UserAlert{}, alerterrors.ErrRuleNotFound.Wrapf("rule %d", id)
	}
	return rule, nil
}

func (s *MemStore) Update(_ context.Context, id int32, name, message string, status alertdomain.Status) (alertdomain.UserAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule, ok := s.rules[id]
	if !ok || rule.Deleted() {
		return alertdomain.UserAlert{}, alerterrors.ErrRuleNotFound.Wrapf("rule %d", id)
	}

	rule.Name = name
	rule.Message = message
	rule.Status = status
	rule.UpdatedAtNanos = s.nowFn()
	s.rules[id] = rule
	return rule, nil
}

func (s *MemStore) Delete(_ context.Context, id int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule, ok := s.rules[id]
	if !ok || rule.Deleted() {
		return alerterrors.ErrRuleNotFound.Wrapf("rule %d", id)
	}

	now := s.nowFn()
	rule.DeletedAtNanos = &now
	rule.UpdatedAtNanos = now
	s.rules[id] = rule
	return nil
}

func filterMatches(f Filter, rule alertdomain.UserAlert) bool {
	if f.ID != nil && *f.ID != rule.ID {
		return false
	}
	if f.UserID != nil && *f.UserID != rule.UserID {
		return false
	}
	if f.ChainID != nil && *f.ChainID != rule.ChainID {
		return false
	}
	if f.AlertSource != nil && *f.AlertSource != rule.AlertSource {
		return false
	}
	return true
}
