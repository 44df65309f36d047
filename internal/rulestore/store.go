// Package rulestore implements the Rule Store (spec §4.4): persistence,
// paging, and filtering of user alert rules with soft-delete semantics.
package rulestore

import (
	"context"

	"github.com/archway-network/alertrelay/internal/alertdomain"
)

const pageSize = 20

// Filter selects rules by any subset of id, user id, chain id, and event
// source class; a zero value matches everything. deleted_at IS NULL is
// always implied (spec §4.4).
type Filter struct {
	ID          *int32
	UserID      *string
	ChainID     *string
	AlertSource *alertdomain.SourceType
}

// CreateRequest is the caller-supplied subset of UserAlert fields a new rule
// is created from; ID, Status, and the timestamps are assigned by the store.
type CreateRequest struct {
	UserID  string
	ChainID string
	Name    string
	Message string
	Body    alertdomain.RuleBody
}

// Store is the Rule Store contract (spec §4.4). Page is nil for "return all",
// or a zero-based page index for 20-per-page paging.
type Store interface {
	Create(ctx context.Context, req CreateRequest, clientID string) (alertdomain.UserAlert, error)
	Get(ctx context.Context, filter Filter, page *int) ([]alertdomain.UserAlert, error)
	GetByID(ctx context.Context, id int32) (alertdomain.UserAlert, error)
	Update(ctx context.Context, id int32, name, message string, status alertdomain.Status) (alertdomain.UserAlert, error)
	Delete(ctx context.Context, id int32) error
}
