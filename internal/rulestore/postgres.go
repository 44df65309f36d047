package rulestore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/archway-network/alertrelay/internal/alertdomain"
	"github.com/archway-network/alertrelay/internal/alerterrors"
)

// PostgresStore persists rules to the `user_alert` table (spec §6,
// "Persisted schema"). The pool is shared by value, the same way the
// teacher's server wiring shares one *sql.DB handle across request
// goroutines: database/sql's pool is already safe for concurrent use, so no
// extra locking is layered on top (spec §5, "database connection pool is
// shared by value").
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an already-opened connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, req CreateRequest, clientID string) (alertdomain.UserAlert, error) {
	encoded, err := alertdomain.EncodeRuleBody(req.Body)
	if err != nil {
		return alertdomain.UserAlert{}, alerterrors.ErrInvalidRule.Wrapf("encode rule body: %s", err)
	}

	source := alertdomain.ClassifySource(req.Body)

	const query = `
		INSERT INTO user_alert (user_id, client_id, chain_id, status, alert_source, name, message, alert, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, (extract(epoch from now()) * 1e9)::bigint, (extract(epoch from now()) * 1e9)::bigint)
		RETURNING id, created_at, updated_at`

	var rule alertdomain.UserAlert
	row := s.db.QueryRowContext(ctx, query,
		req.UserID, clientID, req.ChainID, alertdomain.StatusEnabled, source, req.Name, req.Message, encoded,
	)
	if err := row.Scan(&rule.ID, &rule.CreatedAtNanos, &rule.UpdatedAtNanos); err != nil {
		return alertdomain.UserAlert{}, alerterrors.ErrRuleStoreFailed.Wrapf("insert rule: %s", err)
	}

	rule.UserID = req.UserID
	rule.ClientID = clientID
	rule.ChainID = req.ChainID
	rule.Status = alertdomain.StatusEnabled
	rule.AlertSource = source
	rule.Name = req.Name
	rule.Message = req.Message
	rule.Body = req.Body
	return rule, nil
}

func (s *PostgresStore) Get(ctx context.Context, filter Filter, page *int) ([]alertdomain.UserAlert, error) {
	query := `SELECT id, user_id, client_id, chain_id, status, alert_source, name, message, alert, created_at, updated_at
		FROM user_alert WHERE deleted_at IS NULL`
	var args []interface{}

	if filter.ID != nil {
		args = append(args, *filter.ID)
		query += fmt.Sprintf(" AND id = $%d", len(args))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.ChainID != nil {
		args = append(args, *filter.ChainID)
		query += fmt.Sprintf(" AND chain_id = $%d", len(args))
	}
	if filter.AlertSource != nil {
		args = append(args, *filter.AlertSource)
		query += fmt.Sprintf(" AND alert_source = $%d", len(args))
	}
	query += " ORDER BY id"

	if page != nil {
		args = append(args, pageSize, *page*pageSize)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, alerterrors.ErrRuleStoreFailed.Wrapf("query rules: %s", err)
	}
	defer rows.Close()

	var rules []alertdomain.UserAlert
	for rows.Next() {
		rule, encoded, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		body, err := alertdomain.DecodeRuleBody(encoded)
		if err != nil {
			return nil, alerterrors.ErrRuleDecode.Wrapf("rule %d: %s", rule.ID, err)
		}
		rule.Body = body
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, alerterrors.ErrRuleStoreFailed.Wrapf("iterate rules: %s", err)
	}
	return rules, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id int32) (alertdomain.UserAlert, error) {
	const query = `SELECT id, user_id, client_id, chain_id, status, alert_source, name, message, alert, created_at, updated_at
		FROM user_alert WHERE id = $1 AND deleted_at IS NULL`

	row := s.db.QueryRowContext(ctx, query, id)
	rule, encoded, err := scanRule(row)
	if err == sql.ErrNoRows {
		return alertdomain.UserAlert{}, alerterrors.ErrRuleNotFound.Wrapf("rule %d", id)
	}
	if err != nil {
		return alertdomain.UserAlert{}, err
	}

	body, err := alertdomain.DecodeRuleBody(encoded)
	if err != nil {
		return alertdomain.UserAlert{}, alerterrors.ErrRuleDecode.Wrapf("rule %d: %s", id, err)
	}
	rule.Body = body
	return rule, nil
}

func (s *PostgresStore) Update(ctx context.Context, id int32, name, message string, status alertdomain.Status) (alertdomain.UserAlert, error) {
	const query = `
		UPDATE user_alert
		SET name = $1, message = $2, status = $3, updated_at = (extract(epoch from now()) * 1e9)::bigint
		WHERE id = $4 AND deleted_at IS NULL`

	res, err := s.db.ExecContext(ctx, query, name, message, status, id)
	if err != nil {
		return alertdomain.UserAlert{}, alerterrors.ErrRuleStoreFailed.Wrapf("update rule %d: %s", id, err)
	}
	if affected, err := res.RowsAffected(); err != nil || affected == 0 {
		return alertdomain.UserAlert{}, alerterrors.ErrRuleNotFound.Wrapf("rule %d", id)
	}

	return s.GetByID(ctx, id)
}

func (s *PostgresStore) Delete(ctx context.Context, id int32) error {
	const query = `
		UPDATE user_alert
		SET deleted_at = (extract(epoch from now()) * 1e9)::bigint,
		    updated_at = (extract(epoch from now()) * 1e9)::bigint
		WHERE id = $1 AND deleted_at IS NULL`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return alerterrors.ErrRuleStoreFailed.Wrapf("delete rule %d: %s", id, err)
	}
	if affected, err := res.RowsAffected(); err != nil || affected == 0 {
		return alerterrors.ErrRuleNotFound.Wrapf("rule %d", id)
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row rowScanner) (alertdomain.UserAlert, string, error) {
	var rule alertdomain.UserAlert
	var encoded string
	err := row.Scan(
		&rule.ID, &rule.UserID, &rule.ClientID, &rule.ChainID, &rule.Status, &rule.AlertSource,
		&rule.Name, &rule.Message, &encoded, &rule.CreatedAtNanos, &rule.UpdatedAtNanos,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return alertdomain.UserAlert{}, "", err
		}
		return alertdomain.UserAlert{}, "", alerterrors.ErrRuleStoreFailed.Wrapf("scan rule row: %s", err)
	}
	return rule, encoded, nil
}
