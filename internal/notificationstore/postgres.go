package notificationstore

import (
	"database/sql"
	"context"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/archway-network/alertrelay/internal/alertdomain"
	"github.com/archway-network/alertrelay/internal/alerterrors"
)

// PostgresStore persists notifications to the `alert_notification` table
// (spec §6, "Persisted schema").
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an already-opened connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, req CreateRequest) (Notification, error) {
	encoded, err := alertdomain.EncodeNotificationPayload(req.Payload)
	if err != nil {
		return Notification{}, alerterrors.ErrNotificationStoreFailed.Wrapf("encode payload: %s", err)
	}

	const query = `
		INSERT INTO alert_notification (notification_data, alert_id, alert_source_id, user_id, total_response_time, num_responses, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, (extract(epoch from now()) * 1e9)::bigint, (extract(epoch from now()) * 1e9)::bigint)
		RETURNING id, created_at`

	var n Notification
	row := s.db.QueryRowContext(ctx, query, encoded, req.RuleID, req.AlertSourceID, req.UserID, req.TotalResponseTime, req.NumResponses)
	if err := row.Scan(&n.ID, &n.CreatedAtNanos); err != nil {
		return Notification{}, alerterrors.ErrNotificationStoreFailed.Wrapf("insert notification: %s", err)
	}

	n.Payload = req.Payload
	n.RuleID = req.RuleID
	n.AlertSourceID = req.AlertSourceID
	n.UserID = req.UserID
	n.TotalResponseTime = req.TotalResponseTime
	n.NumResponses = req.NumResponses
	return n, nil
}

// Get implements spec §4.5's get(filter, page?): every call is scoped to the
// caller's own notifications via filter.user_id, joined against the rule
// table that owns each row. ID and AlertID further narrow to a single
// notification or a single rule; CreatedAfter/CreatedBefore narrow by a
// created_at range.
func (s *PostgresStore) Get(ctx context.Context, filter Filter, page *int) ([]Notification, error) {
	query := `SELECT n.id, n.notification_data, n.alert_id, n.alert_source_id, n.user_id, n.total_response_time, n.num_responses, n.created_at
		FROM alert_notification n
		JOIN user_alert r ON r.id = n.alert_id
		WHERE n.deleted_at IS NULL AND r.user_id = $1`
	args := []interface{}{filter.UserID}

	if filter.ID != nil {
		args = append(args, *filter.ID)
		query += fmt.Sprintf(" AND n.id = $%d", len(args))
	}
	if filter.AlertID != nil {
		args = append(args, *filter.AlertID)
		query += fmt.Sprintf(" AND n.alert_id = $%d", len(args))
	}
	if filter.CreatedAfter != nil {
		args = append(args, *filter.CreatedAfter)
		query += fmt.Sprintf(" AND n.created_at >= $%d", len(args))
	}
	if filter.CreatedBefore != nil {
		args = append(args, *filter.CreatedBefore)
		query += fmt.Sprintf(" AND n.created_at <= $%d", len(args))
	}
	query += " ORDER BY n.id"

	if page != nil {
		args = append(args, pageSize, *page*pageSize)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, alerterrors.ErrNotificationStoreFailed.Wrapf("query notifications: %s", err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		var encoded string
		if err := rows.Scan(&n.ID, &encoded, &n.RuleID, &n.AlertSourceID, &n.UserID, &n.TotalResponseTime, &n.NumResponses, &n.CreatedAtNanos); err != nil {
			return nil, alerterrors.ErrNotificationStoreFailed.Wrapf("scan notification: %s", err)
		}
		payload, err := alertdomain.DecodeNotificationPayload(encoded)
		if err != nil {
			return nil, alerterrors.ErrNotificationDecode.Wrapf("notification %d: %s", n.ID, err)
		}
		n.Payload = payload
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, alerterrors.ErrNotificationStoreFailed.Wrapf("iterate notifications: %s", err)
	}
	return notifications, nil
}

func (s *PostgresStore) GetByRuleID(ctx context.Context, ruleID int32, page *int) ([]Notification, error) {
	query := `SELECT id, notification_data, alert_id, alert_source_id, user_id, total_response_time, num_responses, created_at
		FROM alert_notification WHERE alert_id = $1 AND deleted_at IS NULL ORDER BY id`
	args := []interface{}{ruleID}

	if page != nil {
		args = append(args, pageSize, *page*pageSize)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, alerterrors.ErrNotificationStoreFailed.Wrapf("query notifications: %s", err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		var encoded string
		if err := rows.Scan(&n.ID, &encoded, &n.RuleID, &n.AlertSourceID, &n.UserID, &n.TotalResponseTime, &n.NumResponses, &n.CreatedAtNanos); err != nil {
			return nil, alerterrors.ErrNotificationStoreFailed.Wrapf("scan notification: %s", err)
		}
		payload, err := alertdomain.DecodeNotificationPayload(encoded)
		if err != nil {
			return nil, alerterrors.ErrNotificationDecode.Wrapf("notification %d: %s", n.ID, err)
		}
		n.Payload = payload
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, alerterrors.ErrNotificationStoreFailed.Wrapf("iterate notifications: %s", err)
	}
	return notifications, nil
}

func (s *PostgresStore) Statistics(ctx context.Context, ruleIDs []int32) (Statistics, error) {
	if len(ruleIDs) == 0 {
		return Statistics{}, nil
	}

	ids := make([]interface{}, len(ruleIDs))
	placeholders := ""
	for i, id := range ruleIDs {
		ids[i] = id
		if i > 0 {
			placeholders += ","
		}
		placeholders += fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`
		SELECT
			count(*),
			count(*) FILTER (WHERE created_at > (extract(epoch from now()) * 1e9)::bigint - 86400000000000),
			coalesce(sum(total_response_time) FILTER (WHERE created_at > (extract(epoch from now()) * 1e9)::bigint - 86400000000000), 0),
			coalesce(sum(num_responses) FILTER (WHERE created_at > (extract(epoch from now()) * 1e9)::bigint - 86400000000000), 0)
		FROM alert_notification
		WHERE deleted_at IS NULL AND alert_id IN (%s)`, placeholders)

	var stats Statistics
	var totalResponseTime float64
	var totalResponses int64
	row := s.db.QueryRowContext(ctx, query, ids...)
	if err := row.Scan(&stats.TotalAlerts, &stats.TotalAlertsToday, &totalResponseTime, &totalResponses); err != nil {
		return Statistics{}, alerterrors.ErrNotificationStoreFailed.Wrapf("query statistics: %s", err)
	}

	if totalResponses > 0 {
		stats.AvgResponseTime = totalResponseTime / float64(totalResponses)
	}
	return stats, nil
}

func (s *PostgresStore) GetTelegramChatID(ctx context.Context, username string) (int64, error) {
	const query = `SELECT chat_id FROM telegram_chat WHERE username = $1`

	var chatID int64
	row := s.db.QueryRowContext(ctx, query, username)
	if err := row.Scan(&chatID); err != nil {
		if err == sql.ErrNoRows {
			return 0, alerterrors.ErrTelegramChatIDNotFound.Wrapf("username %s", username)
		}
		return 0, alerterrors.ErrNotificationStoreFailed.Wrapf("query telegram chat id: %s", err)
	}
	return chatID, nil
}

func (s *PostgresStore) SetTelegramChatID(ctx context.Context, username string, chatID int64) error {
	const query = `
		INSERT INTO telegram_chat (username, chat_id) VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET chat_id = excluded.chat_id`

	if _, err := s.db.ExecContext(ctx, query, username, chatID); err != nil {
		return alerterrors.ErrNotificationStoreFailed.Wrapf("set telegram chat id: %s", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	const query = `
		UPDATE alert_notification
		SET deleted_at = (extract(epoch from now()) * 1e9)::bigint
		WHERE id = $1 AND deleted_at IS NULL`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return alerterrors.ErrNotificationStoreFailed.Wrapf("delete notification %d: %s", id, err)
	}
	if affected, err := res.RowsAffected(); err != nil || affected == 0 {
		return alerterrors.ErrNotificationNotFound.Wrapf("notification %d", id)
	}
	return nil
}
