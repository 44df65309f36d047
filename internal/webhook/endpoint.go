// Package webhook resolves a client's webhook endpoint and validates the JWT
// record it was registered under (spec §3 "Webhook endpoint", §6 jwt table,
// §7 Auth error kind).
package webhook

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/golang-jwt/jwt/v4"

	"github.com/archway-network/alertrelay/internal/alerterrors"
)

// Endpoint is a client's registered delivery target, read from the `jwt`
// table row keyed by client_id (spec §6).
type Endpoint struct {
	ClientID        string
	Name            string
	WebhookEndpoint string
	Valid           bool
}

// Claims is the JWT claim set a client presents on the admin/auth surface;
// ClientID ties the token back to its `jwt` table row (spec §7, Auth).
type Claims struct {
	jwt.RegisteredClaims
	ClientID string `json:"client_id"`
}

// Lookup resolves a client's webhook endpoint (spec §4.3 step 1).
type Lookup interface {
	GetByClientID(ctx context.Context, clientID string) (Endpoint, error)
}

// PostgresLookup reads the `jwt` table (spec §6).
type PostgresLookup struct {
	db *sql.DB
}

// NewPostgresLookup wraps an already-opened connection pool.
func NewPostgresLookup(db *sql.DB) *PostgresLookup {
	return &PostgresLookup{db: db}
}

// GetByClientID returns alerterrors.ErrWebhookNotFound when no row exists,
// and alerterrors.ErrJWTRevoked when the row exists but its valid flag is
// false (the client's token was revoked after registration).
func (l *PostgresLookup) GetByClientID(ctx context.Context, clientID string) (Endpoint, error) {
	const query = `SELECT client_id, name, webhook_endpoint, valid FROM jwt WHERE client_id = $1`

	var e Endpoint
	row := l.db.QueryRowContext(ctx, query, clientID)
	if err := row.Scan(&e.ClientID, &e.Name, &e.WebhookEndpoint, &e.Valid); err != nil {
		if err == sql.ErrNoRows {
			return Endpoint{}, alerterrors.ErrWebhookNotFound.Wrapf("client %s", clientID)
		}
		return Endpoint{}, alerterrors.ErrWebhookNotFound.Wrapf("lookup client %s: %s", clientID, err)
	}

	if !e.Valid {
		return Endpoint{}, alerterrors.ErrJWTRevoked.Wrapf("client %s", clientID)
	}

	return e, nil
}

// ParseClaims parses and validates a bearer token against secret, returning
// its Claims on success (spec §7, Auth: "invalid/revoked JWT ... surfaced as
// permission-denied").
func ParseClaims(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, alerterrors.ErrJWTRevoked.Wrapf("parse token: %s", err)
	}
	return claims, nil
}
