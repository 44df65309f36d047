// Package dispatcher implements the Dispatcher (spec §4.3): webhook endpoint
// resolution, JSON POST delivery, and Notification Store recording.
package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cosmossdk.io/log"

	"github.com/archway-network/alertrelay/internal/alertdomain"
	"github.com/archway-network/alertrelay/internal/alerterrors"
	"github.com/archway-network/alertrelay/internal/metrics"
	"github.com/archway-network/alertrelay/internal/notificationstore"
	"github.com/archway-network/alertrelay/internal/rulestore"
	"github.com/archway-network/alertrelay/internal/webhook"
)

// webhookBody is the JSON POST body (spec §6, "Webhook POST body").
type webhookBody struct {
	UserID string     `json:"user_id"`
	Alert  alertEntry `json:"alert"`
}

type alertEntry struct {
	Notification  alertdomain.NotificationPayload `json:"notification"`
	AlertID       int32                           `json:"alert_id"`
	AlertSourceID string                          `json:"alert_source_id"`
}

// Dispatcher resolves a rule owner's webhook endpoint, POSTs the
// notification, and records the attempt in the Notification Store (spec
// §4.3).
type Dispatcher struct {
	rules         rulestore.Store
	notifications notificationstore.Store
	endpoints     webhook.Lookup
	httpClient    *http.Client
	logger        log.Logger
}

// New builds a Dispatcher. httpClient's timeout governs the POST; callers
// should set one (spec §6: "default connection timeouts").
func New(rules rulestore.Store, notifications notificationstore.Store, endpoints webhook.Lookup, httpClient *http.Client, logger log.Logger) *Dispatcher {
	return &Dispatcher{
		rules:         rules,
		notifications: notifications,
		endpoints:     endpoints,
		httpClient:    httpClient,
		logger:        logger.With("module", "dispatcher"),
	}
}

// Send resolves the rule's owning client's webhook endpoint, POSTs the
// payload, and persists a Notification row (spec §4.3 send()).
//
// A missing endpoint or a transport-level failure (connection refused,
// timeout, DNS) is returned to the caller and no row is written. An
// HTTP-level error response (any non-2xx status) is logged but still
// treated as "delivered": the row is written regardless, because only the
// transport layer's own error short-circuits the original send (spec §9,
// open question 1).
func (d *Dispatcher) Send(ctx context.Context, payload alertdomain.NotificationPayload, ownerUserID string, ruleID int32, eventID string) error {
	rule, err := d.rules.GetByID(ctx, ruleID)
	if err != nil {
		metrics.DispatchFailures.Mark(1)
		return alerterrors.ErrWebhookNotFound.Wrapf("resolve rule %d: %s", ruleID, err)
	}

	endpoint, err := d.endpoints.GetByClientID(ctx, rule.ClientID)
	if err != nil {
		metrics.DispatchFailures.Mark(1)
		return alerterrors.ErrWebhookNotFound.Wrapf("resolve endpoint for client %s: %s", rule.ClientID, err)
	}

	body, err := json.Marshal(webhookBody{
		UserID: ownerUserID,
		Alert: alertEntry{
			Notification:  payload,
			AlertID:       ruleID,
			AlertSourceID: eventID,
		},
	})
	if err != nil {
		return alerterrors.ErrTransport.Wrapf("marshal webhook body: %s", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.WebhookEndpoint, bytes.NewReader(body))
	if err != nil {
		return alerterrors.ErrTransport.Wrapf("build webhook request: %s", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := d.httpClient.Do(req)
	if err != nil {
		metrics.DispatchFailures.Mark(1)
		return alerterrors.ErrTransport.Wrapf("POST to %s: %s", endpoint.WebhookEndpoint, err)
	}
	defer resp.Body.Close()
	elapsed := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		d.logger.Warn("webhook responded with non-2xx status",
			"client_id", rule.ClientID, "rule_id", ruleID, "event_id", eventID, "status", resp.StatusCode)
	}

	_, err = d.notifications.Create(ctx, notificationstore.CreateRequest{
		Payload:           payload,
		RuleID:            ruleID,
		AlertSourceID:     eventID,
		UserID:            rule.UserID,
		TotalResponseTime: elapsed.Seconds(),
		NumResponses:      1,
	})
	if err != nil {
		metrics.DispatchFailures.Mark(1)
		return alerterrors.ErrNotificationStoreFailed.Wrapf("record notification for rule %d: %s", ruleID, err)
	}

	metrics.DispatchesSent.Mark(1)
	return nil
}
