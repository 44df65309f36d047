package ruleengine

import (
	"github.com/archway-network/alertrelay/internal/alertdomain"
)

// filterArchwayBroadcast always matches: an ArchwayBroadcast rule has no
// predicate fields, so any broadcast event scoped to the rule's chain id by
// the pipeline coordinator is a match (spec §3, ArchwayBroadcast).
func filterArchwayBroadcast(_ alertdomain.ArchwayBroadcast, event alertdomain.Event) (alertdomain.NotificationPayload, error) {
	broadcast, err := asArchwayBroadcast(event)
	if err != nil {
		return nil, err
	}

	return alertdomain.ArchwayBroadcastNotification{
		Message: broadcast.Message,
	}, nil
}
