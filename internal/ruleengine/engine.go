// Package ruleengine is the Filter Engine (spec §4.2): a polymorphic
// dispatch, keyed by rule-body variant, that evaluates one rule against one
// event and produces a notification payload or a match-failure reason.
package ruleengine

import (
	"github.com/archway-network/alertrelay/internal/alertdomain"
	"github.com/archway-network/alertrelay/internal/alerterrors"
)

// Evaluate runs the rule body's handler against the event. A non-nil error
// is either alerterrors.ErrWrongEventKind/ErrNoMatch (a non-match — the
// pipeline coordinator drops it silently, spec §4.1 step 3), ErrDecode for a
// malformed event or rule payload, or ErrUnknownVariant; the coordinator
// logs the last two at WARN and drops them too.
func Evaluate(body alertdomain.RuleBody, event alertdomain.Event) (alertdomain.NotificationPayload, error) {
	switch rule := body.(type) {
	case alertdomain.CosmosTxOutcome:
		return filterCosmosTxOutcome(rule, event)
	case alertdomain.CosmosMonitorFunds:
		return filterCosmosMonitorFunds(rule, event)
	case alertdomain.CosmosSendFunds:
		return filterCosmosSendFunds(rule, event)
	case alertdomain.CosmosSmartContractEvents:
		return filterCosmosSmartContractEvents(rule, event)
	case alertdomain.EthTxOutcome:
		return filterEthTxOutcome(rule, event)
	case alertdomain.EthMonitorFunds:
		return filterEthMonitorFunds(rule, event)
	case alertdomain.EthSmartContractEvents:
		return filterEthSmartContractEvents(rule, event)
	case alertdomain.ArchwayBroadcast:
		return filterArchwayBroadcast(rule, event)
	default:
		return nil, alerterrors.ErrUnknownVariant.Wrapf("%T", body)
	}
}

func asCosmosTx(event alertdomain.Event) (*alertdomain.CosmosTxEvent, error) {
	e, ok := event.(*alertdomain.CosmosTxEvent)
	if !ok {
		return nil, alerterrors.ErrWrongEventKind
	}
	return e, nil
}

func asCosmosMsg(event alertdomain.Event) (*alertdomain.CosmosMsgEvent, error) {
	e, ok := event.(*alertdomain.CosmosMsgEvent)
	if !ok {
		return nil, alerterrors.ErrWrongEventKind
	}
	return e, nil
}

func asEthTx(event alertdomain.Event) (*alertdomain.EthTxEvent, error) {
	e, ok := event.(*alertdomain.EthTxEvent)
	if !ok {
		return nil, alerterrors.ErrWrongEventKind
	}
	return e, nil
}

func asEthLog(event alertdomain.Event) (*alertdomain.EthLogEvent, error) {
	e, ok := event.(*alertdomain.EthLogEvent)
	if !ok {
		return nil, alerterrors.ErrWrongEventKind
	}
	return e, nil
}

func asArchwayBroadcast(event alertdomain.Event) (*alertdomain.ArchwayBroadcastEvent, error) {
	e, ok := event.(*alertdomain.ArchwayBroadcastEvent)
	if !ok {
		return nil, alerterrors.ErrWrongEventKind
	}
	return e, nil
}
