package alertdomain

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/archway-network/alertrelay/internal/alerterrors"
)

// ruleBodyWire is the envelope persisted for a rule body: a discriminant tag
// plus the variant's JSON payload. Spec §4.6 calls for "hex-encoded
// protobuf"; this repo has no protoc/buf toolchain available to generate the
// real .pb.go bindings that would normally carry that wire format, so the
// envelope is hex-encoded JSON instead (see DESIGN.md). The Go-level contract
// — Encode/Decode, and SourceType being a total function of the stored tag —
// is identical either way, so swapping in generated protobuf types later is a
// drop-in change that touches only this file.
type ruleBodyWire struct {
	Tag     string          `json:"tag"`
	Payload json.RawMessage `json:"payload"`
}

const (
	tagCosmosSendFunds          = "cosmos_send_funds"
	tagCosmosMonitorFunds       = "cosmos_monitor_funds"
	tagCosmosSmartContractEvent = "cosmos_smart_contract_events"
	tagCosmosTxOutcome          = "cosmos_tx_outcome"
	tagEthSmartContractEvent    = "eth_smart_contract_events"
	tagEthMonitorFunds          = "eth_monitor_funds"
	tagEthTxOutcome             = "eth_tx_outcome"
	tagArchwayBroadcast         = "archway_broadcast"
)

// EncodeRuleBody implements the persistence half of the Rule Codec (spec
// §4.6): serialize a rule body to the hex string stored in the `alert`
// column.
func EncodeRuleBody(body RuleBody) (string, error) {
	var tag string
	switch body.(type) {
	case CosmosSendFunds:
		tag = tagCosmosSendFunds
	case CosmosMonitorFunds:
		tag = tagCosmosMonitorFunds
	case CosmosSmartContractEvents:
		tag = tagCosmosSmartContractEvent
	case CosmosTxOutcome:
		tag = tagCosmosTxOutcome
	case EthSmartContractEvents:
		tag = tagEthSmartContractEvent
	case EthMonitorFunds:
		tag = tagEthMonitorFunds
	case EthTxOutcome:
		tag = tagEthTxOutcome
	case ArchwayBroadcast:
		tag = tagArchwayBroadcast
	default:
		return "", alerterrors.ErrUnknownVariant.Wrapf("%T", body)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", alerterrors.ErrRuleDecode.Wrapf("marshal rule body: %s", err)
	}

	wire, err := json.Marshal(ruleBodyWire{Tag: tag, Payload: payload})
	if err != nil {
		return "", alerterrors.ErrRuleDecode.Wrapf("marshal rule envelope: %s", err)
	}

	return hex.EncodeToString(wire), nil
}

// DecodeRuleBody is the inverse of EncodeRuleBody.
func DecodeRuleBody(hexStr string) (RuleBody, error) {
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, alerterrors.ErrRuleDecode.Wrapf("hex decode: %s", err)
	}

	var wire ruleBodyWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, alerterrors.ErrRuleDecode.Wrapf("unmarshal envelope: %s", err)
	}

	switch wire.Tag {
	case tagCosmosSendFunds:
		var b CosmosSendFunds
		return b, unmarshalPayload(wire.Payload, &b)
	case tagCosmosMonitorFunds:
		var b CosmosMonitorFunds
		return b, unmarshalPayload(wire.Payload, &b)
	case tagCosmosSmartContractEvent:
		var b CosmosSmartContractEvents
		return b, unmarshalPayload(wire.Payload, &b)
	case tagCosmosTxOutcome:
		var b CosmosTxOutcome
		return b, unmarshalPayload(wire.Payload, &b)
	case tagEthSmartContractEvent:
		var b EthSmartContractEvents
		return b, unmarshalPayload(wire.Payload, &b)
	case tagEthMonitorFunds:
		var b EthMonitorFunds
		return b, unmarshalPayload(wire.Payload, &b)
	case tagEthTxOutcome:
		var b EthTxOutcome
		return b, unmarshalPayload(wire.Payload, &b)
	case tagArchwayBroadcast:
		return ArchwayBroadcast{}, nil
	default:
		return nil, alerterrors.ErrUnknownVariant.Wrap(wire.Tag)
	}
}

func unmarshalPayload(raw json.RawMessage, out RuleBody) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return alerterrors.ErrRuleDecode.Wrapf("unmarshal payload for %T: %s", out, err)
	}
	return nil
}

// notificationWire mirrors ruleBodyWire for the notification payload side of
// the wire (spec §6).
type notificationWire struct {
	Tag     string          `json:"tag"`
	Payload json.RawMessage `json:"payload"`
}

const (
	tagTxOutcome          = "tx_outcome"
	tagMonitorFundsCoin   = "monitor_funds_coin"
	tagMonitorFundsToken  = "monitor_funds_token"
	tagScEvents           = "sc_events"
	tagArchwayBroadcastN  = "archway_broadcast"
)

// EncodeNotificationPayload serializes a notification payload for storage in
// the `notification_data` column (spec §6).
func EncodeNotificationPayload(payload NotificationPayload) (string, error) {
	var tag string
	switch payload.(type) {
	case TxOutcomeNotification:
		tag = tagTxOutcome
	case MonitorFundsCoinNotification:
		tag = tagMonitorFundsCoin
	case MonitorFundsTokenNotification:
		tag = tagMonitorFundsToken
	case ScEventsNotification:
		tag = tagScEvents
	case ArchwayBroadcastNotification:
		tag = tagArchwayBroadcastN
	default:
		return "", fmt.Errorf("unknown notification payload type %T", payload)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	wire, err := json.Marshal(notificationWire{Tag: tag, Payload: body})
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(wire), nil
}

// DecodeNotificationPayload is the inverse of EncodeNotificationPayload.
func DecodeNotificationPayload(hexStr string) (NotificationPayload, error) {
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, alerterrors.ErrNotificationDecode.Wrapf("hex decode: %s", err)
	}

	var wire notificationWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, alerterrors.ErrNotificationDecode.Wrapf("unmarshal envelope: %s", err)
	}

	switch wire.Tag {
	case tagTxOutcome:
		var p TxOutcomeNotification
		return p, json.Unmarshal(wire.Payload, &p)
	case tagMonitorFundsCoin:
		var p MonitorFundsCoinNotification
		return p, json.Unmarshal(wire.Payload, &p)
	case tagMonitorFundsToken:
		var p MonitorFundsTokenNotification
		return p, json.Unmarshal(wire.Payload, &p)
	case tagScEvents:
		var p ScEventsNotification
		return p, json.Unmarshal(wire.Payload, &p)
	case tagArchwayBroadcastN:
		var p ArchwayBroadcastNotification
		return p, json.Unmarshal(wire.Payload, &p)
	default:
		return nil, alerterrors.ErrNotificationDecode.Wrapf("unknown tag %q", wire.Tag)
	}
}

// ClassifySource returns the source type a rule body indexes against (spec
// §4.6). It's a thin wrapper over RuleBody.SourceType so callers that only
// have a freshly-decoded body (not yet wrapped in a UserAlert) can classify
// it the same way Create does.
func ClassifySource(body RuleBody) SourceType {
	return body.SourceType()
}
