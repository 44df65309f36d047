package ruleengine

import (
	"encoding/json"

	wasmtypes "github.com/CosmWasm/wasmd/x/wasm/types"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	"github.com/cosmos/gogoproto/proto"

	"github.com/archway-network/alertrelay/internal/alertdomain"
	"github.com/archway-network/alertrelay/internal/alerterrors"
)

// cw20TransferMsg is the minimal shape of a CW20 Transfer execute message
// (spec glossary, "CW20": any MsgExecuteContract whose JSON payload is
// {"transfer":{"recipient":...,"amount":...}}). There is no Go CW20 crate in
// the retrieval pack to ground this on (CW20 is a CosmWasm/Rust contract
// standard); decoding its JSON shape with a small local struct is a
// boundary-format detail, not a concern a third-party library owns, so
// encoding/json is used directly here.
type cw20TransferMsg struct {
	Transfer *struct {
		Recipient string `json:"recipient"`
		Amount    string `json:"amount"`
	} `json:"transfer"`
}

// decodedCosmosMsg is the outcome of dispatching a CosmosMsgEvent's Any to a
// concrete, supported message type.
type decodedCosmosMsg struct {
	bankSend   *banktypes.MsgSend
	cw20Sender string
	cw20       *cw20TransferMsg
	execMsg    *wasmtypes.MsgExecuteContract
}

func decodeCosmosMsg(event *alertdomain.CosmosMsgEvent) (*decodedCosmosMsg, error) {
	if event.Msg == nil {
		return nil, alerterrors.ErrDecode.Wrap("event msg is nil")
	}

	if send, ok := tryUnmarshalAny(event.Msg, &banktypes.MsgSend{}); ok {
		return &decodedCosmosMsg{bankSend: send.(*banktypes.MsgSend)}, nil
	}

	if exec, ok := tryUnmarshalAny(event.Msg, &wasmtypes.MsgExecuteContract{}); ok {
		execMsg := exec.(*wasmtypes.MsgExecuteContract)
		var cw20 cw20TransferMsg
		if err := json.Unmarshal(execMsg.Msg, &cw20); err == nil && cw20.Transfer != nil {
			return &decodedCosmosMsg{
				execMsg:    execMsg,
				cw20Sender: execMsg.Sender,
				cw20:       &cw20,
			}, nil
		}
		return &decodedCosmosMsg{execMsg: execMsg}, nil
	}

	return nil, alerterrors.ErrNoMatch.Wrap("message is neither a bank send nor a contract execution")
}

// tryUnmarshalAny decodes event.Msg into target's concrete type if the Any's
// TypeUrl matches target's registered proto message name. The bool result
// mirrors the original Rust code's `if let Ok(x) = T::from_any(msg)` pattern.
func tryUnmarshalAny(any *codectypes.Any, target proto.Message) (proto.Message, bool) {
	if any == nil {
		return nil, false
	}
	if any.TypeUrl != "/"+proto.MessageName(target) {
		return nil, false
	}
	if err := proto.Unmarshal(any.Value, target); err != nil {
		return nil, false
	}
	return target, true
}

func filterCosmosMonitorFunds(rule alertdomain.CosmosMonitorFunds, event alertdomain.Event) (alertdomain.NotificationPayload, error) {
	msgEvent, err := asCosmosMsg(event)
	if err != nil {
		return nil, err
	}

	decoded, err := decodeCosmosMsg(msgEvent)
	if err != nil {
		return nil, err
	}

	if decoded.bankSend != nil {
		send := decoded.bankSend
		notification := alertdomain.MonitorFundsCoinNotification{
			From:             send.FromAddress,
			To:               send.ToAddress,
			Amount:           coinsToAmounts(send.Amount),
			TxHash:           msgEvent.TxHash,
			MonitoredAddress: rule.Address,
		}
		if rule.Address == "" || rule.Address == send.FromAddress || rule.Address == send.ToAddress {
			return notification, nil
		}
		return nil, alerterrors.ErrNoMatch.Wrap("address not related to message")
	}

	if decoded.cw20 != nil {
		notification := alertdomain.MonitorFundsTokenNotification{
			From:         decoded.cw20Sender,
			To:           decoded.cw20.Transfer.Recipient,
			Amount:       decoded.cw20.Transfer.Amount,
			TxHash:       msgEvent.TxHash,
			ContractAddr: decoded.execMsg.Contract,
		}
		if rule.Address == "" || rule.Address == decoded.cw20Sender || rule.Address == decoded.cw20.Transfer.Recipient {
			return notification, nil
		}
		return nil, alerterrors.ErrNoMatch.Wrap("address not related to message")
	}

	return nil, alerterrors.ErrNoMatch.Wrap("message is neither a bank send nor a CW20 transfer")
}

func filterCosmosSendFunds(rule alertdomain.CosmosSendFunds, event alertdomain.Event) (alertdomain.NotificationPayload, error) {
	msgEvent, err := asCosmosMsg(event)
	if err != nil {
		return nil, err
	}

	decoded, err := decodeCosmosMsg(msgEvent)
	if err != nil {
		return nil, err
	}

	if decoded.bankSend != nil {
		send := decoded.bankSend
		if rule.From != "" && rule.From != send.FromAddress {
			return nil, alerterrors.ErrNoMatch.Wrapf("wrong from address: expected %s got %s", rule.From, send.FromAddress)
		}
		if rule.To != "" && rule.To != send.ToAddress {
			return nil, alerterrors.ErrNoMatch.Wrapf("wrong to address: expected %s got %s", rule.To, send.ToAddress)
		}
		return alertdomain.MonitorFundsCoinNotification{
			From:             send.FromAddress,
			To:               send.ToAddress,
			Amount:           coinsToAmounts(send.Amount),
			TxHash:           msgEvent.TxHash,
			MonitoredAddress: send.FromAddress,
		}, nil
	}

	if decoded.cw20 != nil {
		recipient := decoded.cw20.Transfer.Recipient
		if rule.From != "" && rule.From != decoded.cw20Sender {
			return nil, alerterrors.ErrNoMatch.Wrapf("wrong from address: expected %s got %s", rule.From, decoded.cw20Sender)
		}
		if rule.To != "" && rule.To != recipient {
			return nil, alerterrors.ErrNoMatch.Wrapf("wrong to address: expected %s got %s", rule.To, recipient)
		}
		return alertdomain.MonitorFundsTokenNotification{
			From:         decoded.cw20Sender,
			To:           recipient,
			Amount:       decoded.cw20.Transfer.Amount,
			TxHash:       msgEvent.TxHash,
			ContractAddr: decoded.execMsg.Contract,
		}, nil
	}

	return nil, alerterrors.ErrNoMatch.Wrap("incorrect message type")
}

func filterCosmosSmartContractEvents(rule alertdomain.CosmosSmartContractEvents, event alertdomain.Event) (alertdomain.NotificationPayload, error) {
	msgEvent, err := asCosmosMsg(event)
	if err != nil {
		return nil, err
	}

	decoded, err := decodeCosmosMsg(msgEvent)
	if err != nil {
		return nil, err
	}
	if decoded.execMsg == nil {
		return nil, alerterrors.ErrNoMatch.Wrap("message not related to contract")
	}

	contractAddr := decoded.execMsg.Contract
	if rule.Address != "" && rule.Address != contractAddr {
		return nil, alerterrors.ErrNoMatch.Wrap("msg not from correct contract")
	}

	if msgEvent.MsgLog == nil {
		return nil, alerterrors.ErrNoMatch.Wrap("could not find msg log")
	}

	events := make(map[string]map[string]string, len(msgEvent.MsgLog.Events))
	for _, e := range msgEvent.MsgLog.Events {
		attrs := make(map[string]string, len(e.Attributes))
		for _, attr := range e.Attributes {
			attrs[attr.Key] = attr.Value
		}
		events[e.Type] = attrs
	}

	attrs, ok := events[rule.EventName]
	if !ok {
		return nil, alerterrors.ErrNoMatch.Wrap("could not find event in msg")
	}

	for k, v := range rule.EventAttributes {
		if attrs[k] != v {
			return nil, alerterrors.ErrNoMatch.Wrap("missing event attribute in contract execution")
		}
	}

	return alertdomain.ScEventsNotification{
		ContractAddr:    contractAddr,
		EventName:       rule.EventName,
		EventAttributes: rule.EventAttributes,
		TxHash:          msgEvent.TxHash,
	}, nil
}

func filterCosmosTxOutcome(rule alertdomain.CosmosTxOutcome, event alertdomain.Event) (alertdomain.NotificationPayload, error) {
	txEvent, err := asCosmosTx(event)
	if err != nil {
		return nil, err
	}

	if rule.Signer != "" {
		signers, err := signersFromTx(txEvent.ChainData.Bech32Prefix, txEvent.Tx)
		if err != nil {
			return nil, err
		}
		if !contains(signers, rule.Signer) {
			return nil, alerterrors.ErrNoMatch.Wrap("signer not found")
		}
	}

	if txEvent.TxResponse == nil {
		return nil, alerterrors.ErrDecode.Wrap("missing tx response")
	}

	var matched bool
	switch rule.Outcome {
	case alertdomain.OutcomeSucceeded:
		matched = txEvent.TxResponse.Code == 0
	case alertdomain.OutcomeFailed:
		matched = txEvent.TxResponse.Code != 0
	}
	if !matched {
		return nil, alerterrors.ErrNoMatch.Wrap("tx outcome mismatch")
	}

	return alertdomain.TxOutcomeNotification{
		Signer:      rule.Signer,
		OutcomeName: rule.Outcome.String(),
		TxHash:      txEvent.TxHash,
	}, nil
}

func coinsToAmounts(coins sdk.Coins) []alertdomain.CoinAmount {
	amounts := make([]alertdomain.CoinAmount, 0, len(coins))
	for _, c := range coins {
		amounts = append(amounts, alertdomain.CoinAmount{Amount: c.Amount.String(), Denom: c.Denom})
	}
	return amounts
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
