package ruleengine

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/archway-network/alertrelay/internal/alertdomain"
	"github.com/archway-network/alertrelay/internal/alerterrors"
	"github.com/archway-network/alertrelay/internal/ruleengine/erc20abi"
)

// erc20TransferMethod is the ABI method transfer(address,uint256); its ID is
// the 4-byte selector of the only ERC-20 call EthMonitorFunds needs to
// recognize on the input data (spec §3, EthMonitorFunds).
var erc20TransferMethod = erc20abi.ABI.Methods["transfer"]

func filterEthTxOutcome(rule alertdomain.EthTxOutcome, event alertdomain.Event) (alertdomain.NotificationPayload, error) {
	txEvent, err := asEthTx(event)
	if err != nil {
		return nil, err
	}

	if rule.Signer != "" {
		if !strings.EqualFold(rule.Signer, txEvent.Receipt.From.Hex()) {
			return nil, alerterrors.ErrNoMatch.Wrap("signer not found")
		}
	}

	if txEvent.Receipt.Status == nil {
		return nil, alerterrors.ErrDecode.Wrap("missing tx receipt status")
	}

	var matched bool
	switch rule.Outcome {
	case alertdomain.OutcomeSucceeded:
		matched = *txEvent.Receipt.Status == 1
	case alertdomain.OutcomeFailed:
		matched = *txEvent.Receipt.Status == 0
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

func filterEthMonitorFunds(rule alertdomain.EthMonitorFunds, event alertdomain.Event) (alertdomain.NotificationPayload, error) {
	txEvent, err := asEthTx(event)
	if err != nil {
		return nil, err
	}

	if txEvent.Receipt.Status == nil {
		return nil, alerterrors.ErrDecode.Wrap("missing tx receipt status")
	}
	if *txEvent.Receipt.Status != 1 {
		return nil, alerterrors.ErrNoMatch.Wrap("tx reverted")
	}

	if recipient, amount, ok := decodeERC20Transfer(txEvent.Tx.Input); ok {
		from := txEvent.Receipt.From.Hex()
		to := recipient.Hex()
		if rule.Address == "" || strings.EqualFold(rule.Address, from) || strings.EqualFold(rule.Address, to) {
			contractAddr := ""
			if txEvent.Tx.To != nil {
				contractAddr = txEvent.Tx.To.Hex()
			}
			return alertdomain.MonitorFundsTokenNotification{
				From:         from,
				To:           to,
				Amount:       amount.String(),
				TxHash:       txEvent.TxHash,
				ContractAddr: contractAddr,
			}, nil
		}
		return nil, alerterrors.ErrNoMatch.Wrap("address not related to transfer")
	}

	if txEvent.Tx.Value == nil || txEvent.Tx.Value.Sign() == 0 {
		return nil, alerterrors.ErrNoMatch.Wrap("not a value transfer")
	}

	from := txEvent.Receipt.From.Hex()
	to := ""
	if txEvent.Tx.To != nil {
		to = txEvent.Tx.To.Hex()
	}
	if rule.Address != "" && !strings.EqualFold(rule.Address, from) && !strings.EqualFold(rule.Address, to) {
		return nil, alerterrors.ErrNoMatch.Wrap("address not related to transfer")
	}

	return alertdomain.MonitorFundsCoinNotification{
		From:             from,
		To:               to,
		Amount:           []alertdomain.CoinAmount{{Amount: txEvent.Tx.Value.String(), Denom: "wei"}},
		TxHash:           txEvent.TxHash,
		MonitoredAddress: rule.Address,
	}, nil
}

// decodeERC20Transfer attempts to decode calldata as a transfer(address,uint256)
// call against the built-in standard ERC-20 ABI (spec §3, EthMonitorFunds).
func decodeERC20Transfer(input []byte) (common.Address, *big.Int, bool) {
	if len(input) < 4 || !bytes.Equal(input[:4], erc20TransferMethod.ID) {
		return common.Address{}, nil, false
	}

	args, err := erc20TransferMethod.Inputs.Unpack(input[4:])
	if err != nil || len(args) != 2 {
		return common.Address{}, nil, false
	}

	to, ok := args[0].(common.Address)
	if !ok {
		return common.Address{}, nil, false
	}
	amount, ok := args[1].(*big.Int)
	if !ok {
		return common.Address{}, nil, false
	}
	return to, amount, true
}

func filterEthSmartContractEvents(rule alertdomain.EthSmartContractEvents, event alertdomain.Event) (alertdomain.NotificationPayload, error) {
	logEvent, err := asEthLog(event)
	if err != nil {
		return nil, err
	}
	log := logEvent.Log
	if log == nil {
		return nil, alerterrors.ErrDecode.Wrap("missing log")
	}

	if rule.ContractAddr != "" && !strings.EqualFold(rule.ContractAddr, log.Address.Hex()) {
		return nil, alerterrors.ErrNoMatch.Wrap("log not from correct contract")
	}

	contractABI, err := decodeRuleABI(rule.ContractABI)
	if err != nil {
		return nil, err
	}

	eventABI, ok := findEventByTopic(contractABI, log.Topics)
	if !ok || eventABI.Name != rule.EventName {
		return nil, alerterrors.ErrNoMatch.Wrap("log does not match event name")
	}

	attrs, err := decodeLogAttributes(eventABI, log)
	if err != nil {
		return nil, alerterrors.ErrDecode.Wrapf("decoding log data: %s", err)
	}

	for k, v := range rule.EventAttributes {
		if attrs[k] != v {
			return nil, alerterrors.ErrNoMatch.Wrap("missing event attribute in log")
		}
	}

	return alertdomain.ScEventsNotification{
		ContractAddr:    log.Address.Hex(),
		EventName:       rule.EventName,
		EventAttributes: rule.EventAttributes,
		TxHash:          log.TxHash.Hex(),
	}, nil
}

func decodeRuleABI(encoded string) (abi.ABI, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return abi.ABI{}, alerterrors.ErrDecode.Wrapf("rule contract_abi is not valid base64: %s", err)
	}
	parsed, err := abi.JSON(strings.NewReader(string(raw)))
	if err != nil {
		return abi.ABI{}, alerterrors.ErrDecode.Wrapf("rule contract_abi is not valid ABI JSON: %s", err)
	}
	return parsed, nil
}

func findEventByTopic(contractABI abi.ABI, topics []common.Hash) (abi.Event, bool) {
	if len(topics) == 0 {
		return abi.Event{}, false
	}
	for _, e := range contractABI.Events {
		if e.ID == topics[0] {
			return e, true
		}
	}
	return abi.Event{}, false
}

// decodeLogAttributes flattens an ABI-decoded event's indexed and non-indexed
// arguments into a string-keyed map for attribute-subset matching (spec §3).
// Indexed arguments are read straight off the topics (as hex); non-indexed
// arguments are ABI-unpacked from the log data.
func decodeLogAttributes(eventABI abi.Event, log *ethtypes.Log) (map[string]string, error) {
	attrs := make(map[string]string, len(eventABI.Inputs))

	topicIdx := 1 // topics[0] is the event signature hash
	for _, arg := range eventABI.Inputs {
		if !arg.Indexed {
			continue
		}
		if topicIdx >= len(log.Topics) {
			return nil, fmt.Errorf("log has fewer topics than indexed arguments")
		}
		attrs[arg.Name] = log.Topics[topicIdx].Hex()
		topicIdx++
	}

	nonIndexed := eventABI.Inputs.NonIndexed()
	if len(nonIndexed) > 0 {
		values, err := nonIndexed.UnpackValues(log.Data)
		if err != nil {
			return nil, err
		}
		for i, arg := range nonIndexed {
			attrs[arg.Name] = fmt.Sprintf("%v", values[i])
		}
	}

	return attrs, nil
}
