package ruleengine_test

import (
	"encoding/base64"
	"math/big"
	"strings"
	"testing"

	wasmtypes "github.com/CosmWasm/wasmd/x/wasm/types"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	abcitypes "github.com/cosmos/cosmos-sdk/types/abci"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	"github.com/cosmos/gogoproto/proto"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/archway-network/alertrelay/internal/alertdomain"
	"github.com/archway-network/alertrelay/internal/alerterrors"
	"github.com/archway-network/alertrelay/internal/chaindata"
	"github.com/archway-network/alertrelay/internal/ruleengine"
	"github.com/archway-network/alertrelay/internal/ruleengine/erc20abi"
)

func mustAny(t *testing.T, msg proto.Message) *codectypes.Any {
	t.Helper()
	any, err := codectypes.NewAnyWithValue(msg)
	require.NoError(t, err)
	return any
}

// TestFilterCosmosMonitorFunds covers spec §8 scenario S1: a bank send event
// matched against a monitor rule watching the sender's address.
func TestFilterCosmosMonitorFunds(t *testing.T) {
	send := &banktypes.MsgSend{
		FromAddress: "cosmos1sender",
		ToAddress:   "cosmos1recipient",
		Amount:      sdk.NewCoins(sdk.NewInt64Coin("uatom", 100)),
	}
	any := mustAny(t, send)

	event := &alertdomain.CosmosMsgEvent{
		ChainID: "cosmoshub-4",
		TxHash:  "ABC123",
		Msg:     any,
	}

	notification, err := ruleengine.Evaluate(alertdomain.CosmosMonitorFunds{Address: "cosmos1sender"}, event)
	require.NoError(t, err)
	payload, ok := notification.(alertdomain.MonitorFundsCoinNotification)
	require.True(t, ok)
	require.Equal(t, "cosmos1sender", payload.From)
	require.Equal(t, "cosmos1recipient", payload.To)
	require.Len(t, payload.Amount, 1)
	require.Equal(t, "100", payload.Amount[0].Amount)
}

// TestFilterCosmosMonitorFundsNoMatch covers spec §8 scenario S2: an address
// unrelated to the message is a strict miss, not a partial match.
func TestFilterCosmosMonitorFundsNoMatch(t *testing.T) {
	send := &banktypes.MsgSend{
		FromAddress: "cosmos1sender",
		ToAddress:   "cosmos1recipient",
		Amount:      sdk.NewCoins(sdk.NewInt64Coin("uatom", 100)),
	}
	event := &alertdomain.CosmosMsgEvent{ChainID: "cosmoshub-4", TxHash: "ABC123", Msg: mustAny(t, send)}

	_, err := ruleengine.Evaluate(alertdomain.CosmosMonitorFunds{Address: "cosmos1unrelated"}, event)
	require.ErrorIs(t, err, alerterrors.ErrNoMatch)
}

func TestFilterCosmosSendFundsExact(t *testing.T) {
	send := &banktypes.MsgSend{
		FromAddress: "cosmos1sender",
		ToAddress:   "cosmos1recipient",
		Amount:      sdk.NewCoins(sdk.NewInt64Coin("uatom", 100)),
	}
	event := &alertdomain.CosmosMsgEvent{ChainID: "cosmoshub-4", TxHash: "ABC123", Msg: mustAny(t, send)}

	_, err := ruleengine.Evaluate(alertdomain.CosmosSendFunds{From: "cosmos1sender", To: "cosmos1wrong"}, event)
	require.ErrorIs(t, err, alerterrors.ErrNoMatch)

	notification, err := ruleengine.Evaluate(alertdomain.CosmosSendFunds{From: "cosmos1sender", To: "cosmos1recipient"}, event)
	require.NoError(t, err)
	require.IsType(t, alertdomain.MonitorFundsCoinNotification{}, notification)
}

func TestFilterCosmosSmartContractEvents(t *testing.T) {
	exec := &wasmtypes.MsgExecuteContract{
		Sender:   "cosmos1sender",
		Contract: "cosmos1contract",
		Msg:      wasmtypes.RawContractMessage(`{"swap":{}}`),
	}
	event := &alertdomain.CosmosMsgEvent{
		ChainID: "cosmoshub-4",
		TxHash:  "ABC123",
		Msg:     mustAny(t, exec),
		MsgLog: &abcitypes.ABCIMessageLog{
			Events: []abcitypes.StringEvent{
				{
					Type: "wasm-swap",
					Attributes: []abcitypes.Attribute{
						{Key: "amount_in", Value: "1000"},
					},
				},
			},
		},
	}

	rule := alertdomain.CosmosSmartContractEvents{
		Address:         "cosmos1contract",
		EventName:       "wasm-swap",
		EventAttributes: map[string]string{"amount_in": "1000"},
	}
	notification, err := ruleengine.Evaluate(rule, event)
	require.NoError(t, err)
	require.IsType(t, alertdomain.ScEventsNotification{}, notification)

	rule.EventAttributes = map[string]string{"amount_in": "9999"}
	_, err = ruleengine.Evaluate(rule, event)
	require.ErrorIs(t, err, alerterrors.ErrNoMatch)
}

func TestFilterCosmosTxOutcomeWrongEventKind(t *testing.T) {
	event := &alertdomain.CosmosMsgEvent{ChainID: "cosmoshub-4"}
	_, err := ruleengine.Evaluate(alertdomain.CosmosTxOutcome{Outcome: alertdomain.OutcomeSucceeded}, event)
	require.ErrorIs(t, err, alerterrors.ErrWrongEventKind)
}

func TestFilterCosmosTxOutcomeMatch(t *testing.T) {
	event := &alertdomain.CosmosTxEvent{
		ChainID:    "cosmoshub-4",
		ChainData:  chaindata.CosmosChainData{Bech32Prefix: "cosmos"},
		TxHash:     "ABC123",
		TxResponse: &sdk.TxResponse{Code: 0},
	}
	notification, err := ruleengine.Evaluate(alertdomain.CosmosTxOutcome{Outcome: alertdomain.OutcomeSucceeded}, event)
	require.NoError(t, err)
	payload, ok := notification.(alertdomain.TxOutcomeNotification)
	require.True(t, ok)
	require.Equal(t, "SUCCEEDED", payload.OutcomeName)

	_, err = ruleengine.Evaluate(alertdomain.CosmosTxOutcome{Outcome: alertdomain.OutcomeFailed}, event)
	require.ErrorIs(t, err, alerterrors.ErrNoMatch)
}

func TestFilterEthTxOutcome(t *testing.T) {
	status := uint64(1)
	event := &alertdomain.EthTxEvent{
		ChainID: "1",
		TxHash:  "0xabc",
		Receipt: alertdomain.EthTxReceipt{Status: &status, From: common.HexToAddress("0x1111111111111111111111111111111111111111")},
	}

	notification, err := ruleengine.Evaluate(alertdomain.EthTxOutcome{Outcome: alertdomain.OutcomeSucceeded}, event)
	require.NoError(t, err)
	require.IsType(t, alertdomain.TxOutcomeNotification{}, notification)

	_, err = ruleengine.Evaluate(alertdomain.EthTxOutcome{Outcome: alertdomain.OutcomeFailed}, event)
	require.ErrorIs(t, err, alerterrors.ErrNoMatch)
}

func TestFilterEthMonitorFundsNativeTransfer(t *testing.T) {
	status := uint64(1)
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	event := &alertdomain.EthTxEvent{
		ChainID: "1",
		TxHash:  "0xabc",
		Tx:      alertdomain.EthTx{To: &to, Value: big.NewInt(1000)},
		Receipt: alertdomain.EthTxReceipt{Status: &status, From: common.HexToAddress("0x1111111111111111111111111111111111111111")},
	}

	notification, err := ruleengine.Evaluate(alertdomain.EthMonitorFunds{Address: to.Hex()}, event)
	require.NoError(t, err)
	require.IsType(t, alertdomain.MonitorFundsCoinNotification{}, notification)
}

// TestFilterEthMonitorFundsRevertedTxNeverMatches covers spec §4.2
// EthMonitorFunds's "require tx_receipt.status == 1" guard: a reverted tx
// with an otherwise-qualifying native transfer must not match.
func TestFilterEthMonitorFundsRevertedTxNeverMatches(t *testing.T) {
	status := uint64(0)
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	event := &alertdomain.EthTxEvent{
		ChainID: "1",
		TxHash:  "0xabc",
		Tx:      alertdomain.EthTx{To: &to, Value: big.NewInt(1000)},
		Receipt: alertdomain.EthTxReceipt{Status: &status, From: common.HexToAddress("0x1111111111111111111111111111111111111111")},
	}

	_, err := ruleengine.Evaluate(alertdomain.EthMonitorFunds{Address: to.Hex()}, event)
	require.ErrorIs(t, err, alerterrors.ErrNoMatch)
}

// TestFilterEthMonitorFundsERC20Transfer covers spec §8 scenario S3: an
// ERC-20 transfer(address,uint256) call decoded from tx input data.
func TestFilterEthMonitorFundsERC20Transfer(t *testing.T) {
	status := uint64(1)
	contract := common.HexToAddress("0x3333333333333333333333333333333333333333")
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	amount := big.NewInt(42)

	input, err := erc20abi.ABI.Pack("transfer", to, amount)
	require.NoError(t, err)

	event := &alertdomain.EthTxEvent{
		ChainID: "1",
		TxHash:  "0xabc",
		Tx:      alertdomain.EthTx{To: &contract, Input: input},
		Receipt: alertdomain.EthTxReceipt{Status: &status, From: from},
	}

	notification, err := ruleengine.Evaluate(alertdomain.EthMonitorFunds{Address: to.Hex()}, event)
	require.NoError(t, err)
	payload, ok := notification.(alertdomain.MonitorFundsTokenNotification)
	require.True(t, ok)
	require.Equal(t, from.Hex(), payload.From)
	require.Equal(t, to.Hex(), payload.To)
	require.Equal(t, "42", payload.Amount)
	require.Equal(t, contract.Hex(), payload.ContractAddr)
	require.Equal(t, "0xabc", payload.TxHash)
}

// TestFilterEthMonitorFundsRevertedERC20TransferNeverMatches covers the same
// §4.2 guard on the ERC-20 decode path, not just the native-transfer path.
func TestFilterEthMonitorFundsRevertedERC20TransferNeverMatches(t *testing.T) {
	status := uint64(0)
	contract := common.HexToAddress("0x3333333333333333333333333333333333333333")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	input, err := erc20abi.ABI.Pack("transfer", to, big.NewInt(42))
	require.NoError(t, err)

	event := &alertdomain.EthTxEvent{
		ChainID: "1",
		TxHash:  "0xabc",
		Tx:      alertdomain.EthTx{To: &contract, Input: input},
		Receipt: alertdomain.EthTxReceipt{Status: &status, From: common.HexToAddress("0x1111111111111111111111111111111111111111")},
	}

	_, err = ruleengine.Evaluate(alertdomain.EthMonitorFunds{Address: to.Hex()}, event)
	require.ErrorIs(t, err, alerterrors.ErrNoMatch)
}

func TestFilterEthSmartContractEvents(t *testing.T) {
	transferEventABI := `[{"anonymous":false,"inputs":[{"indexed":true,"name":"from","type":"address"},{"indexed":true,"name":"to","type":"address"},{"indexed":false,"name":"value","type":"uint256"}],"name":"Transfer","type":"event"}]`
	contractABI, err := abi.JSON(strings.NewReader(transferEventABI))
	require.NoError(t, err)

	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	value := make([]byte, 32)
	value[31] = 42

	log := &ethtypes.Log{
		Address: common.HexToAddress("0x3333333333333333333333333333333333333333"),
		Topics:  []common.Hash{contractABI.Events["Transfer"].ID, common.BytesToHash(from.Bytes()), common.BytesToHash(to.Bytes())},
		Data:    value,
		TxHash:  common.HexToHash("0xabc"),
	}
	event := &alertdomain.EthLogEvent{ChainID: "1", TxHash: "0xabc", Log: log}

	encodedABI := base64.StdEncoding.EncodeToString([]byte(transferEventABI))
	rule := alertdomain.EthSmartContractEvents{
		ContractAddr: log.Address.Hex(),
		ContractABI:  encodedABI,
		EventName:    "Transfer",
	}

	notification, err := ruleengine.Evaluate(rule, event)
	require.NoError(t, err)
	require.IsType(t, alertdomain.ScEventsNotification{}, notification)
}

func TestFilterArchwayBroadcastAlwaysMatches(t *testing.T) {
	event := &alertdomain.ArchwayBroadcastEvent{ChainID: "archway-1", Message: "hello"}
	notification, err := ruleengine.Evaluate(alertdomain.ArchwayBroadcast{}, event)
	require.NoError(t, err)
	require.Equal(t, alertdomain.ArchwayBroadcastNotification{Message: "hello"}, notification)
}

func TestEvaluateUnknownVariant(t *testing.T) {
	_, err := ruleengine.Evaluate(nil, &alertdomain.ArchwayBroadcastEvent{})
	require.ErrorIs(t, err, alerterrors.ErrUnknownVariant)
}
