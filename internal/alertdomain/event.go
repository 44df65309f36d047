package alertdomain

import (
	"math/big"

	txtypes "github.com/cosmos/cosmos-sdk/types/tx"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	abcitypes "github.com/cosmos/cosmos-sdk/types/abci"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/archway-network/alertrelay/internal/chaindata"
)

// EventContext is the pipeline's dispatch key: which chain, which source
// type, which identifier to page rules and log against (spec §3, "context").
type EventContext struct {
	ID         string
	ChainID    string
	SourceType SourceType
}

// Event is the tagged union of ingested on-chain artifacts
// (ProcessAlertSourceRequest, spec §3).
type Event interface {
	Context() EventContext
}

// CosmosTxEvent carries a full Cosmos transaction and its execution result
// (spec §3, CosmosTx variant).
type CosmosTxEvent struct {
	ChainID   string
	ChainData chaindata.CosmosChainData
	Tx        *txtypes.Tx
	TxResponse *sdk.TxResponse
	TxHash    string
}

func (e *CosmosTxEvent) Context() EventContext {
	return EventContext{ID: e.TxHash, ChainID: e.ChainID, SourceType: SourceCosmosTx}
}

// CosmosMsgEvent carries a single message from within a Cosmos transaction,
// plus the ABCI message log entry produced at that msg index (spec §3,
// CosmosMsg variant).
type CosmosMsgEvent struct {
	ChainID   string
	ChainData chaindata.CosmosChainData
	MsgLog    *abcitypes.ABCIMessageLog
	MsgIndex  uint64
	Msg       *codectypes.Any
	TxHash    string
}

func (e *CosmosMsgEvent) Context() EventContext {
	return EventContext{ID: e.TxHash, ChainID: e.ChainID, SourceType: SourceCosmosMsg}
}

// EthLogEvent carries a single EVM log (spec §3, EthLog variant).
type EthLogEvent struct {
	ChainID   string
	ChainData chaindata.EthChainData
	TxHash    string
	Log       *ethtypes.Log
	LogIndex  uint64
}

func (e *EthLogEvent) Context() EventContext {
	return EventContext{ID: e.TxHash, ChainID: e.ChainID, SourceType: SourceEthLog}
}

// EthTx is the subset of an EVM transaction's fields the filter engine reads
// (spec §4.2 EthMonitorFunds/EthTxOutcome): destination, value, and call data.
type EthTx struct {
	To    *common.Address
	Value *big.Int
	Input []byte
}

// EthTxReceipt is the subset of an EVM receipt's fields the filter engine
// reads. Status is a pointer because "tx_receipt.status must be present" is
// itself part of the match predicate (spec §4.2 EthTxOutcome).
type EthTxReceipt struct {
	Status *uint64
	From   common.Address
	To     *common.Address
}

// EthTxEvent carries an EVM transaction plus its receipt (spec §3, EthTx
// variant).
type EthTxEvent struct {
	ChainID   string
	ChainData chaindata.EthChainData
	TxHash    string
	Tx        EthTx
	Receipt   EthTxReceipt
}

func (e *EthTxEvent) Context() EventContext {
	return EventContext{ID: e.TxHash, ChainID: e.ChainID, SourceType: SourceEthTx}
}

// ArchwayBroadcastEvent carries an arbitrary broadcast message for a chain
// (spec §3, ArchwayBroadcast variant).
type ArchwayBroadcastEvent struct {
	ChainID  string
	Message  string
	ClientID string
}

func (e *ArchwayBroadcastEvent) Context() EventContext {
	return EventContext{ID: "", ChainID: e.ChainID, SourceType: SourceArchwaysBroadcast}
}
