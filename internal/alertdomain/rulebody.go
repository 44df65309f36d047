package alertdomain

// RuleBody is the tagged rule-body payload (spec §3). Concrete variants
// implement SourceType so the Rule Codec's classification (spec §4.6) is a
// total function of the Go type, not a separately maintained table.
type RuleBody interface {
	SourceType() SourceType
}

// CosmosOutcome names the two tx/receipt outcomes a TxOutcome rule can watch
// for (spec §3, CosmosTxOutcome / EthTxOutcome).
type CosmosOutcome int32

const (
	OutcomeSucceeded CosmosOutcome = iota
	OutcomeFailed
)

func (o CosmosOutcome) String() string {
	if o == OutcomeFailed {
		return "FAILED"
	}
	return "SUCCEEDED"
}

// CosmosSendFunds matches a bank send or CW20 transfer with exact addresses;
// empty string is a wildcard for that side (spec §3).
type CosmosSendFunds struct {
	From string
	To   string
}

func (CosmosSendFunds) SourceType() SourceType { return SourceCosmosMsg }

// CosmosMonitorFunds matches a bank send or CW20 transfer where Address is
// sender or recipient; empty Address is a full wildcard (spec §3).
type CosmosMonitorFunds struct {
	Address string
}

func (CosmosMonitorFunds) SourceType() SourceType { return SourceCosmosMsg }

// CosmosSmartContractEvents matches a CosmWasm execution emitting an event of
// EventName with an attribute superset of EventAttributes (spec §3).
type CosmosSmartContractEvents struct {
	Address         string
	EventName       string
	EventAttributes map[string]string
}

func (CosmosSmartContractEvents) SourceType() SourceType { return SourceCosmosMsg }

// CosmosTxOutcome matches a transaction's outcome, optionally restricted to a
// specific signer (spec §3, §4.2).
type CosmosTxOutcome struct {
	Signer  string
	Outcome CosmosOutcome
}

func (CosmosTxOutcome) SourceType() SourceType { return SourceCosmosTx }

// EthSmartContractEvents ABI-decodes a log and matches an attribute superset
// (spec §3). ContractABI is the base64-encoded ABI JSON the rule was
// registered with.
type EthSmartContractEvents struct {
	ContractAddr    string
	ContractABI     string
	EventName       string
	EventAttributes map[string]string
}

func (EthSmartContractEvents) SourceType() SourceType { return SourceEthLog }

// EthMonitorFunds matches a native transfer or ERC-20 transfer(address,uint256)
// where Address is sender or recipient (spec §3).
type EthMonitorFunds struct {
	Address string
}

func (EthMonitorFunds) SourceType() SourceType { return SourceEthTx }

// EthTxOutcome matches a receipt's status, optionally restricted to a signer
// (spec §3).
type EthTxOutcome struct {
	Signer  string
	Outcome CosmosOutcome
}

func (EthTxOutcome) SourceType() SourceType { return SourceEthTx }

// ArchwayBroadcast matches any broadcast message for its chain (spec §3).
type ArchwayBroadcast struct{}

func (ArchwayBroadcast) SourceType() SourceType { return SourceArchwaysBroadcast }
