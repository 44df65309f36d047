// Package chaindata holds the small, chain-specific context values that ride
// along with every ingested event: the bech32 prefix a Cosmos zone signs
// addresses with, and nothing EVM-specific needs beyond the chain id itself.
package chaindata

// CosmosChainData carries the per-chain parameters the filter engine needs to
// interpret a Cosmos event, namely the bech32 human-readable prefix used to
// render signer account ids (spec §4.2, CosmosTxOutcome).
type CosmosChainData struct {
	Bech32Prefix string
}

// EthChainData is currently just a placeholder for EVM chain parameters; the
// filter engine needs no chain-specific data beyond addresses and ABI, but the
// event envelope carries it for parity with the Cosmos side and for future
// per-chain EVM quirks (e.g. legacy vs. EIP-1559 receipts).
type EthChainData struct {
	ChainID uint64
}
