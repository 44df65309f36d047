// Package erc20abi embeds the built-in ERC-20 ABI used to decode
// transfer(address,uint256) calls for EthMonitorFunds (spec §4.2), the same
// way the teacher module embeds precompile ABIs (precompiles/erc20/erc20.go).
package erc20abi

import (
	"embed"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed erc20.json
var abiFS embed.FS

// ABI is the parsed standard ERC-20 ABI, loaded once at package init.
var ABI abi.ABI

func init() {
	f, err := abiFS.Open("erc20.json")
	if err != nil {
		panic(err)
	}
	defer f.Close()

	parsed, err := abi.JSON(f)
	if err != nil {
		panic(err)
	}
	ABI = parsed
}
