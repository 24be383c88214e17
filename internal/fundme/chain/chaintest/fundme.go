package chaintest

import (
	"testing"

	"github.com/compose-network/fundme-deployer/internal/fundme/contracts"
	"github.com/stretchr/testify/require"
)

// FundMeArtifactJSON is a Hardhat artifact carrying the FundMe ABI. The
// bytecode is a stub: Chain never executes it.
const FundMeArtifactJSON = `{
  "_format": "hh-sol-artifact-1",
  "contractName": "FundMe",
  "sourceName": "contracts/FundMe.sol",
  "abi": [
    {"inputs": [{"internalType": "address", "name": "priceFeed", "type": "address"}], "stateMutability": "nonpayable", "type": "constructor"},
    {"inputs": [], "name": "FundMe__NotOwner", "type": "error"},
    {"inputs": [], "name": "MINIMUM_USD", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
    {"inputs": [], "name": "fund", "outputs": [], "stateMutability": "payable", "type": "function"},
    {"inputs": [], "name": "withdraw", "outputs": [], "stateMutability": "nonpayable", "type": "function"},
    {"inputs": [{"internalType": "address", "name": "funder", "type": "address"}], "name": "getAddressToAmountFunded", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
    {"inputs": [{"internalType": "uint256", "name": "index", "type": "uint256"}], "name": "getSpecificFunder", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
    {"inputs": [], "name": "getOwner", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
    {"inputs": [], "name": "getPriceFeed", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
  ],
  "bytecode": "0x6080604052348015600f57600080fd5b50",
  "deployedBytecode": "0x6080604052600080fd",
  "linkReferences": {},
  "deployedLinkReferences": {}
}`

// FundMeArtifact parses FundMeArtifactJSON.
func FundMeArtifact(t testing.TB) contracts.Artifact {
	t.Helper()

	artifact, err := contracts.ParseArtifact([]byte(FundMeArtifactJSON))
	require.NoError(t, err)

	return artifact
}
