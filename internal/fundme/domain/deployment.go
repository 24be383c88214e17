package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DeploymentParameters is built once per run from the resolved network and is
// not modified afterwards.
type DeploymentParameters struct {
	ConstructorArgs       []any
	ConfirmationsRequired uint64
}

// Args returns a copy of the constructor arguments in submission order.
func (p DeploymentParameters) Args() []any {
	args := make([]any, len(p.ConstructorArgs))
	copy(args, p.ConstructorArgs)
	return args
}

// DeploymentResult only exists once the creation transaction has the
// required number of confirmations.
type DeploymentResult struct {
	ContractAddress  common.Address
	DeploymentTxHash common.Hash
	BlockNumber      uint64
	Confirmations    uint64
	GasUsed          uint64
}

// InvocationReceipt describes a mined state-changing call.
type InvocationReceipt struct {
	TxHash            common.Hash
	BlockNumber       uint64
	From              common.Address
	Value             *big.Int
	GasUsed           uint64
	EffectiveGasPrice *big.Int
}

// VerificationRequest is what a block explorer needs to match source to bytecode.
type VerificationRequest struct {
	ChainID         uint64
	Address         common.Address
	ContractName    string
	CompilerVersion string
	SourceCode      string
	// ConstructorArgs is the ABI encoding of the constructor arguments, hex without 0x.
	ConstructorArgs string
}
