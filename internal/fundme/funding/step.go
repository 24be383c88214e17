package funding

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/compose-network/fundme-deployer/internal/fundme/chain"
	"github.com/compose-network/fundme-deployer/internal/fundme/domain"
	"github.com/compose-network/fundme-deployer/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
)

// Step funds a freshly deployed contract and reads the funder back.
type Step struct {
	invoker     *Invoker
	amount      *big.Int
	funderIndex int64
	logger      *slog.Logger
}

func NewStep(invoker *Invoker, amount *big.Int, funderIndex int64) *Step {
	return &Step{
		invoker:     invoker,
		amount:      new(big.Int).Set(amount),
		funderIndex: funderIndex,
		logger:      logger.Named("funding"),
	}
}

func (s *Step) Name() string {
	return methodFund
}

func (s *Step) Run(ctx context.Context, contract *bind.BoundContract, opts *bind.TransactOpts) (domain.InvocationReceipt, error) {
	receipt, err := s.invoker.Invoke(ctx, contract, s.amount, opts)
	if err != nil {
		return domain.InvocationReceipt{}, err
	}

	s.logger.
		With("amount", chain.FormatEther(receipt.Value)).
		With("tx_hash", receipt.TxHash.Hex()).
		Info("funded contract")

	funder, err := s.invoker.FunderAt(ctx, contract, s.funderIndex)
	if err != nil {
		return receipt, err
	}

	s.logger.
		With("index", s.funderIndex).
		With("funder", funder.Hex()).
		Info("funder recorded")

	return receipt, nil
}
