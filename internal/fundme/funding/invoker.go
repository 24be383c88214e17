package funding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/compose-network/fundme-deployer/internal/fundme/chain"
	"github.com/compose-network/fundme-deployer/internal/fundme/domain"
	"github.com/compose-network/fundme-deployer/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	methodFund              = "fund"
	methodGetSpecificFunder = "getSpecificFunder"
)

var ErrCallReverted = errors.New("contract call reverted")

type (
	receiptBackend interface {
		TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
		BlockNumber(ctx context.Context) (uint64, error)
	}

	// Invoker performs the funding call against a deployed FundMe.
	Invoker struct {
		waiter *chain.Waiter
		logger *slog.Logger
	}
)

func NewInvoker(backend receiptBackend, pollInterval time.Duration) *Invoker {
	return &Invoker{
		waiter: chain.NewWaiter(backend, pollInterval),
		logger: logger.Named("funding_invoker"),
	}
}

// Invoke sends fund() carrying amount wei from opts.From and waits for the
// transaction to be included once. Reverts are returned, never retried.
func (i *Invoker) Invoke(ctx context.Context, contract *bind.BoundContract, amount *big.Int, opts *bind.TransactOpts) (domain.InvocationReceipt, error) {
	callOpts := *opts
	callOpts.Context = ctx
	callOpts.Value = new(big.Int).Set(amount)

	log := i.logger.With("from", opts.From.Hex()).With("value", amount.String())

	tx, err := contract.Transact(&callOpts, methodFund)
	if err != nil {
		if chain.IsRevert(err) {
			return domain.InvocationReceipt{}, fmt.Errorf("%w: %s: %w", ErrCallReverted, methodFund, err)
		}
		return domain.InvocationReceipt{}, fmt.Errorf("failed to send %s: %w", methodFund, err)
	}

	log = log.With("tx_hash", tx.Hash().Hex())
	log.Info("funding transaction sent")

	receipt, err := i.waiter.WaitMined(ctx, tx.Hash())
	if err != nil {
		return domain.InvocationReceipt{}, err
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return domain.InvocationReceipt{}, fmt.Errorf("%w: %s transaction %s mined with status %d", ErrCallReverted, methodFund, tx.Hash().Hex(), receipt.Status)
	}

	log.With("block", receipt.BlockNumber).Info("funding transaction mined")

	return domain.InvocationReceipt{
		TxHash:            tx.Hash(),
		BlockNumber:       receipt.BlockNumber.Uint64(),
		From:              opts.From,
		Value:             tx.Value(),
		GasUsed:           receipt.GasUsed,
		EffectiveGasPrice: receipt.EffectiveGasPrice,
	}, nil
}

// FunderAt reads the funder recorded at index.
func (i *Invoker) FunderAt(ctx context.Context, contract *bind.BoundContract, index int64) (common.Address, error) {
	var out []any
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, methodGetSpecificFunder, big.NewInt(index)); err != nil {
		if chain.IsRevert(err) {
			return common.Address{}, fmt.Errorf("%w: %s(%d): %w", ErrCallReverted, methodGetSpecificFunder, index, err)
		}
		return common.Address{}, fmt.Errorf("failed to call %s(%d): %w", methodGetSpecificFunder, index, err)
	}

	if len(out) != 1 {
		return common.Address{}, fmt.Errorf("%s returned %d values", methodGetSpecificFunder, len(out))
	}

	funder, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s returned %T, expected address", methodGetSpecificFunder, out[0])
	}

	return funder, nil
}
