package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/compose-network/fundme-deployer/internal/logger"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type (
	confirmationBackend interface {
		TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
		BlockNumber(ctx context.Context) (uint64, error)
	}

	// Waiter polls a node until transactions are included and buried.
	Waiter struct {
		backend  confirmationBackend
		interval time.Duration
		logger   *slog.Logger
	}
)

func NewWaiter(backend confirmationBackend, interval time.Duration) *Waiter {
	return &Waiter{
		backend:  backend,
		interval: interval,
		logger:   logger.Named("chain_waiter"),
	}
}

// WaitMined blocks until the transaction has a receipt. Transient RPC errors
// are logged and polling continues until ctx is done.
func (w *Waiter) WaitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log := w.logger.With("tx_hash", txHash.Hex())
	for {
		receipt, err := w.backend.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			log.With("err", err.Error()).Warn("failed to fetch receipt, retrying")
		} else {
			log.Debug("transaction not yet mined")
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for transaction %s to be mined: %w", txHash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// Confirmations is the number of blocks from the receipt's block to head,
// both included.
func Confirmations(head, included uint64) uint64 {
	if head < included {
		return 0
	}
	return head - included + 1
}

// WaitConfirmations blocks until the receipt's transaction is buried under
// required confirmations. Inclusion counts as the first confirmation, so
// required values of 0 and 1 return right away. The receipt is re-read once
// the depth is reached to follow a transaction that was re-included in a
// different block.
func (w *Waiter) WaitConfirmations(ctx context.Context, receipt *types.Receipt, required uint64) (*types.Receipt, uint64, error) {
	included := receipt.BlockNumber.Uint64()
	if required <= 1 {
		return receipt, 1, nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log := w.logger.With("tx_hash", receipt.TxHash.Hex()).With("required", required)
	for {
		head, err := w.backend.BlockNumber(ctx)
		if err != nil {
			log.With("err", err.Error()).Warn("failed to fetch block number, retrying")
		} else if confirmations := Confirmations(head, included); confirmations >= required {
			current, err := w.backend.TransactionReceipt(ctx, receipt.TxHash)
			switch {
			case err == nil && current.BlockHash == receipt.BlockHash:
				return current, confirmations, nil
			case err == nil:
				log.With("old_block", included).With("new_block", current.BlockNumber.Uint64()).
					Warn("transaction moved to another block, restarting confirmation count")
				receipt = current
				included = current.BlockNumber.Uint64()
			case errors.Is(err, ethereum.NotFound):
				log.Warn("transaction is no longer in the canonical chain, waiting for re-inclusion")
			default:
				log.With("err", err.Error()).Warn("failed to re-read receipt, retrying")
			}
		} else {
			log.With("confirmations", confirmations).Debug("waiting for confirmations")
		}

		select {
		case <-ctx.Done():
			return nil, 0, fmt.Errorf("waiting for %d confirmations of %s: %w", required, receipt.TxHash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
