package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Backend is the subset of a JSON-RPC node the deployment flow talks to.
// *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	Close()
}

var _ Backend = (*ethclient.Client)(nil)

const (
	rpcReadyAttempts = 120
	rpcReadyInterval = time.Second
)

// Dial connects to url and waits until the node answers eth_blockNumber.
func Dial(ctx context.Context, url string, logger *slog.Logger) (*ethclient.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("rpc url is empty")
	}

	logger.With("url", url).Info("dialing the RPC")
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	if err := waitForRPC(ctx, client, url); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

func waitForRPC(ctx context.Context, client *ethclient.Client, url string) error {
	ticker := time.NewTicker(rpcReadyInterval)
	defer ticker.Stop()

	for i := 0; i < rpcReadyAttempts; i++ {
		if _, err := client.BlockNumber(ctx); err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for RPC at %s: %w", url, ctx.Err())
		case <-ticker.C:
		}
	}

	return fmt.Errorf("timed out waiting for RPC at %s", url)
}

// EnsureChainID fails when the node is not on the expected chain. A zero
// expectation skips the check.
func EnsureChainID(ctx context.Context, backend Backend, expected uint64) (*big.Int, error) {
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	if expected != 0 && chainID.Uint64() != expected {
		return nil, fmt.Errorf("chain ID mismatch: node reports %s, network expects %d", chainID, expected)
	}

	return chainID, nil
}
