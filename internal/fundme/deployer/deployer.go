package deployer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/compose-network/fundme-deployer/internal/fundme/chain"
	"github.com/compose-network/fundme-deployer/internal/fundme/contracts"
	"github.com/compose-network/fundme-deployer/internal/fundme/domain"
	"github.com/compose-network/fundme-deployer/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	ErrDeploymentReverted  = errors.New("contract deployment reverted")
	ErrConfirmationTimeout = errors.New("timed out waiting for confirmations")
	ErrConstructorArity    = errors.New("constructor argument count mismatch")
)

type (
	Config struct {
		GasLimit            uint64
		PollInterval        time.Duration
		ConfirmationTimeout time.Duration
	}

	// Deployment is a confirmed contract together with a handle bound to the
	// backend it was deployed through.
	Deployment struct {
		Result   domain.DeploymentResult
		Receipt  *types.Receipt
		Contract *bind.BoundContract
	}

	// Deployer creates one contract from an artifact.
	Deployer struct {
		backend  chain.Backend
		account  chain.Account
		chainID  *big.Int
		artifact contracts.Artifact
		waiter   *chain.Waiter
		cfg      Config
		logger   *slog.Logger
	}
)

// NewDeployer creates a new contract deployer
func NewDeployer(backend chain.Backend, account chain.Account, chainID *big.Int, artifact contracts.Artifact, cfg Config) *Deployer {
	return &Deployer{
		backend:  backend,
		account:  account,
		chainID:  chainID,
		artifact: artifact,
		waiter:   chain.NewWaiter(backend, cfg.PollInterval),
		cfg:      cfg,
		logger:   logger.Named("contracts_deployer"),
	}
}

// Deploy submits the creation transaction and returns once it has
// params.ConfirmationsRequired confirmations. The wait is bounded by
// cfg.ConfirmationTimeout on top of ctx.
func (d *Deployer) Deploy(ctx context.Context, params domain.DeploymentParameters) (*Deployment, error) {
	args := params.Args()
	if arity := d.artifact.ConstructorArity(); len(args) != arity {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrConstructorArity, d.artifact.Name, arity, len(args))
	}

	auth, err := d.account.Transactor(d.chainID)
	if err != nil {
		return nil, err
	}

	gasPrice, err := d.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	auth.Context = ctx
	auth.GasLimit = d.cfg.GasLimit
	auth.GasPrice = gasPrice

	d.logger.
		With("contract", d.artifact.Name).
		With("deployer", d.account.Address.Hex()).
		With("constructor_args", args).
		Info("deploying contract")

	address, tx, contract, err := bind.DeployContract(auth, d.artifact.ABI, d.artifact.Bytecode, d.backend, args...)
	if err != nil {
		if chain.IsRevert(err) {
			return nil, fmt.Errorf("%w: %w", ErrDeploymentReverted, err)
		}
		return nil, fmt.Errorf("failed to deploy contract: %w", err)
	}

	log := d.logger.With("address", address.Hex()).With("tx_hash", tx.Hash().Hex())
	log.Info("contract deployment transaction sent")

	waitCtx, cancel := context.WithTimeout(ctx, d.cfg.ConfirmationTimeout)
	defer cancel()

	receipt, err := d.waiter.WaitMined(waitCtx, tx.Hash())
	if err != nil {
		return nil, waitError(err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: transaction %s mined with status %d", ErrDeploymentReverted, tx.Hash().Hex(), receipt.Status)
	}

	log.With("block", receipt.BlockNumber).
		With("confirmations_required", params.ConfirmationsRequired).
		Info("deployment mined, waiting for confirmations")

	receipt, confirmations, err := d.waiter.WaitConfirmations(waitCtx, receipt, params.ConfirmationsRequired)
	if err != nil {
		return nil, waitError(err)
	}

	code, err := d.backend.CodeAt(ctx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read code at %s: %w", address.Hex(), err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: no code at %s", ErrDeploymentReverted, address.Hex())
	}

	log.With("confirmations", confirmations).Info("contract deployed")

	return &Deployment{
		Result: domain.DeploymentResult{
			ContractAddress:  address,
			DeploymentTxHash: tx.Hash(),
			BlockNumber:      receipt.BlockNumber.Uint64(),
			Confirmations:    confirmations,
			GasUsed:          receipt.GasUsed,
		},
		Receipt:  receipt,
		Contract: contract,
	}, nil
}

func waitError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrConfirmationTimeout, err)
	}
	return err
}
