package funding

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/compose-network/fundme-deployer/internal/fundme/chain"
	"github.com/compose-network/fundme-deployer/internal/fundme/chain/chaintest"
	"github.com/compose-network/fundme-deployer/internal/fundme/deployer"
	"github.com/compose-network/fundme-deployer/internal/fundme/domain"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	priceFeed  = common.HexToAddress("0x8A753747A1Fa494EC906cE90E9f37563A8AF630e")
	fundAmount = big.NewInt(29_000_000_000_000_000)
)

type fixture struct {
	backend  *chaintest.Chain
	account  chain.Account
	contract *bind.BoundContract
	opts     *bind.TransactOpts
}

func newFixture(t *testing.T, opts ...chaintest.Option) fixture {
	t.Helper()

	backend := chaintest.New(chaintest.FundMeArtifact(t), opts...)
	account, err := chain.ParseAccount(chaintest.DevPrivateKey)
	require.NoError(t, err)

	chainID, err := backend.ChainID(context.Background())
	require.NoError(t, err)

	d := deployer.NewDeployer(backend, account, chainID, chaintest.FundMeArtifact(t), deployer.Config{
		PollInterval:        time.Millisecond,
		ConfirmationTimeout: 5 * time.Second,
	})
	// Manual-mining chains need a block mined under the pending deployment.
	stop, exited := make(chan struct{}), make(chan struct{})
	defer func() {
		close(stop)
		<-exited
	}()
	go func() {
		defer close(exited)
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				backend.Mine()
			}
		}
	}()

	deployment, err := d.Deploy(context.Background(), domain.DeploymentParameters{
		ConstructorArgs:       []any{priceFeed},
		ConfirmationsRequired: 1,
	})
	require.NoError(t, err)

	transactOpts, err := account.Transactor(chainID)
	require.NoError(t, err)

	return fixture{backend: backend, account: account, contract: deployment.Contract, opts: transactOpts}
}

func TestInvokeFundsContract(t *testing.T) {
	f := newFixture(t)
	invoker := NewInvoker(f.backend, time.Millisecond)

	receipt, err := invoker.Invoke(context.Background(), f.contract, fundAmount, f.opts)
	require.NoError(t, err)

	assert.Equal(t, f.account.Address, receipt.From)
	assert.Equal(t, 0, fundAmount.Cmp(receipt.Value))
	assert.Equal(t, f.backend.Head(), receipt.BlockNumber)
	assert.NotZero(t, receipt.GasUsed)

	sent := f.backend.SentTransactions()
	require.Len(t, sent, 2)
	assert.Equal(t, sent[1].Hash(), receipt.TxHash)
	assert.Nil(t, f.opts.Value, "caller options must not be mutated")
}

func TestFunderAtReturnsFirstFunder(t *testing.T) {
	f := newFixture(t)
	invoker := NewInvoker(f.backend, time.Millisecond)

	_, err := invoker.Invoke(context.Background(), f.contract, fundAmount, f.opts)
	require.NoError(t, err)

	funder, err := invoker.FunderAt(context.Background(), f.contract, 1)
	require.NoError(t, err)
	assert.Equal(t, f.account.Address, funder)
}

func TestFunderAtOutOfRangeReverts(t *testing.T) {
	f := newFixture(t)
	invoker := NewInvoker(f.backend, time.Millisecond)

	_, err := invoker.FunderAt(context.Background(), f.contract, 1)
	require.ErrorIs(t, err, ErrCallReverted)
}

func TestInvokeBelowMinimumReverts(t *testing.T) {
	f := newFixture(t, chaintest.WithMinimumValue(big.NewInt(1e18)))
	invoker := NewInvoker(f.backend, time.Millisecond)

	_, err := invoker.Invoke(context.Background(), f.contract, fundAmount, f.opts)
	require.ErrorIs(t, err, ErrCallReverted)
	assert.Len(t, f.backend.SentTransactions(), 1, "reverting call must not be sent")
}

func TestInvokeRevertedReceipt(t *testing.T) {
	f := newFixture(t, chaintest.WithMinimumValue(big.NewInt(1e18)))
	invoker := NewInvoker(f.backend, time.Millisecond)

	opts := *f.opts
	opts.GasLimit = 200_000

	_, err := invoker.Invoke(context.Background(), f.contract, fundAmount, &opts)
	require.ErrorIs(t, err, ErrCallReverted)
	assert.Contains(t, err.Error(), "status 0")
}

func TestInvokeStopsOnCancellation(t *testing.T) {
	f := newFixture(t, chaintest.WithManualMining())
	invoker := NewInvoker(f.backend, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := invoker.Invoke(ctx, f.contract, fundAmount, f.opts)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStepFundsAndReadsBackFunder(t *testing.T) {
	f := newFixture(t)
	step := NewStep(NewInvoker(f.backend, time.Millisecond), fundAmount, 1)

	assert.Equal(t, "fund", step.Name())

	receipt, err := step.Run(context.Background(), f.contract, f.opts)
	require.NoError(t, err)
	assert.Equal(t, 0, fundAmount.Cmp(receipt.Value))
}
