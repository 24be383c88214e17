// Package chaintest provides an in-memory chain for exercising the
// deployment flow. It signs nothing and executes no bytecode: contract
// creation and FundMe calls are simulated from the artifact ABI.
package chaintest

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/compose-network/fundme-deployer/internal/fundme/contracts"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// DevPrivateKey is the first account of the Hardhat/Anvil dev mnemonic.
const DevPrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var (
	errReverted = errors.New("execution reverted")

	defaultGasPrice = big.NewInt(1_000_000_000)
	defaultBalance  = new(big.Int).Mul(big.NewInt(10_000), big.NewInt(1e18))
)

type (
	fundMe struct {
		owner           common.Address
		constructorArgs []any
		funders         []common.Address
		funded          map[common.Address]*big.Int
		balance         *big.Int
	}

	Option func(*Chain)

	// Chain mines one block per accepted transaction unless manual mining is
	// enabled. Methods are safe for concurrent use.
	Chain struct {
		mu sync.Mutex

		chainID  *big.Int
		signer   types.Signer
		artifact contracts.Artifact

		head      uint64
		nonces    map[common.Address]uint64
		receipts  map[common.Hash]*types.Receipt
		pending   []*types.Receipt
		contracts map[common.Address]*fundMe
		sent      []*types.Transaction

		minimumValue   *big.Int
		manualMining   bool
		advanceOnPoll  bool
		dropAll        bool
		revertDeploys  bool
		receiptErrors  int
		blockNumberErr error
	}
)

// WithChainID overrides the default 31337.
func WithChainID(id uint64) Option {
	return func(c *Chain) {
		c.chainID = new(big.Int).SetUint64(id)
		c.signer = types.LatestSignerForChainID(c.chainID)
	}
}

// WithMinimumValue makes fund() revert below the given wei amount.
func WithMinimumValue(wei *big.Int) Option {
	return func(c *Chain) { c.minimumValue = wei }
}

// WithManualMining keeps sent transactions pending until Mine is called.
func WithManualMining() Option {
	return func(c *Chain) { c.manualMining = true }
}

// WithAdvanceOnPoll mines an empty block every time BlockNumber is called,
// so the head moves one block per poll.
func WithAdvanceOnPoll() Option {
	return func(c *Chain) { c.advanceOnPoll = true }
}

// WithDroppedTransactions accepts transactions but never includes them.
func WithDroppedTransactions() Option {
	return func(c *Chain) { c.dropAll = true }
}

// WithRevertingDeployments mines contract creations with a failed status.
func WithRevertingDeployments() Option {
	return func(c *Chain) { c.revertDeploys = true }
}

// WithFlakyReceipts fails the first n receipt lookups with a transport error.
func WithFlakyReceipts(n int) Option {
	return func(c *Chain) { c.receiptErrors = n }
}

func New(artifact contracts.Artifact, opts ...Option) *Chain {
	c := &Chain{
		artifact:     artifact,
		head:         1,
		nonces:       make(map[common.Address]uint64),
		receipts:     make(map[common.Hash]*types.Receipt),
		contracts:    make(map[common.Address]*fundMe),
		minimumValue: big.NewInt(0),
	}
	WithChainID(31337)(c)

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Head returns the current block number without advancing the chain.
func (c *Chain) Head() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.head
}

// AdvanceBlocks mines n empty blocks.
func (c *Chain) AdvanceBlocks(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.head += n
}

// Mine includes every pending transaction in a new block.
func (c *Chain) Mine() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mineLocked(c.pending...)
	c.pending = nil
}

// SentTransactions returns every transaction accepted so far.
func (c *Chain) SentTransactions() []*types.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*types.Transaction(nil), c.sent...)
}

// ConstructorArgs returns the decoded constructor arguments of a deployed contract.
func (c *Chain) ConstructorArgs(address common.Address) ([]any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	contract, ok := c.contracts[address]
	if !ok {
		return nil, false
	}
	return contract.constructorArgs, true
}

// SetBlockNumberError makes BlockNumber fail with err until reset with nil.
func (c *Chain) SetBlockNumberError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blockNumberErr = err
}

func (c *Chain) ChainID(context.Context) (*big.Int, error) {
	return new(big.Int).Set(c.chainID), nil
}

func (c *Chain) BlockNumber(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.blockNumberErr != nil {
		return 0, c.blockNumberErr
	}
	if c.advanceOnPoll {
		c.head++
	}
	return c.head, nil
}

func (c *Chain) BalanceAt(_ context.Context, account common.Address, _ *big.Int) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if contract, ok := c.contracts[account]; ok {
		return new(big.Int).Set(contract.balance), nil
	}
	return new(big.Int).Set(defaultBalance), nil
}

func (c *Chain) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &types.Header{Number: new(big.Int).SetUint64(c.head)}, nil
}

func (c *Chain) CodeAt(_ context.Context, account common.Address, _ *big.Int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.contracts[account]; ok {
		return common.CopyBytes(c.artifact.DeployedBytecode), nil
	}
	return nil, nil
}

func (c *Chain) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return c.CodeAt(ctx, account, nil)
}

func (c *Chain) PendingNonceAt(_ context.Context, account common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nonces[account], nil
}

func (c *Chain) SuggestGasPrice(context.Context) (*big.Int, error) {
	return new(big.Int).Set(defaultGasPrice), nil
}

func (c *Chain) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return new(big.Int).Set(defaultGasPrice), nil
}

func (c *Chain) EstimateGas(_ context.Context, call ethereum.CallMsg) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if call.To == nil {
		if c.revertDeploys {
			return 0, errReverted
		}
		return 1_000_000, nil
	}

	method, _, err := c.decodeCall(call.Data)
	if err != nil {
		return 0, err
	}
	if method.Name == "fund" && valueOf(call.Value).Cmp(c.minimumValue) < 0 {
		return 0, fmt.Errorf("%w: You need to spend more ETH!", errReverted)
	}
	return 100_000, nil
}

func (c *Chain) SendTransaction(_ context.Context, tx *types.Transaction) error {
	from, err := types.Sender(c.signer, tx)
	if err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if expected := c.nonces[from]; tx.Nonce() != expected {
		return fmt.Errorf("nonce mismatch: expected %d, got %d", expected, tx.Nonce())
	}
	c.nonces[from]++
	c.sent = append(c.sent, tx)

	receipt := &types.Receipt{
		Type:              tx.Type(),
		Status:            types.ReceiptStatusSuccessful,
		TxHash:            tx.Hash(),
		GasUsed:           min(tx.Gas(), 90_000),
		EffectiveGasPrice: tx.GasPrice(),
	}

	if tx.To() == nil {
		c.create(from, tx, receipt)
	} else {
		c.call(from, tx, receipt)
	}

	if c.dropAll {
		return nil
	}
	if c.manualMining {
		c.pending = append(c.pending, receipt)
		return nil
	}

	c.mineLocked(receipt)
	return nil
}

func (c *Chain) TransactionReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.receiptErrors > 0 {
		c.receiptErrors--
		return nil, errors.New("connection reset by peer")
	}

	receipt, ok := c.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	copied := *receipt
	return &copied, nil
}

func (c *Chain) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if call.To == nil {
		return nil, errors.New("call without target")
	}
	contract, ok := c.contracts[*call.To]
	if !ok {
		return nil, nil
	}

	method, args, err := c.decodeCall(call.Data)
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "getSpecificFunder":
		index := args[0].(*big.Int)
		// Funder ids start at 1.
		if index.Sign() <= 0 || index.Cmp(big.NewInt(int64(len(contract.funders)))) > 0 {
			return nil, errReverted
		}
		return method.Outputs.Pack(contract.funders[index.Int64()-1])
	case "getAddressToAmountFunded":
		amount, ok := contract.funded[args[0].(common.Address)]
		if !ok {
			amount = new(big.Int)
		}
		return method.Outputs.Pack(amount)
	case "getOwner":
		return method.Outputs.Pack(contract.owner)
	case "getPriceFeed":
		return method.Outputs.Pack(contract.constructorArgs[0])
	case "MINIMUM_USD":
		return method.Outputs.Pack(new(big.Int).Mul(big.NewInt(50), big.NewInt(1e18)))
	default:
		return nil, fmt.Errorf("%w: %s is not a view", errReverted, method.Name)
	}
}

func (c *Chain) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (c *Chain) SubscribeFilterLogs(context.Context, ethereum.FilterQuery, chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errors.New("subscriptions are not supported")
}

func (c *Chain) Close() {}

func (c *Chain) create(from common.Address, tx *types.Transaction, receipt *types.Receipt) {
	if c.revertDeploys {
		receipt.Status = types.ReceiptStatusFailed
		return
	}

	data := tx.Data()
	bytecode := c.artifact.Bytecode
	if len(data) < len(bytecode) {
		receipt.Status = types.ReceiptStatusFailed
		return
	}

	args, err := c.artifact.ABI.Constructor.Inputs.Unpack(data[len(bytecode):])
	if err != nil {
		receipt.Status = types.ReceiptStatusFailed
		return
	}

	address := crypto.CreateAddress(from, tx.Nonce())
	c.contracts[address] = &fundMe{
		owner:           from,
		constructorArgs: args,
		funded:          make(map[common.Address]*big.Int),
		balance:         valueOf(tx.Value()),
	}
	receipt.ContractAddress = address
}

func (c *Chain) call(from common.Address, tx *types.Transaction, receipt *types.Receipt) {
	contract, ok := c.contracts[*tx.To()]
	if !ok {
		return
	}

	method, _, err := c.decodeCall(tx.Data())
	if err != nil {
		receipt.Status = types.ReceiptStatusFailed
		return
	}

	value := valueOf(tx.Value())
	switch method.Name {
	case "fund":
		if value.Cmp(c.minimumValue) < 0 {
			receipt.Status = types.ReceiptStatusFailed
			return
		}
		contract.funders = append(contract.funders, from)
		previous, ok := contract.funded[from]
		if !ok {
			previous = new(big.Int)
		}
		contract.funded[from] = new(big.Int).Add(previous, value)
		contract.balance = new(big.Int).Add(contract.balance, value)
	case "withdraw":
		if from != contract.owner {
			receipt.Status = types.ReceiptStatusFailed
			return
		}
		contract.funders = nil
		contract.funded = make(map[common.Address]*big.Int)
		contract.balance = new(big.Int)
	default:
		receipt.Status = types.ReceiptStatusFailed
	}
}

func (c *Chain) decodeCall(data []byte) (*abi.Method, []any, error) {
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("%w: missing selector", errReverted)
	}

	method, err := c.artifact.ABI.MethodById(data[:4])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errReverted, err)
	}

	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errReverted, err)
	}

	return method, args, nil
}

func (c *Chain) mineLocked(receipts ...*types.Receipt) {
	c.head++
	hash := blockHash(c.head)
	for i, receipt := range receipts {
		receipt.BlockNumber = new(big.Int).SetUint64(c.head)
		receipt.BlockHash = hash
		receipt.TransactionIndex = uint(i)
		c.receipts[receipt.TxHash] = receipt
	}
}

func blockHash(number uint64) common.Hash {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], number)
	return sha256.Sum256(buf[:])
}

func valueOf(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
