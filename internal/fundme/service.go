package fundme

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/compose-network/fundme-deployer/configs"
	"github.com/compose-network/fundme-deployer/internal/fundme/chain"
	"github.com/compose-network/fundme-deployer/internal/fundme/contracts"
	"github.com/compose-network/fundme-deployer/internal/fundme/deployer"
	"github.com/compose-network/fundme-deployer/internal/fundme/domain"
	"github.com/compose-network/fundme-deployer/internal/fundme/explorer/etherscan"
	"github.com/compose-network/fundme-deployer/internal/fundme/funding"
	"github.com/compose-network/fundme-deployer/internal/fundme/gasreport"
	"github.com/compose-network/fundme-deployer/internal/fundme/infra/filesystem"
	"github.com/compose-network/fundme-deployer/internal/fundme/network"
	"github.com/compose-network/fundme-deployer/internal/fundme/verifier"
	"github.com/compose-network/fundme-deployer/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

var ErrNothingToVerify = errors.New("nothing to verify")

type (
	// Dialer opens a backend for an RPC url.
	Dialer func(ctx context.Context, url string) (chain.Backend, error)

	// PostDeployStep runs against the confirmed contract once verification is
	// done.
	PostDeployStep interface {
		Name() string
		Run(ctx context.Context, contract *bind.BoundContract, opts *bind.TransactOpts) (domain.InvocationReceipt, error)
	}

	recordStore interface {
		Save(record domain.DeploymentRecord) error
		Load(network string) (domain.DeploymentRecord, error)
	}

	// Summary is what one run produced.
	Summary struct {
		Network      network.Descriptor
		Record       domain.DeploymentRecord
		Verification verifier.Result
		Receipts     []domain.InvocationReceipt
	}

	Service struct {
		cfg      configs.Config
		registry *network.Registry
		dial     Dialer
		store    recordStore
		explorer verifier.SourceVerifier
		writer   filesystem.Writer
		now      func() time.Time
		logger   *slog.Logger
	}
)

// NewService creates the deploy, verify and fund orchestration.
func NewService(
	cfg configs.Config,
	registry *network.Registry,
	dial Dialer,
	store recordStore,
	explorer verifier.SourceVerifier,
	writer filesystem.Writer) *Service {
	return &Service{
		cfg:      cfg,
		registry: registry,
		dial:     dial,
		store:    store,
		explorer: explorer,
		writer:   writer,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.Named("fundme_service"),
	}
}

// Run deploys the contract on the configured network, verifies it on public
// networks and runs the post-deploy steps.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	runID := uuid.NewString()
	log := s.logger.With("run_id", runID).With("network", s.cfg.Network)

	desc, err := s.registry.Resolve(s.cfg.Network)
	if err != nil {
		log.With("err", err.Error()).Error("failed to resolve network")
		return Summary{}, err
	}

	if err := s.cfg.Validate(); err != nil {
		return Summary{}, err
	}

	endpoint, ok := s.cfg.Networks[desc.Name]
	if !ok {
		return Summary{}, fmt.Errorf("no endpoint configured for network '%s'", desc.Name)
	}

	log.With("development", desc.IsDevelopment).With("chain_id", desc.ChainID).Info("network resolved")

	artifact, err := contracts.LoadArtifact(s.cfg.Deploy.ArtifactPath)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load contract artifact: %w", err)
	}
	if name := s.cfg.Deploy.ContractName; name != "" && name != artifact.Name {
		return Summary{}, fmt.Errorf("artifact '%s' contains %s, expected %s", s.cfg.Deploy.ArtifactPath, artifact.Name, name)
	}

	account, err := chain.ParseAccount(endpoint.PrivateKey)
	if err != nil {
		return Summary{}, fmt.Errorf("invalid deployer key for network '%s': %w", desc.Name, err)
	}

	backend, err := s.dial(ctx, endpoint.URL)
	if err != nil {
		return Summary{}, err
	}
	defer backend.Close()

	chainID, err := chain.EnsureChainID(ctx, backend, desc.ChainID)
	if err != nil {
		return Summary{}, err
	}

	s.logDeployer(ctx, log, backend, account)

	params := deployer.PrepareParameters(desc, s.cfg.Deploy.FallbackPriceFeed(), log)

	d := deployer.NewDeployer(backend, account, chainID, artifact, deployer.Config{
		GasLimit:            s.cfg.Deploy.GasLimit,
		PollInterval:        s.cfg.Deploy.PollInterval,
		ConfirmationTimeout: s.cfg.Deploy.ConfirmationTimeout,
	})

	deployment, err := d.Deploy(ctx, params)
	if err != nil {
		log.With("err", err.Error()).With("deployer", account.Address.Hex()).Error("failed to deploy contract")
		return Summary{}, fmt.Errorf("deployment on '%s' failed: %w", desc.Name, err)
	}

	address := deployment.Result.ContractAddress
	log.With("address", address.Hex()).
		With("tx_hash", deployment.Result.DeploymentTxHash.Hex()).
		With("confirmations", deployment.Result.Confirmations).
		Info("contract deployed")

	record, err := newRecord(runID, desc, chainID.Uint64(), account.Address, artifact, params, deployment.Result, s.now())
	if err != nil {
		return Summary{}, err
	}
	s.saveRecord(log, record)

	summary := Summary{Network: desc, Record: record}

	report := gasreport.New(gasreport.Options{
		Network:  string(desc.Name),
		Contract: artifact.Name,
		NoColors: s.cfg.GasReporter.NoColors,
	})
	report.Add(gasreport.Entry{
		Operation: "deploy",
		TxHash:    deployment.Result.DeploymentTxHash,
		GasUsed:   deployment.Result.GasUsed,
		GasPrice:  deployment.Receipt.EffectiveGasPrice,
	})

	summary.Verification, summary.Record = s.verify(ctx, desc, artifact, record, params.Args())

	transactOpts, err := account.Transactor(chainID)
	if err != nil {
		return summary, err
	}

	for _, step := range s.postDeploySteps(backend) {
		receipt, err := step.Run(ctx, deployment.Contract, transactOpts)
		if err != nil {
			log.With("err", err.Error()).With("step", step.Name()).With("address", address.Hex()).Error("post-deploy step failed")
			return summary, fmt.Errorf("post-deploy step '%s' failed: %w", step.Name(), err)
		}
		summary.Receipts = append(summary.Receipts, receipt)
		report.Add(gasreport.Entry{
			Operation: step.Name(),
			TxHash:    receipt.TxHash,
			GasUsed:   receipt.GasUsed,
			GasPrice:  receipt.EffectiveGasPrice,
		})
	}

	s.writeGasReport(log, report)

	log.With("address", address.Hex()).Info("run completed")

	return summary, nil
}

// ResumeVerification verifies the contract from the persisted record of the
// configured network without touching the chain.
func (s *Service) ResumeVerification(ctx context.Context) (verifier.Result, error) {
	desc, err := s.registry.Resolve(s.cfg.Network)
	if err != nil {
		return verifier.Result{}, err
	}
	if desc.IsDevelopment {
		return verifier.Result{}, fmt.Errorf("%w: '%s' is a development network", ErrNothingToVerify, desc.Name)
	}

	record, err := s.store.Load(string(desc.Name))
	if err != nil {
		return verifier.Result{}, err
	}
	if !common.IsHexAddress(record.ContractAddress) {
		return verifier.Result{}, fmt.Errorf("%w: record of '%s' has no contract address", ErrNothingToVerify, desc.Name)
	}

	artifact, err := contracts.LoadArtifact(s.cfg.Deploy.ArtifactPath)
	if err != nil {
		return verifier.Result{}, fmt.Errorf("failed to load contract artifact: %w", err)
	}

	args, err := artifact.UnpackConstructorArgs(common.FromHex(record.EncodedArgs))
	if err != nil {
		return verifier.Result{}, fmt.Errorf("failed to decode recorded constructor arguments: %w", err)
	}

	s.logger.With("network", desc.Name).With("address", record.ContractAddress).With("run_id", record.RunID).
		Info("resuming verification")

	result, _ := s.verify(ctx, desc, artifact, record, args)
	return result, nil
}

func (s *Service) verify(ctx context.Context, desc network.Descriptor, artifact contracts.Artifact, record domain.DeploymentRecord, args []any) (verifier.Result, domain.DeploymentRecord) {
	log := s.logger.With("network", desc.Name).With("address", record.ContractAddress)

	if desc.IsDevelopment {
		log.Info("development network, skipping verification")
		return verifier.Result{Outcome: verifier.OutcomeSkipped, Reason: "development network"}, record
	}

	if s.cfg.Etherscan.APIKey == "" {
		log.Warn("etherscan api key not configured, skipping verification")
		record.Verification = domain.VerificationInfo{
			Status:    domain.VerificationStatusSkipped,
			Reason:    etherscan.ErrMissingAPIKey.Error(),
			UpdatedAt: s.now(),
		}
		s.saveRecord(log, record)
		return verifier.Result{Outcome: verifier.OutcomeSkipped, Reason: etherscan.ErrMissingAPIKey.Error()}, record
	}

	address := common.HexToAddress(record.ContractAddress)

	var result verifier.Result
	buildInfo, err := contracts.LoadBuildInfo(s.cfg.Deploy.ArtifactPath)
	if err != nil {
		log.With("err", err.Error()).Error("failed to verify contract")
		result = verifier.Result{Outcome: verifier.OutcomeFailed, Reason: err.Error()}
	} else {
		v := verifier.New(s.explorer, artifact, buildInfo, record.ChainID, verifier.WithCompilerVersion(s.cfg.Solidity.Version))
		result = v.Verify(ctx, address, args)
	}

	record.Verification = domain.VerificationInfo{
		Status:    result.Outcome.Status(),
		Reason:    result.Reason,
		UpdatedAt: s.now(),
	}
	if result.Outcome == verifier.OutcomeVerified || result.Outcome == verifier.OutcomeAlreadyVerified {
		record.Verification.URL = etherscan.AddressURL(desc.ExplorerURL, address)
	}
	s.saveRecord(log, record)

	log.With("outcome", result.Outcome.String()).Info("verification finished")

	return result, record
}

func (s *Service) postDeploySteps(backend chain.Backend) []PostDeployStep {
	var steps []PostDeployStep

	if s.cfg.Fund.Enabled {
		// Amount was checked by Validate.
		amount, _ := s.cfg.Fund.Amount()
		invoker := funding.NewInvoker(backend, s.cfg.Deploy.PollInterval)
		steps = append(steps, funding.NewStep(invoker, amount, int64(s.cfg.Fund.FunderIndex)))
	}

	return steps
}

func (s *Service) logDeployer(ctx context.Context, log *slog.Logger, backend chain.Backend, account chain.Account) {
	balance, err := backend.BalanceAt(ctx, account.Address, nil)
	if err != nil {
		log.With("err", err.Error()).Warn("failed to get deployer balance")
	}

	log.With("deployer", account.Address.Hex()).With("balance", chain.FormatEther(balance)).Info("deployer account")
}

// saveRecord never fails the run: the contract is already on chain.
func (s *Service) saveRecord(log *slog.Logger, record domain.DeploymentRecord) {
	if err := s.store.Save(record); err != nil {
		log.With("err", err.Error()).Error("failed to persist deployment record")
	}
}

func (s *Service) writeGasReport(log *slog.Logger, report *gasreport.Report) {
	if !s.cfg.GasReporter.Enabled {
		return
	}

	if err := report.WriteTo(s.writer, s.cfg.GasReporter.OutputFile); err != nil {
		log.With("err", err.Error()).Warn("failed to write gas report")
		return
	}

	log.With("path", s.cfg.GasReporter.OutputFile).With("total_gas", report.TotalGas()).Info("gas report written")
}

func newRecord(
	runID string,
	desc network.Descriptor,
	chainID uint64,
	deployerAddress common.Address,
	artifact contracts.Artifact,
	params domain.DeploymentParameters,
	result domain.DeploymentResult,
	deployedAt time.Time) (domain.DeploymentRecord, error) {
	args := params.Args()
	encoded, err := artifact.PackConstructorArgs(args...)
	if err != nil {
		return domain.DeploymentRecord{}, fmt.Errorf("failed to encode constructor arguments: %w", err)
	}

	status := domain.VerificationStatusUnverified
	if desc.IsDevelopment {
		status = domain.VerificationStatusSkipped
	}

	return domain.DeploymentRecord{
		RunID:           runID,
		Network:         string(desc.Name),
		ChainID:         chainID,
		ContractName:    artifact.Name,
		Deployer:        deployerAddress.Hex(),
		ContractAddress: result.ContractAddress.Hex(),
		TxHash:          result.DeploymentTxHash.Hex(),
		BlockNumber:     result.BlockNumber,
		Confirmations:   result.Confirmations,
		ConstructorArgs: formatArgs(args),
		EncodedArgs:     common.Bytes2Hex(encoded),
		Verification:    domain.VerificationInfo{Status: status, UpdatedAt: deployedAt},
		DeployedAt:      deployedAt,
	}, nil
}

func formatArgs(args []any) []string {
	formatted := make([]string, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case common.Address:
			formatted[i] = v.Hex()
		case fmt.Stringer:
			formatted[i] = v.String()
		default:
			formatted[i] = fmt.Sprint(v)
		}
	}
	return formatted
}
