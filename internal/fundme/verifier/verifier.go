package verifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/compose-network/fundme-deployer/internal/fundme/contracts"
	"github.com/compose-network/fundme-deployer/internal/fundme/domain"
	"github.com/compose-network/fundme-deployer/internal/logger"
	"github.com/ethereum/go-ethereum/common"
)

type Outcome int

const (
	OutcomeVerified Outcome = iota
	OutcomeAlreadyVerified
	OutcomeFailed
	// OutcomeSkipped means nothing was submitted, e.g. on development networks.
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVerified:
		return "verified"
	case OutcomeAlreadyVerified:
		return "already-verified"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Status maps the outcome to its persisted form.
func (o Outcome) Status() domain.VerificationStatus {
	switch o {
	case OutcomeVerified:
		return domain.VerificationStatusVerified
	case OutcomeAlreadyVerified:
		return domain.VerificationStatusAlreadyVerified
	case OutcomeSkipped:
		return domain.VerificationStatusSkipped
	default:
		return domain.VerificationStatusFailed
	}
}

type (
	// Result is informational only; it never gates later steps.
	Result struct {
		Outcome Outcome
		Reason  string
	}

	// SourceVerifier submits sources to a block explorer.
	SourceVerifier interface {
		VerifySource(ctx context.Context, req domain.VerificationRequest) error
	}

	Option func(*Verifier)

	Verifier struct {
		service         SourceVerifier
		artifact        contracts.Artifact
		buildInfo       contracts.BuildInfo
		chainID         uint64
		compilerVersion string
		classify        Classifier
		logger          *slog.Logger
	}
)

// WithClassifier replaces AlreadyVerified.
func WithClassifier(classify Classifier) Option {
	return func(v *Verifier) { v.classify = classify }
}

// WithCompilerVersion sets the version used when the build-info has none.
func WithCompilerVersion(version string) Option {
	return func(v *Verifier) { v.compilerVersion = version }
}

func New(service SourceVerifier, artifact contracts.Artifact, buildInfo contracts.BuildInfo, chainID uint64, opts ...Option) *Verifier {
	v := &Verifier{
		service:   service,
		artifact:  artifact,
		buildInfo: buildInfo,
		chainID:   chainID,
		classify:  AlreadyVerified,
		logger:    logger.Named("verifier"),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Verify submits address together with the exact constructor arguments used
// at deployment. Failures are logged and reported in the result, never
// returned as errors.
func (v *Verifier) Verify(ctx context.Context, address common.Address, constructorArgs []any) Result {
	log := v.logger.With("address", address.Hex())
	log.Info("verifying contract")

	encoded, err := v.artifact.PackConstructorArgs(constructorArgs...)
	if err != nil {
		log.With("err", err.Error()).Error("failed to verify contract")
		return Result{Outcome: OutcomeFailed, Reason: err.Error()}
	}

	req := domain.VerificationRequest{
		ChainID:         v.chainID,
		Address:         address,
		ContractName:    v.artifact.FullyQualifiedName(),
		CompilerVersion: v.buildInfo.CompilerVersion(v.compilerVersion),
		SourceCode:      string(v.buildInfo.Input),
		ConstructorArgs: common.Bytes2Hex(encoded),
	}

	if err := v.service.VerifySource(ctx, req); err != nil {
		if v.classify(err) {
			log.Info("contract already verified")
			return Result{Outcome: OutcomeAlreadyVerified, Reason: err.Error()}
		}

		log.With("err", err.Error()).Error("failed to verify contract")
		return Result{Outcome: OutcomeFailed, Reason: err.Error()}
	}

	log.Info("contract verified")
	return Result{Outcome: OutcomeVerified}
}
