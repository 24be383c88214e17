package deployer

import (
	"log/slog"

	"github.com/compose-network/fundme-deployer/internal/fundme/domain"
	"github.com/compose-network/fundme-deployer/internal/fundme/network"
	"github.com/ethereum/go-ethereum/common"
)

// PrepareParameters builds the constructor arguments for a run. Networks
// without an oracle get fallbackPriceFeed, and the substitution is logged
// because it silently points the contract at a hardcoded feed.
func PrepareParameters(desc network.Descriptor, fallbackPriceFeed common.Address, logger *slog.Logger) domain.DeploymentParameters {
	priceFeed := fallbackPriceFeed
	if desc.OracleAddress != nil {
		priceFeed = *desc.OracleAddress
	} else {
		logger.
			With("network", desc.Name).
			With("fallback_price_feed", fallbackPriceFeed.Hex()).
			Warn("network has no price feed configured, using fallback address")
	}

	return domain.DeploymentParameters{
		ConstructorArgs:       []any{priceFeed},
		ConfirmationsRequired: desc.Confirmations,
	}
}
