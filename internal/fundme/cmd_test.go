package fundme

import (
	"testing"

	"github.com/compose-network/fundme-deployer/configs"
	"github.com/compose-network/fundme-deployer/internal/fundme/network"
	"github.com/stretchr/testify/assert"
)

func TestRenderNetworks(t *testing.T) {
	cfg := sepoliaConfig(t)

	rendered := renderNetworks(network.NewRegistry(cfg))

	assert.Contains(t, rendered, "localhost")
	assert.Contains(t, rendered, "ganache")
	assert.Contains(t, rendered, "development")
	assert.Contains(t, rendered, "fallback")
	assert.Contains(t, rendered, sepoliaFeed.Hex())
	assert.Contains(t, rendered, "11155111")
}

func TestRenderNetworksShowsMisconfiguredEntries(t *testing.T) {
	cfg := testConfig(t)
	params := cfg.Registry[configs.NetworkSepolia]
	params.PriceFeedAddress = ""
	cfg.Registry[configs.NetworkSepolia] = params

	rendered := renderNetworks(network.NewRegistry(cfg))

	assert.Contains(t, rendered, "sepolia")
	assert.Contains(t, rendered, "price feed address not configured")
}

func TestPersistentFlagsAreShared(t *testing.T) {
	for _, name := range []string{"network", "artifact-path", "fund", "funder-index", "etherscan-api-key"} {
		assert.NotNil(t, CMD.PersistentFlags().Lookup(name), name)
	}
	assert.NotNil(t, verifyCmd.InheritedFlags().Lookup("network"))
}
