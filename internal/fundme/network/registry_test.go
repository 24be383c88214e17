package network

import (
	"testing"

	"github.com/compose-network/fundme-deployer/configs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sepoliaFeed = "0x694AA1769357215DE4FAC081bf1f309aDC325306"

func testConfig() configs.Config {
	return configs.Config{
		DevelopmentChains: []configs.NetworkName{configs.NetworkLocalhost, configs.NetworkHardhat, configs.NetworkGanache},
		Networks: map[configs.NetworkName]configs.Endpoint{
			configs.NetworkLocalhost: {URL: "http://127.0.0.1:8545", ChainID: 31337},
			configs.NetworkGanache:   {URL: "http://127.0.0.1:7545", ChainID: 1337},
		},
		Registry: map[configs.NetworkName]configs.NetworkParameters{
			configs.NetworkSepolia: {Name: "Sepolia", ChainID: 11155111, PriceFeedAddress: sepoliaFeed, ExplorerURL: "https://sepolia.etherscan.io"},
			"holesky":              {ChainID: 17000, PriceFeedAddress: "0x4aDC67696bA383F43DD60A9e78F2C97Fbbfc7cb1", Confirmations: 3},
		},
		Deploy: configs.Deploy{Confirmations: configs.Confirmations{Development: 1, Public: 6}},
	}
}

func TestResolveDevelopmentNetworksHaveNoOracle(t *testing.T) {
	registry := NewRegistry(testConfig())

	for _, name := range []configs.NetworkName{configs.NetworkLocalhost, configs.NetworkHardhat, configs.NetworkGanache} {
		desc, err := registry.Resolve(name)
		require.NoError(t, err, name)
		assert.True(t, desc.IsDevelopment, name)
		assert.Nil(t, desc.OracleAddress, name)
		assert.Equal(t, uint64(1), desc.Confirmations, name)
	}

	desc, err := registry.Resolve(configs.NetworkGanache)
	require.NoError(t, err)
	assert.Equal(t, uint64(1337), desc.ChainID)
}

func TestResolvePublicNetworksHaveOracle(t *testing.T) {
	registry := NewRegistry(testConfig())

	for _, name := range []configs.NetworkName{configs.NetworkSepolia, "holesky"} {
		desc, err := registry.Resolve(name)
		require.NoError(t, err, name)
		assert.False(t, desc.IsDevelopment, name)
		require.NotNil(t, desc.OracleAddress, name)
		assert.NotEqual(t, common.Address{}, *desc.OracleAddress, name)
	}

	desc, err := registry.Resolve(configs.NetworkSepolia)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(sepoliaFeed), *desc.OracleAddress)
	assert.Equal(t, uint64(11155111), desc.ChainID)
	assert.Equal(t, uint64(6), desc.Confirmations, "falls back to the public default")
	assert.Equal(t, "Sepolia", desc.DisplayName)

	desc, err = registry.Resolve("holesky")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), desc.Confirmations)
	assert.Equal(t, "holesky", desc.DisplayName)
}

func TestResolveUnknownNetwork(t *testing.T) {
	registry := NewRegistry(testConfig())

	_, err := registry.Resolve("mainnet")
	require.ErrorIs(t, err, ErrUnknownNetwork)
	assert.ErrorContains(t, err, "mainnet")
}

func TestResolveMissingPriceFeed(t *testing.T) {
	cfg := testConfig()
	cfg.Registry[configs.NetworkSepolia] = configs.NetworkParameters{ChainID: 11155111}

	_, err := NewRegistry(cfg).Resolve(configs.NetworkSepolia)
	require.ErrorIs(t, err, ErrPriceFeedNotConfigured)
	assert.NotErrorIs(t, err, ErrUnknownNetwork)
}

func TestRegistryIsDetachedFromConfigSlice(t *testing.T) {
	cfg := testConfig()
	registry := NewRegistry(cfg)

	cfg.DevelopmentChains[0] = "mutated"

	assert.True(t, registry.IsDevelopment(configs.NetworkLocalhost))
}

func TestNames(t *testing.T) {
	names := NewRegistry(testConfig()).Names()
	assert.Equal(t, []configs.NetworkName{"ganache", "hardhat", "holesky", "localhost", "sepolia"}, names)
}
