package configs

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

var Values Config

// DefaultFallbackPriceFeed is the price feed passed to the constructor when the
// resolved network has no oracle of its own (development chains).
const DefaultFallbackPriceFeed = "0x8A753747A1Fa494EC906cE90E9f37563A8AF630e"

type (
	NetworkName string

	Config struct {
		Network           NetworkName                       `mapstructure:"network"`
		Log               Log                               `mapstructure:"log"`
		Solidity          Solidity                          `mapstructure:"solidity"`
		DevelopmentChains []NetworkName                     `mapstructure:"development-chains"`
		Networks          map[NetworkName]Endpoint          `mapstructure:"networks"`
		Registry          map[NetworkName]NetworkParameters `mapstructure:"registry"`
		Etherscan         Etherscan                         `mapstructure:"etherscan"`
		GasReporter       GasReporter                       `mapstructure:"gas-reporter"`
		Deploy            Deploy                            `mapstructure:"deploy"`
		Fund              Fund                              `mapstructure:"fund"`
	}

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	}

	// Solidity pins the compiler used to build the artifacts. Consumed as an
	// opaque value when submitting sources for verification.
	Solidity struct {
		Version string `mapstructure:"version"`
	}

	// Endpoint is how a network is reached and who signs on it.
	Endpoint struct {
		URL        string `mapstructure:"url"`
		ChainID    int    `mapstructure:"chain-id"`
		PrivateKey string `mapstructure:"private-key"`
	}

	// NetworkParameters are the deployment parameters of a public network.
	NetworkParameters struct {
		Name             string `mapstructure:"name"`
		ChainID          int    `mapstructure:"chain-id"`
		PriceFeedAddress string `mapstructure:"price-feed-address"`
		Confirmations    int    `mapstructure:"confirmations"`
		ExplorerURL      string `mapstructure:"explorer-url"`
	}

	Etherscan struct {
		APIKey       string        `mapstructure:"api-key"`
		APIURL       string        `mapstructure:"api-url"`
		PollInterval time.Duration `mapstructure:"poll-interval"`
		Timeout      time.Duration `mapstructure:"timeout"`
	}

	GasReporter struct {
		Enabled             bool   `mapstructure:"enabled"`
		NoColors            bool   `mapstructure:"no-colors"`
		OutputFile          string `mapstructure:"output-file"`
		Currency            string `mapstructure:"currency"`
		CoinMarketCapAPIKey string `mapstructure:"coinmarketcap-api-key"`
	}

	Deploy struct {
		ContractName             string        `mapstructure:"contract-name"`
		ArtifactPath             string        `mapstructure:"artifact-path"`
		FallbackPriceFeedAddress string        `mapstructure:"fallback-price-feed-address"`
		Confirmations            Confirmations `mapstructure:"confirmations"`
		ConfirmationTimeout      time.Duration `mapstructure:"confirmation-timeout"`
		PollInterval             time.Duration `mapstructure:"poll-interval"`
		GasLimit                 uint64        `mapstructure:"gas-limit"`
		StateDir                 string        `mapstructure:"state-dir"`
	}

	Confirmations struct {
		Development int `mapstructure:"development"`
		Public      int `mapstructure:"public"`
	}

	Fund struct {
		Enabled     bool   `mapstructure:"enabled"`
		AmountWei   string `mapstructure:"amount-wei"`
		FunderIndex int    `mapstructure:"funder-index"`
	}
)

const (
	NetworkLocalhost NetworkName = "localhost"
	NetworkHardhat   NetworkName = "hardhat"
	NetworkGanache   NetworkName = "ganache"
	NetworkSepolia   NetworkName = "sepolia"

	LogFormatJSON = "json"
	LogFormatText = "text"
)

// FallbackPriceFeed returns the configured fallback or DefaultFallbackPriceFeed.
func (d Deploy) FallbackPriceFeed() common.Address {
	if d.FallbackPriceFeedAddress == "" {
		return common.HexToAddress(DefaultFallbackPriceFeed)
	}
	return common.HexToAddress(d.FallbackPriceFeedAddress)
}

// Amount parses the configured funding amount.
func (f Fund) Amount() (*big.Int, error) {
	amount, ok := new(big.Int).SetString(f.AmountWei, 10)
	if !ok {
		return nil, fmt.Errorf("invalid fund.amount-wei %q", f.AmountWei)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("fund.amount-wei must not be negative, got %s", f.AmountWei)
	}
	return amount, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Network == "" {
		errs = append(errs, errors.New("network is required"))
	} else if _, ok := c.Networks[c.Network]; !ok {
		errs = append(errs, fmt.Errorf("networks.%s is required", c.Network))
	}

	for name, endpoint := range c.Networks {
		if endpoint.URL == "" && name == c.Network {
			errs = append(errs, fmt.Errorf("networks.%s.url is required", name))
		}
		if endpoint.ChainID < 0 {
			errs = append(errs, fmt.Errorf("networks.%s.chain-id must not be negative", name))
		}
	}

	for name, params := range c.Registry {
		if params.ChainID <= 0 {
			errs = append(errs, fmt.Errorf("registry.%s.chain-id is required", name))
		}
		if params.Confirmations < 0 {
			errs = append(errs, fmt.Errorf("registry.%s.confirmations must not be negative", name))
		}
	}

	if c.Deploy.ArtifactPath == "" {
		errs = append(errs, errors.New("deploy.artifact-path is required"))
	}
	if addr := c.Deploy.FallbackPriceFeedAddress; addr != "" && !common.IsHexAddress(addr) {
		errs = append(errs, fmt.Errorf("deploy.fallback-price-feed-address %q is not a hex address", addr))
	}
	if c.Deploy.Confirmations.Development < 0 || c.Deploy.Confirmations.Public < 0 {
		errs = append(errs, errors.New("deploy.confirmations must not be negative"))
	}
	if c.Deploy.ConfirmationTimeout <= 0 {
		errs = append(errs, errors.New("deploy.confirmation-timeout must be positive"))
	}
	if c.Deploy.PollInterval <= 0 {
		errs = append(errs, errors.New("deploy.poll-interval must be positive"))
	}
	if c.Deploy.StateDir == "" {
		errs = append(errs, errors.New("deploy.state-dir is required"))
	}

	if c.Fund.Enabled {
		if _, err := c.Fund.Amount(); err != nil {
			errs = append(errs, err)
		}
		if c.Fund.FunderIndex < 0 {
			errs = append(errs, errors.New("fund.funder-index must not be negative"))
		}
	}

	if c.GasReporter.Enabled && c.GasReporter.OutputFile == "" {
		errs = append(errs, errors.New("gas-reporter.output-file is required when the gas reporter is enabled"))
	}

	if f := c.Log.Format; f != "" && f != LogFormatJSON && f != LogFormatText {
		errs = append(errs, fmt.Errorf("log.format must be either '%s' or '%s'", LogFormatJSON, LogFormatText))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}
