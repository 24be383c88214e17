package configs

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "FUNDME"

// envBindings maps config keys to the environment variables that historically
// carried them.
var envBindings = map[string]string{
	"networks.sepolia.url":                "SEPOLIA_RPC_URL",
	"networks.sepolia.private-key":        "SEPOLIA_ACCOUNT_PRIVATE_KEY",
	"registry.sepolia.price-feed-address": "SEPOLIA_PRICEFEED_ADDRESS",
	"networks.localhost.private-key":      "LOCAL_ACCOUNT_PRIVATE_KEY",
	"etherscan.api-key":                   "ETHERSCAN_API_KEY",
	"gas-reporter.coinmarketcap-api-key":  "COINMARKETCAP_API_KEY",
}

// BindEnv wires FUNDME_* variables for every key plus the legacy names above.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}
