package fundme

import (
	"github.com/spf13/viper"
)

// flagDef defines a command-line flag with its configuration.
type (
	flagType interface {
		string | int | bool
	}

	flagDef[T flagType] struct {
		name         string
		viperKey     string
		defaultValue T
		description  string
	}
)

// Defaults are empty: the embedded config supplies them and an unchanged
// flag never overrides a config value.
var (
	stringFlags = []flagDef[string]{
		{"network", "network", "", "Network to deploy to (localhost, hardhat, ganache, sepolia, ...)"},

		// Deployment
		{"artifact-path", "deploy.artifact-path", "", "Hardhat artifact of the contract to deploy"},
		{"fallback-price-feed", "deploy.fallback-price-feed-address", "", "Price feed used on networks without one"},
		{"state-dir", "deploy.state-dir", "", "Directory holding deployment records"},

		// Funding
		{"fund-amount-wei", "fund.amount-wei", "", "Value sent with fund() in wei"},

		// Verification
		{"etherscan-api-key", "etherscan.api-key", "", "Etherscan API key"},

		// Gas report
		{"gas-report-file", "gas-reporter.output-file", "", "Gas report output file"},

		// Logging
		{"log-level", "log.level", "", "Log level (debug, info, warn, error)"},
		{"log-format", "log.format", "", "Log format (json or text)"},
	}

	intFlags = []flagDef[int]{
		{"funder-index", "fund.funder-index", 1, "Funder id read back after funding"},
	}

	boolFlags = []flagDef[bool]{
		{"fund", "fund.enabled", true, "Call fund() after deployment"},
		{"gas-report", "gas-reporter.enabled", true, "Write the gas report"},
	}
)

func init() {
	if err := declareFlags(stringFlags); err != nil {
		panic(err)
	}
	if err := declareFlags(intFlags); err != nil {
		panic(err)
	}
	if err := declareFlags(boolFlags); err != nil {
		panic(err)
	}
	CMD.AddCommand(verifyCmd)
	CMD.AddCommand(networksCmd)
}

// declareFlags declares multiple flags and binds them to viper configuration keys.
func declareFlags[T flagType](flags []flagDef[T]) error {
	for _, flag := range flags {
		if err := declareFlag(flag.name, flag.viperKey, flag.defaultValue, flag.description); err != nil {
			return err
		}
	}
	return nil
}

// declareFlag declares a persistent flag so subcommands share it, and binds
// it to a viper configuration key.
func declareFlag[T flagType](flagName, viperKey string, defaultValue T, description string) error {
	flags := CMD.PersistentFlags()
	switch v := any(defaultValue).(type) {
	case string:
		flags.String(flagName, v, description)
	case int:
		flags.Int(flagName, v, description)
	case bool:
		flags.Bool(flagName, v, description)
	}
	return viper.BindPFlag(viperKey, flags.Lookup(flagName))
}
