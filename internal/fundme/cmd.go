package fundme

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/compose-network/fundme-deployer/configs"
	"github.com/compose-network/fundme-deployer/internal/fundme/chain"
	"github.com/compose-network/fundme-deployer/internal/fundme/explorer/etherscan"
	"github.com/compose-network/fundme-deployer/internal/fundme/infra/filesystem/yaml"
	"github.com/compose-network/fundme-deployer/internal/fundme/network"
	"github.com/compose-network/fundme-deployer/internal/fundme/state"
	"github.com/compose-network/fundme-deployer/internal/logger"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var CMD = &cobra.Command{
	Use:   "fundme",
	Short: "Deploy, verify and fund the FundMe contract",
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.With("network", configs.Values.Network).Info("starting deployment")

		service := newService(configs.Values)
		summary, err := service.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("fundme run failed: %w", err)
		}

		slog.With("address", summary.Record.ContractAddress).
			With("verification", summary.Verification.Outcome.String()).
			Info("deployment completed successfully")

		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the last deployment of the selected network on the block explorer",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := newService(configs.Values).ResumeVerification(cmd.Context())
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}

		slog.With("outcome", result.Outcome.String()).With("reason", result.Reason).Info("verification finished")

		return nil
	},
}

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List the networks the deployer can target",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Print(renderNetworks(network.NewRegistry(configs.Values)))
		return nil
	},
}

func newService(cfg configs.Config) *Service {
	store := state.NewStore(cfg.Deploy.StateDir, yaml.NewReader(), yaml.NewWriter())
	explorer := etherscan.NewClient(cfg.Etherscan.APIURL, cfg.Etherscan.APIKey,
		etherscan.WithPollInterval(cfg.Etherscan.PollInterval),
		etherscan.WithTimeout(cfg.Etherscan.Timeout),
	)

	return NewService(cfg, network.NewRegistry(cfg), dialRPC, store, explorer, yaml.NewWriter())
}

func dialRPC(ctx context.Context, url string) (chain.Backend, error) {
	client, err := chain.Dial(ctx, url, logger.Named("rpc"))
	if err != nil {
		return nil, err
	}
	return client, nil
}

func renderNetworks(registry *network.Registry) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Network", "Kind", "Chain ID", "Price feed", "Confirmations"})

	for _, name := range registry.Names() {
		desc, err := registry.Resolve(name)
		if err != nil {
			t.AppendRow(table.Row{name, "public", "-", err.Error(), "-"})
			continue
		}

		kind := lo.Ternary(desc.IsDevelopment, "development", "public")
		feed := "fallback"
		if desc.OracleAddress != nil {
			feed = desc.OracleAddress.Hex()
		}
		t.AppendRow(table.Row{desc.Name, kind, desc.ChainID, feed, desc.Confirmations})
	}

	rendered := t.Render()
	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	return rendered
}
