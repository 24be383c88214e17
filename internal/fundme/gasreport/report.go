// Package gasreport renders the gas spent by a run as a table.
package gasreport

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/compose-network/fundme-deployer/internal/fundme/infra/filesystem"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type (
	Entry struct {
		Operation string
		TxHash    common.Hash
		GasUsed   uint64
		// GasPrice may be nil when the node did not report it.
		GasPrice *big.Int
	}

	Options struct {
		Network  string
		Contract string
		NoColors bool
	}

	// Report collects the transactions sent during one run.
	Report struct {
		opts    Options
		entries []Entry
	}
)

func New(opts Options) *Report {
	return &Report{opts: opts}
}

func (r *Report) Add(entry Entry) {
	r.entries = append(r.entries, entry)
}

func (r *Report) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// TotalGas sums the gas used by every entry.
func (r *Report) TotalGas() uint64 {
	var total uint64
	for _, entry := range r.entries {
		total += entry.GasUsed
	}
	return total
}

func (r *Report) Render() string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s gas usage on %s", r.opts.Contract, r.opts.Network))
	if r.opts.NoColors {
		t.SetStyle(table.StyleLight)
	} else {
		t.SetStyle(table.StyleColoredBright)
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	t.AppendHeader(table.Row{"Operation", "Transaction", "Gas used", "Gas price (gwei)", "Cost (ETH)"})

	totalCost := new(big.Int)
	for _, entry := range r.entries {
		price, cost := "-", "-"
		if entry.GasPrice != nil {
			price = formatUnits(entry.GasPrice, params.GWei, 2)
			fee := new(big.Int).Mul(entry.GasPrice, new(big.Int).SetUint64(entry.GasUsed))
			totalCost.Add(totalCost, fee)
			cost = formatUnits(fee, params.Ether, 6)
		}
		t.AppendRow(table.Row{entry.Operation, entry.TxHash.Hex(), strconv.FormatUint(entry.GasUsed, 10), price, cost})
	}

	t.AppendFooter(table.Row{"Total", "", strconv.FormatUint(r.TotalGas(), 10), "", formatUnits(totalCost, params.Ether, 6)})

	return t.Render()
}

// WriteTo renders the report to path.
func (r *Report) WriteTo(writer filesystem.Writer, path string) error {
	rendered := r.Render()
	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	if err := writer.WriteBytes(path, []byte(rendered)); err != nil {
		return fmt.Errorf("failed to write gas report: %w", err)
	}
	return nil
}

func formatUnits(amount *big.Int, unit float64, precision int) string {
	value := new(big.Float).Quo(new(big.Float).SetInt(amount), big.NewFloat(unit))
	return value.Text('f', precision)
}
