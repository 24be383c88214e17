package gasreport

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/compose-network/fundme-deployer/internal/fundme/infra/filesystem/yaml"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(noColors bool) *Report {
	report := New(Options{Network: "localhost", Contract: "FundMe", NoColors: noColors})
	report.Add(Entry{
		Operation: "deploy",
		TxHash:    common.HexToHash("0x01"),
		GasUsed:   90_000,
		GasPrice:  big.NewInt(1_000_000_000),
	})
	report.Add(Entry{
		Operation: "fund",
		TxHash:    common.HexToHash("0x02"),
		GasUsed:   45_000,
	})
	return report
}

func TestRenderWithoutColors(t *testing.T) {
	rendered := sampleReport(true).Render()

	assert.Contains(t, rendered, "FundMe gas usage on localhost")
	assert.Contains(t, rendered, "deploy")
	assert.Contains(t, rendered, "fund")
	assert.Contains(t, rendered, common.HexToHash("0x01").Hex())
	assert.Contains(t, rendered, "90000")
	assert.Contains(t, rendered, "1.00")
	assert.Contains(t, rendered, "0.000090")
	assert.Contains(t, rendered, "135000")
	assert.NotContains(t, rendered, "\x1b[")
}

func TestRenderWithColors(t *testing.T) {
	assert.Contains(t, sampleReport(false).Render(), "\x1b[")
}

func TestTotalGas(t *testing.T) {
	report := sampleReport(true)
	assert.Equal(t, uint64(135_000), report.TotalGas())
	assert.Len(t, report.Entries(), 2)
}

func TestWriteTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gas-report.txt")

	require.NoError(t, sampleReport(true).WriteTo(yaml.NewWriter(), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "135000")
	assert.Equal(t, byte('\n'), raw[len(raw)-1])
}
