package contracts

import (
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fundMeArtifactPath = filepath.Join("testdata", "artifacts", "contracts", "FundMe.sol", "FundMe.json")

func TestLoadArtifact(t *testing.T) {
	artifact, err := LoadArtifact(fundMeArtifactPath)
	require.NoError(t, err)

	assert.Equal(t, "FundMe", artifact.Name)
	assert.Equal(t, "contracts/FundMe.sol:FundMe", artifact.FullyQualifiedName())
	assert.Equal(t, fundMeArtifactPath, artifact.Path)
	assert.Equal(t, 1, artifact.ConstructorArity())
	assert.NotEmpty(t, artifact.Bytecode)
	assert.Contains(t, artifact.ABI.Methods, "fund")
	assert.Contains(t, artifact.ABI.Methods, "getSpecificFunder")
}

func TestConstructorArgsRoundTrip(t *testing.T) {
	artifact, err := LoadArtifact(fundMeArtifactPath)
	require.NoError(t, err)

	feed := common.HexToAddress("0x8A753747A1Fa494EC906cE90E9f37563A8AF630e")
	packed, err := artifact.PackConstructorArgs(feed)
	require.NoError(t, err)
	assert.Len(t, packed, 32)

	args, err := artifact.UnpackConstructorArgs(packed)
	require.NoError(t, err)
	assert.Equal(t, []any{feed}, args)

	_, err = artifact.PackConstructorArgs()
	require.Error(t, err)
}

func TestParseArtifactRejectsUnusableArtifacts(t *testing.T) {
	cases := map[string]string{
		"invalid json":     `{`,
		"no name":          `{"abi": [], "bytecode": "0x60"}`,
		"no bytecode":      `{"contractName": "IFeed", "abi": [], "bytecode": "0x"}`,
		"linked libraries": `{"contractName": "X", "abi": [], "bytecode": "0x60", "linkReferences": {"contracts/Lib.sol": {}}}`,
		"bad abi":          `{"contractName": "X", "abi": {"type": 1}, "bytecode": "0x60"}`,
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseArtifact([]byte(data))
			require.Error(t, err)
		})
	}
}

func TestLoadBuildInfo(t *testing.T) {
	info, err := LoadBuildInfo(fundMeArtifactPath)
	require.NoError(t, err)

	assert.Equal(t, "0.8.18", info.SolcVersion)
	assert.Equal(t, "v0.8.18+commit.87f61d96", info.CompilerVersion("ignored"))
	assert.Contains(t, string(info.Input), `"contracts/FundMe.sol"`)
}

func TestLoadBuildInfoMissingDebugFile(t *testing.T) {
	_, err := LoadBuildInfo(filepath.Join(t.TempDir(), "FundMe.json"))
	require.ErrorContains(t, err, "failed to read debug file")
}

func TestCompilerVersionFallsBackToPinned(t *testing.T) {
	assert.Equal(t, "v0.8.18+commit.87f61d96", BuildInfo{}.CompilerVersion("0.8.18+commit.87f61d96"))
	assert.Equal(t, "", BuildInfo{}.CompilerVersion(""))
}
