package contracts

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

type (
	// Artifact is a compiled contract as emitted by Hardhat under
	// artifacts/<source>/<Name>.json.
	Artifact struct {
		Name             string
		SourceName       string
		Path             string
		ABI              abi.ABI
		RawABI           string
		Bytecode         []byte
		DeployedBytecode []byte
	}

	rawArtifact struct {
		ContractName     string                     `json:"contractName"`
		SourceName       string                     `json:"sourceName"`
		ABI              json.RawMessage            `json:"abi"`
		Bytecode         string                     `json:"bytecode"`
		DeployedBytecode string                     `json:"deployedBytecode"`
		LinkReferences   map[string]json.RawMessage `json:"linkReferences"`
	}
)

// LoadArtifact reads a Hardhat artifact from disk.
func LoadArtifact(path string) (Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to read artifact: %w", err)
	}

	artifact, err := ParseArtifact(data)
	if err != nil {
		return Artifact{}, fmt.Errorf("artifact %s: %w", path, err)
	}
	artifact.Path = path

	return artifact, nil
}

// ParseArtifact parses Hardhat artifact JSON.
func ParseArtifact(data []byte) (Artifact, error) {
	var raw rawArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return Artifact{}, fmt.Errorf("failed to parse artifact: %w", err)
	}

	if raw.ContractName == "" {
		return Artifact{}, fmt.Errorf("artifact has no contractName")
	}

	parsedABI, err := abi.JSON(strings.NewReader(string(raw.ABI)))
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to parse ABI for %s: %w", raw.ContractName, err)
	}

	if len(raw.LinkReferences) > 0 {
		return Artifact{}, fmt.Errorf("%s needs linked libraries, which is not supported", raw.ContractName)
	}

	bytecode := common.FromHex(raw.Bytecode)
	if len(bytecode) == 0 {
		return Artifact{}, fmt.Errorf("%s has no creation bytecode (abstract contract or interface?)", raw.ContractName)
	}

	return Artifact{
		Name:             raw.ContractName,
		SourceName:       raw.SourceName,
		ABI:              parsedABI,
		RawABI:           string(raw.ABI),
		Bytecode:         bytecode,
		DeployedBytecode: common.FromHex(raw.DeployedBytecode),
	}, nil
}

// FullyQualifiedName is the "<source>:<contract>" form explorers expect.
func (a Artifact) FullyQualifiedName() string {
	if a.SourceName == "" {
		return a.Name
	}
	return a.SourceName + ":" + a.Name
}

// ConstructorArity is the number of constructor inputs.
func (a Artifact) ConstructorArity() int {
	return len(a.ABI.Constructor.Inputs)
}

// PackConstructorArgs ABI-encodes args the way they are appended to the
// creation bytecode.
func (a Artifact) PackConstructorArgs(args ...any) ([]byte, error) {
	packed, err := a.ABI.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode constructor arguments of %s: %w", a.Name, err)
	}
	return packed, nil
}

// UnpackConstructorArgs decodes what PackConstructorArgs produced.
func (a Artifact) UnpackConstructorArgs(data []byte) ([]any, error) {
	args, err := a.ABI.Constructor.Inputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode constructor arguments of %s: %w", a.Name, err)
	}
	return args, nil
}
