package contracts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type (
	// BuildInfo is the compiler input that produced an artifact. Explorers
	// need it verbatim to reproduce the bytecode.
	BuildInfo struct {
		SolcVersion     string
		SolcLongVersion string
		Input           json.RawMessage
	}

	debugFile struct {
		BuildInfo string `json:"buildInfo"`
	}

	rawBuildInfo struct {
		SolcVersion     string          `json:"solcVersion"`
		SolcLongVersion string          `json:"solcLongVersion"`
		Input           json.RawMessage `json:"input"`
	}
)

// LoadBuildInfo follows the <Name>.dbg.json file next to the artifact to the
// build-info it references.
func LoadBuildInfo(artifactPath string) (BuildInfo, error) {
	dbgPath := strings.TrimSuffix(artifactPath, filepath.Ext(artifactPath)) + ".dbg.json"
	data, err := os.ReadFile(dbgPath)
	if err != nil {
		return BuildInfo{}, fmt.Errorf("failed to read debug file: %w", err)
	}

	var dbg debugFile
	if err := json.Unmarshal(data, &dbg); err != nil {
		return BuildInfo{}, fmt.Errorf("failed to parse %s: %w", dbgPath, err)
	}
	if dbg.BuildInfo == "" {
		return BuildInfo{}, fmt.Errorf("%s does not reference a build-info file", dbgPath)
	}

	buildInfoPath := dbg.BuildInfo
	if !filepath.IsAbs(buildInfoPath) {
		buildInfoPath = filepath.Join(filepath.Dir(dbgPath), buildInfoPath)
	}

	data, err = os.ReadFile(buildInfoPath)
	if err != nil {
		return BuildInfo{}, fmt.Errorf("failed to read build-info: %w", err)
	}

	var raw rawBuildInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return BuildInfo{}, fmt.Errorf("failed to parse %s: %w", buildInfoPath, err)
	}
	if len(raw.Input) == 0 {
		return BuildInfo{}, fmt.Errorf("%s has no compiler input", buildInfoPath)
	}

	return BuildInfo{
		SolcVersion:     raw.SolcVersion,
		SolcLongVersion: raw.SolcLongVersion,
		Input:           raw.Input,
	}, nil
}

// CompilerVersion returns the "v0.8.18+commit.87f61d96" form, falling back to
// pinned when the build-info has no long version.
func (b BuildInfo) CompilerVersion(pinned string) string {
	version := b.SolcLongVersion
	if version == "" {
		version = pinned
	}
	if version != "" && !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version
}
