package domain

import "time"

// VerificationStatus mirrors the verifier outcome in persisted records.
type VerificationStatus string

const (
	VerificationStatusUnverified      VerificationStatus = "unverified"
	VerificationStatusVerified        VerificationStatus = "verified"
	VerificationStatusAlreadyVerified VerificationStatus = "already-verified"
	VerificationStatusFailed          VerificationStatus = "failed"
	VerificationStatusSkipped         VerificationStatus = "skipped"
)

// DeploymentRecord is written right after the confirmation wait so that
// verification can be resumed by a later run.
type DeploymentRecord struct {
	RunID           string           `yaml:"run_id"`
	Network         string           `yaml:"network"`
	ChainID         uint64           `yaml:"chain_id"`
	ContractName    string           `yaml:"contract_name"`
	Deployer        string           `yaml:"deployer"`
	ContractAddress string           `yaml:"contract_address"`
	TxHash          string           `yaml:"tx_hash"`
	BlockNumber     uint64           `yaml:"block_number"`
	Confirmations   uint64           `yaml:"confirmations"`
	ConstructorArgs []string         `yaml:"constructor_args"`
	EncodedArgs     string           `yaml:"encoded_args"`
	Verification    VerificationInfo `yaml:"verification"`
	DeployedAt      time.Time        `yaml:"deployed_at"`
}

type VerificationInfo struct {
	Status    VerificationStatus `yaml:"status"`
	Reason    string             `yaml:"reason,omitempty"`
	URL       string             `yaml:"url,omitempty"`
	UpdatedAt time.Time          `yaml:"updated_at,omitempty"`
}
