package state

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/compose-network/fundme-deployer/internal/fundme/domain"
	"github.com/compose-network/fundme-deployer/internal/fundme/infra/filesystem"
	"github.com/compose-network/fundme-deployer/internal/logger"
)

const recordExtension = ".yaml"

var ErrRecordNotFound = errors.New("deployment record not found")

// Store keeps one deployment record per network under stateDir.
type Store struct {
	stateDir string
	reader   filesystem.Reader
	writer   filesystem.Writer
	logger   *slog.Logger
}

func NewStore(stateDir string, reader filesystem.Reader, writer filesystem.Writer) *Store {
	return &Store{
		stateDir: stateDir,
		reader:   reader,
		writer:   writer,
		logger:   logger.Named("state_store"),
	}
}

// Path returns where the record of network is kept.
func (s *Store) Path(network string) string {
	return filepath.Join(s.stateDir, network+recordExtension)
}

// Save replaces the record of record.Network.
func (s *Store) Save(record domain.DeploymentRecord) error {
	if record.Network == "" {
		return errors.New("deployment record has no network")
	}

	path := s.Path(record.Network)
	if err := s.writer.WriteYAML(path, record); err != nil {
		return fmt.Errorf("failed to save deployment record '%s': %w", path, err)
	}

	s.logger.
		With("network", record.Network).
		With("address", record.ContractAddress).
		With("path", path).
		Info("deployment record saved")

	return nil
}

// Load reads the latest record of network.
func (s *Store) Load(network string) (domain.DeploymentRecord, error) {
	path := s.Path(network)

	var record domain.DeploymentRecord
	if err := s.reader.ReadYAML(path, &record); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.DeploymentRecord{}, fmt.Errorf("%w for network '%s' at '%s'", ErrRecordNotFound, network, path)
		}
		return domain.DeploymentRecord{}, fmt.Errorf("failed to read deployment record '%s': %w", path, err)
	}

	return record, nil
}
