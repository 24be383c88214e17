package yaml

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Reader loads YAML documents from disk
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

// ReadYAML reads and unmarshals YAML from a file. A missing file is reported
// with an error satisfying errors.Is(err, fs.ErrNotExist).
func (r *Reader) ReadYAML(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return nil
}
