package corpus

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/upb/research-assistant/models"
)

//go:embed data/default.yaml
var defaultCorpus []byte

// file is the on-disk layout of a corpus
type file struct {
	Documents []models.Document `yaml:"documents"`
}

// Default returns the store built from the embedded corpus
func Default() (*Store, error) {
	return Parse(defaultCorpus)
}

// Load reads a YAML corpus from path
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault loads the corpus at path, or the embedded corpus when path is empty
func LoadOrDefault(path string) (*Store, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// Parse decodes a YAML corpus and validates it
func Parse(data []byte) (*Store, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse corpus: %w", err)
	}
	if len(f.Documents) == 0 {
		return nil, fmt.Errorf("%w: no documents", ErrInvalidCorpus)
	}
	return New(f.Documents)
}
