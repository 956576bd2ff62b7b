package app

import (
	"fmt"

	"github.com/upb/research-assistant/config"
	"github.com/upb/research-assistant/corpus"
	"go.uber.org/zap"
)

// LoadCorpus reads cfg.Path, or the embedded corpus when the path is empty.
func LoadCorpus(cfg config.CorpusConfig, logger *zap.Logger) (*corpus.Store, error) {
	store, err := corpus.LoadOrDefault(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	source := cfg.Path
	if source == "" {
		source = "embedded"
	}
	logger.Info("corpus loaded",
		zap.String("source", source),
		zap.Int("documents", store.Len()),
		zap.Int("categories", len(store.Categories())))
	return store, nil
}
