// Package cli implements the research-assistant command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/upb/research-assistant/app"
	"github.com/upb/research-assistant/config"
	"github.com/upb/research-assistant/corpus"
)

// NewRootCommand builds the full command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "research-assistant",
		Short: "Research assistant over a library of academic papers",
		Long: `Research assistant answers questions about a fixed library of
academic papers on crisis management and leadership.

It serves a streaming chat API that grounds every reply in the most
relevant papers, and exposes the same library on the command line and
over the Model Context Protocol.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("corpus", "", "path to a YAML corpus file (overrides CORPUS_PATH)")

	root.AddCommand(
		newServeCommand(),
		newSearchCommand(),
		newAskCommand(),
		newDocumentsCommand(),
		newCategoriesCommand(),
		newMCPCommand(),
		newVersionCommand(),
	)

	return root
}

// Execute runs the root command with ctx
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// loadConfig reads the environment configuration and applies persistent flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.New(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	path, err := cmd.Flags().GetString("corpus")
	if err != nil {
		return nil, fmt.Errorf("getting corpus flag: %w", err)
	}
	if path != "" {
		cfg.Corpus.Path = path
	}

	return cfg, nil
}

// loadStore loads the corpus for commands that only read the library
func loadStore(cmd *cobra.Command) (*corpus.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return app.LoadCorpus(cfg.Corpus, zap.NewNop())
}
