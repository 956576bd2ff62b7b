package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/upb/research-assistant/internal/rag"
	"github.com/upb/research-assistant/models"
)

var (
	titleStyle = color.New(color.FgCyan, color.Bold).SprintFunc()
	metaStyle  = color.New(color.FgHiBlack).SprintFunc()
	scoreStyle = color.New(color.FgGreen).SprintFunc()
)

func newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the paper library",
		Long: `Ranks the papers against a query and prints the best matches.

A title match outweighs a key-finding match, which outweighs a content
match. At most five papers are returned.`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}
	cmd.Flags().Bool("json", false, "output results as JSON")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("getting json flag: %w", err)
	}

	store, err := loadStore(cmd)
	if err != nil {
		return err
	}

	results := rag.NewEngine(store).Search(args[0])

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), results)
	}
	return writeSearchTable(cmd.OutOrStdout(), results)
}

func writeSearchTable(w io.Writer, results []models.SearchResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}

	for i, r := range results {
		fmt.Fprintf(w, "  [%d] %s %s\n", i+1, titleStyle(r.Document.Title), scoreStyle(fmt.Sprintf("(%d)", r.Relevance)))
		fmt.Fprintf(w, "      %s\n", metaStyle(fmt.Sprintf("%s, %s · %s · %s", r.Document.Authors, r.Document.Year, r.Document.Category, r.Document.ID)))
		fmt.Fprintf(w, "      %s\n\n", r.MatchedContent)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
