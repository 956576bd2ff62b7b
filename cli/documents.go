package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/upb/research-assistant/models"
	"github.com/upb/research-assistant/services"
)

func newDocumentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "List papers in the library",
		Long: `Lists the papers in library order.

--query keeps papers whose title or authors contain the text, ignoring
case. --category keeps papers of exactly that category.`,
		Args: cobra.NoArgs,
		RunE: runDocuments,
	}
	cmd.Flags().StringP("query", "q", "", "filter by title or author")
	cmd.Flags().StringP("category", "c", "", "filter by category")
	cmd.Flags().Bool("json", false, "output documents as JSON")
	return cmd
}

func runDocuments(cmd *cobra.Command, _ []string) error {
	query, _ := cmd.Flags().GetString("query")
	categoryName, _ := cmd.Flags().GetString("category")
	asJSON, _ := cmd.Flags().GetBool("json")

	category := models.Category(categoryName)
	if category != "" && !category.IsValid() {
		return fmt.Errorf("%w: %q", services.ErrInvalidCategory, categoryName)
	}

	store, err := loadStore(cmd)
	if err != nil {
		return err
	}

	docs := store.Filter(query, category)
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), docs)
	}
	return writeDocumentTable(cmd.OutOrStdout(), docs)
}

func writeDocumentTable(w io.Writer, docs []models.Document) error {
	if len(docs) == 0 {
		_, err := fmt.Fprintln(w, "No documents found.")
		return err
	}

	for _, doc := range docs {
		fmt.Fprintf(w, "  %s\n", titleStyle(doc.Title))
		fmt.Fprintf(w, "      %s\n", metaStyle(fmt.Sprintf("%s, %s · %s · %s", doc.Authors, doc.Year, doc.Category, doc.ID)))
	}
	_, err := fmt.Fprintf(w, "\n%d documents\n", len(docs))
	return err
}

func newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categories present in the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := loadStore(cmd)
			if err != nil {
				return err
			}
			for _, c := range store.Categories() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}
