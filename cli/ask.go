package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/upb/research-assistant/app"
	"github.com/upb/research-assistant/internal/observability"
	"github.com/upb/research-assistant/models"
	"github.com/upb/research-assistant/services/providers"
)

// askResult is the --json output of ask
type askResult struct {
	Answer    string            `json:"answer"`
	Model     string            `json:"model"`
	Citations []models.Citation `json:"citations"`
	Usage     providers.Usage   `json:"usage"`
}

func newAskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask one question grounded in the paper library",
		Long: `Retrieves the papers most relevant to the question, sends them to the
configured chat model (CHAT_MODEL) and prints the complete answer followed
by the cited papers.

Examples:
  research-assistant ask "How does charismatic leadership help in a crisis?"
  research-assistant ask --json "What did the Katrina studies find?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}
	cmd.Flags().Bool("json", false, "output the answer and citations as JSON")
	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("getting json flag: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if err := deps.Start(ctx); err != nil {
		_ = deps.Close(context.Background())
		return err
	}
	defer deps.Close(context.Background()) //nolint:errcheck

	question := strings.Join(args, " ")
	turn, err := deps.Chat.Prepare(ctx, []providers.Message{{Role: providers.RoleUser, Content: question}})
	if err != nil {
		return err
	}

	resp, err := deps.Chat.Complete(ctx, turn)
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), askResult{
			Answer:    resp.Content,
			Model:     deps.Chat.Model(),
			Citations: turn.Citations,
			Usage:     resp.Usage,
		})
	}
	return writeAnswer(cmd.OutOrStdout(), resp.Content, turn.Citations)
}

func writeAnswer(w io.Writer, answer string, citations []models.Citation) error {
	fmt.Fprintln(w, strings.TrimSpace(answer))
	if len(citations) == 0 {
		return nil
	}

	fmt.Fprintf(w, "\n%s\n", metaStyle("Sources:"))
	for i, c := range citations {
		if _, err := fmt.Fprintf(w, "  [%d] %s %s\n", i+1, titleStyle(c.Title), metaStyle(fmt.Sprintf("(%s, %s)", c.Authors, c.Year))); err != nil {
			return err
		}
	}
	return nil
}
