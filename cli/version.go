package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/upb/research-assistant/app"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "research-assistant version %s\n", app.Version)
		},
	}
}
