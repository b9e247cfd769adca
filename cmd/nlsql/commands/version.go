package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/nlsql/internal/ui"
	"github.com/satishbabariya/nlsql/internal/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if a.jsonOutput {
				return ui.PrintJSON(info)
			}
			fmt.Fprintln(ui.Out, info.FullString())
			return nil
		},
	}
}
