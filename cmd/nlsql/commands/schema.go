package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/nlsql/internal/ui"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(a *app) *cobra.Command {
	var showKnowledge bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Show the introspected schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.configure(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			if showKnowledge {
				if a.jsonOutput {
					return ui.PrintJSON(map[string]string{"knowledge": e.Knowledge()})
				}
				ui.PrintInfo("%s", e.Knowledge())
				return nil
			}
			if a.jsonOutput {
				return ui.PrintJSON(e.Facts())
			}
			return ui.PrintMarkdown(ui.FactsMarkdown(e.Facts()))
		},
	}

	cmd.Flags().BoolVar(&showKnowledge, "knowledge", false, "print the full knowledge text sent to the model")
	return cmd
}
