package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/nlsql/internal/engine"
)

// NewAskCommand creates the ask command.
func NewAskCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question and run the generated SQL",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.configure(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			stop := a.spin("Thinking")
			resp, err := e.Ask(ctx, strings.Join(args, " "))
			stop()
			if err != nil {
				return err
			}
			return a.printResponse(resp)
		},
	}
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sql <question>",
		Short: "Generate SQL for a question without running it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.configure(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			question := strings.Join(args, " ")
			stop := a.spin("Thinking")
			sql, err := e.AskForSQL(ctx, question)
			stop()
			if err != nil {
				return err
			}
			return a.printResponse(engine.NewResponse(sql, question, nil))
		},
	}
}

// NewQueryCommand creates the query command.
func NewQueryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a SQL statement and print the converted rows",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.configure(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			sql := strings.Join(args, " ")
			rows, err := e.RunQuery(ctx, sql)
			if err != nil {
				return err
			}
			return a.printResponse(engine.NewResponse(sql, "", rows))
		},
	}
}
