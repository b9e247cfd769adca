// Package commands implements CLI commands.
package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/nlsql/internal/apperr"
	"github.com/satishbabariya/nlsql/internal/config"
	"github.com/satishbabariya/nlsql/internal/debug"
	"github.com/satishbabariya/nlsql/internal/ui"
	"github.com/satishbabariya/nlsql/internal/version"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{}
	root := NewRootCommand(a)
	if err := root.ExecuteContext(ctx); err != nil {
		a.report(err)
		return 1
	}
	return 0
}

// NewRootCommand builds the command tree around a.
func NewRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "nlsql",
		Short:         "Ask questions of a SQL database in plain language",
		Long:          "nlsql turns natural-language questions into SQL with a local model and runs them against MySQL, PostgreSQL or SQLite.",
		Version:       version.Get().String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default searches ./.nlsql.yaml and ~/.nlsql.yaml)")
	flags.BoolVar(&a.jsonOutput, "json", false, "print results and errors as JSON")
	flags.Bool("debug", false, "enable debug logging")
	flags.String("db-type", "", "backend: MySQL, PostgreSQL or SQLite")
	flags.String("connection", "", "connection string")
	flags.String("cli", "", "path to the inference binary")
	flags.String("model", "", "path to the model file")
	flags.String("knowledge-dir", "", "directory of files seeding the knowledge text")
	flags.Int("max-tokens", config.DefaultMaxTokens, "token budget for the model")
	flags.Bool("prime", false, "run a warm-up prompt after connecting")
	flags.Duration("timeout", 0, "deadline for each operation (0 disables)")

	root.AddCommand(
		NewAskCommand(a),
		NewSQLCommand(a),
		NewQueryCommand(a),
		NewSchemaCommand(a),
		NewShellCommand(a),
		NewInitCommand(a),
		NewVersionCommand(a),
	)
	return root
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"debug":         "debug",
	"db-type":       "db_type",
	"connection":    "connection_string",
	"cli":           "ai_cli_path",
	"model":         "ai_model_path",
	"knowledge-dir": "knowledge_dir",
	"max-tokens":    "max_tokens",
	"prime":         "prime",
	"timeout":       "timeout",
}

func (a *app) load(cmd *cobra.Command) error {
	loader, err := config.NewLoader()
	if err != nil {
		return err
	}
	if a.configFile != "" {
		if err := loader.SetConfigFile(a.configFile); err != nil {
			return err
		}
	}

	v := loader.Viper()
	for name, key := range flagKeys {
		// Only flags set on the command line override file and env values.
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	settings, err := loader.Load()
	if err != nil {
		return err
	}
	debug.Init(settings.Debug)
	debug.Debug("settings loaded", "config", v.ConfigFileUsed(), "dialect", settings.Engine.DBType)

	a.loader = loader
	a.settings = settings
	return nil
}

func (a *app) report(err error) {
	if debug.Enabled() {
		debug.Error("command failed", "kind", apperr.KindOf(err), "error", err)
	}
	if a.jsonOutput {
		if pErr := ui.PrintJSON(apperr.ToPayload(err)); pErr == nil {
			return
		}
	}
	ui.PrintAppError(err)
}
