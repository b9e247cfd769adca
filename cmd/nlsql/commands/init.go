package commands

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/nlsql/internal/apperr"
	"github.com/satishbabariya/nlsql/internal/config"
	"github.com/satishbabariya/nlsql/internal/ui"
)

type initAnswers struct {
	DBType           string `survey:"db_type"`
	ConnectionString string `survey:"connection_string"`
	AICLIPath        string `survey:"ai_cli_path"`
	AIModelPath      string `survey:"ai_model_path"`
	KnowledgeDir     string `survey:"knowledge_dir"`
	Prime            bool   `survey:"prime"`
}

// initQuestions builds the prompts, defaulting to the current settings.
func initQuestions(s *config.Settings) []*survey.Question {
	dialects := make([]string, len(config.DBTypes))
	for i, t := range config.DBTypes {
		dialects[i] = t.String()
	}
	return []*survey.Question{
		{
			Name: "db_type",
			Prompt: &survey.Select{
				Message: "Database:",
				Options: dialects,
				Default: s.Engine.DBType.String(),
			},
		},
		{
			Name: "connection_string",
			Prompt: &survey.Input{
				Message: "Connection string:",
				Default: s.Engine.ConnectionString,
				Help:    "mysql://user:pw@host:3306/db, postgres://user:pw@host/db or sqlite://path/to.db",
			},
			Validate: survey.Required,
		},
		{
			Name:   "ai_cli_path",
			Prompt: &survey.Input{Message: "Inference binary:", Default: s.Engine.AICLIPath},
		},
		{
			Name:   "ai_model_path",
			Prompt: &survey.Input{Message: "Model file:", Default: s.Engine.AIModelPath},
		},
		{
			Name:   "knowledge_dir",
			Prompt: &survey.Input{Message: "Knowledge directory (optional):", Default: s.KnowledgeDir},
		},
		{
			Name:   "prime",
			Prompt: &survey.Confirm{Message: "Warm up the model after connecting?", Default: s.Prime},
		},
	}
}

// apply copies the answers onto s.
func (ans initAnswers) apply(s *config.Settings) error {
	dbType, err := config.ParseDBType(ans.DBType)
	if err != nil {
		return err
	}
	s.Engine.DBType = dbType
	s.Engine.ConnectionString = ans.ConnectionString
	s.Engine.AICLIPath = ans.AICLIPath
	s.Engine.AIModelPath = ans.AIModelPath
	s.KnowledgeDir = ans.KnowledgeDir
	s.Prime = ans.Prime
	return s.Engine.Validate()
}

// NewInitCommand creates the init command.
func NewInitCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var ans initAnswers
			if err := survey.Ask(initQuestions(a.settings), &ans); err != nil {
				return apperr.Wrap(apperr.IOError, err, "")
			}
			if err := ans.apply(a.settings); err != nil {
				return err
			}

			path, err := a.loader.SaveConfig(a.settings, output)
			if err != nil {
				return err
			}
			ui.PrintSuccess("Wrote %s", path)
			ui.PrintInfo("Try: nlsql ask \"how many rows are in each table?\"")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default ~/.config/nlsql/.nlsql.yaml)")
	return cmd
}
