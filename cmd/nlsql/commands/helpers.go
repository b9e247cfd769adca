package commands

import (
	"context"
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/satishbabariya/nlsql/internal/adapters/telemetry"
	"github.com/satishbabariya/nlsql/internal/apperr"
	"github.com/satishbabariya/nlsql/internal/config"
	"github.com/satishbabariya/nlsql/internal/engine"
	"github.com/satishbabariya/nlsql/internal/knowledge"
	"github.com/satishbabariya/nlsql/internal/ui"
)

// app carries state shared by every command.
type app struct {
	configFile string
	jsonOutput bool

	loader   *config.Loader
	settings *config.Settings
}

// resolveBinary expands ~ and adds the platform executable suffix.
func resolveBinary(path, goos string) (string, error) {
	if path == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", apperr.Wrap(apperr.ConfigError, err, "invalid ai_cli_path")
	}
	if goos == "windows" && !strings.HasSuffix(strings.ToLower(expanded), ".exe") {
		expanded += ".exe"
	}
	return expanded, nil
}

// engineConfig returns the payload handed to Configure: the binary path is
// resolved and the knowledge directory, if any, seeds the knowledge text.
func (a *app) engineConfig() (config.Config, error) {
	cfg := a.settings.Engine

	bin, err := resolveBinary(cfg.AICLIPath, runtime.GOOS)
	if err != nil {
		return config.Config{}, err
	}
	cfg.AICLIPath = bin

	if a.settings.KnowledgeDir != "" {
		text, err := knowledge.ReadDir(config.AppFs, a.settings.KnowledgeDir)
		if err != nil {
			return config.Config{}, err
		}
		cfg.SQLKnowledge = joinKnowledge(cfg.SQLKnowledge, text)
	}
	return cfg, nil
}

func joinKnowledge(seed, files string) string {
	switch {
	case seed == "":
		return files
	case files == "":
		return seed
	}
	return seed + "\n" + files
}

func (a *app) newTelemetry(force bool) (telemetry.Telemetry, error) {
	kind := a.settings.Telemetry
	if force {
		kind = string(telemetry.TypePrometheus)
	}
	return telemetry.NewTelemetry(&telemetry.Config{Type: kind})
}

func (a *app) newEngine(tel telemetry.Telemetry) *engine.Engine {
	return engine.New(
		engine.WithPriming(a.settings.Prime),
		engine.WithMaxTokens(a.settings.MaxTokens),
		engine.WithTelemetry(tel),
	)
}

// withTimeout applies the configured per-operation deadline.
func (a *app) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.settings.Timeout > 0 {
		return context.WithTimeout(ctx, a.settings.Timeout)
	}
	return context.WithCancel(ctx)
}

// configure opens an engine for a one-shot command.
func (a *app) configure(ctx context.Context) (*engine.Engine, error) {
	tel, err := a.newTelemetry(false)
	if err != nil {
		return nil, err
	}
	cfg, err := a.engineConfig()
	if err != nil {
		return nil, err
	}

	e := a.newEngine(tel)
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	stop := a.spin("Connecting to " + cfg.DBType.String())
	err = e.Configure(ctx, cfg)
	stop()
	if err != nil {
		return nil, err
	}
	return e, nil
}

// spin shows a spinner unless JSON output is requested.
func (a *app) spin(message string) func() {
	if a.jsonOutput {
		return func() {}
	}
	s, err := ui.PrintSpinner(message)
	if err != nil || s == nil {
		return func() {}
	}
	return func() { _ = s.Stop() }
}

func (a *app) printResponse(resp engine.Response) error {
	if a.jsonOutput {
		return ui.PrintJSON(resp)
	}
	if resp.Question != "" {
		ui.PrintInfo("%s", resp.Question)
	}
	ui.PrintSQL(resp.SQL)
	return ui.PrintRows(resp.Data)
}
