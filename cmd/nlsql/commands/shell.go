package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/nlsql/internal/adapters/telemetry"
	"github.com/satishbabariya/nlsql/internal/debug"
	"github.com/satishbabariya/nlsql/internal/engine"
	"github.com/satishbabariya/nlsql/internal/ui"
	"github.com/satishbabariya/nlsql/internal/watch"
)

// ShellOptions holds the shell command flags.
type ShellOptions struct {
	Watch       bool
	MetricsAddr string
	HistoryFile string
}

// NewShellCommand creates the interactive shell command.
func NewShellCommand(a *app) *cobra.Command {
	opts := &ShellOptions{}

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session",
		Long: `Start an interactive session holding one connection.

Plain input is asked as a question. Dot-commands:
  .sql <statement>   run SQL directly
  .explain <q>       show the SQL for a question without running it
  .schema            show the introspected schema
  .reload            reconnect and re-read the schema and knowledge
  .status            ping the database and show connection pool usage
  .help              show this help
  .quit / .exit      leave the shell`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, a, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "reload when files in the knowledge directory change")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().StringVar(&opts.HistoryFile, "history", "~/.nlsql_history", "history file")
	return cmd
}

type shell struct {
	app *app
	eng *engine.Engine
	out io.Writer
}

func runShell(cmd *cobra.Command, a *app, opts *ShellOptions) error {
	ctx := cmd.Context()

	tel, err := a.newTelemetry(opts.MetricsAddr != "")
	if err != nil {
		return err
	}
	defer tel.Close(ctx)

	if opts.MetricsAddr != "" {
		prom, ok := tel.(*telemetry.PrometheusTelemetry)
		if ok {
			srv := serveMetrics(opts.MetricsAddr, prom)
			defer shutdown(srv)
		}
	}

	s := &shell{app: a, eng: a.newEngine(tel), out: cmd.OutOrStdout()}
	defer s.eng.Close()

	if err := s.reload(ctx); err != nil {
		return err
	}

	if opts.Watch {
		if a.settings.KnowledgeDir == "" {
			ui.PrintWarning("--watch needs knowledge_dir; not watching")
		} else {
			w, err := watch.NewWatcher(a.settings.KnowledgeDir, watch.DefaultDebounce, func() error {
				if err := s.reload(ctx); err != nil {
					return err
				}
				ui.PrintInfo("knowledge reloaded")
				return nil
			})
			if err != nil {
				return err
			}
			w.Start()
			defer w.Stop()
		}
	}

	history, err := homedir.Expand(opts.HistoryFile)
	if err != nil {
		history = ""
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ui.Prompt(string(s.eng.Dialect())),
		HistoryFile:     history,
		AutoComplete:    tableCompleter{s},
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer rl.Close()

	ui.PrintHeader("nlsql "+string(s.eng.Dialect()), "Ask a question, or type .help")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if quit := s.handle(ctx, line); quit {
			return nil
		}
		rl.SetPrompt(ui.Prompt(string(s.eng.Dialect())))
	}
}

// handle runs one line of input and reports whether the shell should exit.
func (s *shell) handle(ctx context.Context, line string) bool {
	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	var err error
	switch strings.ToLower(command) {
	case ".quit", ".exit":
		return true
	case ".help":
		fmt.Fprintln(s.out, shellHelp)
	case ".schema":
		err = ui.PrintMarkdown(ui.FactsMarkdown(s.eng.Facts()))
	case ".reload":
		if err = s.reload(ctx); err == nil {
			ui.PrintSuccess("reloaded")
		}
	case ".status":
		err = s.status(ctx)
	case ".sql":
		err = s.query(ctx, rest)
	case ".explain":
		err = s.explain(ctx, rest)
	default:
		if strings.HasPrefix(command, ".") {
			ui.PrintError("unknown command %s (type .help)", command)
			return false
		}
		err = s.ask(ctx, line)
	}
	if err != nil {
		s.app.report(err)
	}
	return false
}

const shellHelp = `Commands:
  <question>         ask a question and run the generated SQL
  .sql <statement>   run SQL directly
  .explain <q>       show the SQL for a question without running it
  .schema            show the introspected schema
  .reload            reconnect and re-read the schema and knowledge
  .status            ping the database and show connection pool usage
  .help              show this help
  .quit / .exit      leave the shell`

func (s *shell) reload(ctx context.Context) error {
	cfg, err := s.app.engineConfig()
	if err != nil {
		return err
	}
	ctx, cancel := s.app.withTimeout(ctx)
	defer cancel()
	return s.eng.Configure(ctx, cfg)
}

func (s *shell) ask(ctx context.Context, question string) error {
	ctx, cancel := s.app.withTimeout(ctx)
	defer cancel()

	stop := s.app.spin("Thinking")
	resp, err := s.eng.Ask(ctx, question)
	stop()
	if err != nil {
		return err
	}
	return s.app.printResponse(resp)
}

func (s *shell) explain(ctx context.Context, question string) error {
	ctx, cancel := s.app.withTimeout(ctx)
	defer cancel()

	stop := s.app.spin("Thinking")
	sql, err := s.eng.AskForSQL(ctx, question)
	stop()
	if err != nil {
		return err
	}
	return s.app.printResponse(engine.NewResponse(sql, question, nil))
}

func (s *shell) status(ctx context.Context) error {
	ctx, cancel := s.app.withTimeout(ctx)
	defer cancel()

	stats, err := s.eng.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s connected: %d open (%d in use, %d idle, max %d), %d failed health checks\n",
		s.eng.Dialect(), stats.OpenConnections, stats.InUse, stats.Idle,
		stats.MaxOpenConnections, stats.FailedHealthChecks)
	return nil
}

func (s *shell) query(ctx context.Context, sql string) error {
	if sql == "" {
		ui.PrintError("usage: .sql <statement>")
		return nil
	}
	ctx, cancel := s.app.withTimeout(ctx)
	defer cancel()

	rows, err := s.eng.RunQuery(ctx, sql)
	if err != nil {
		return err
	}
	return s.app.printResponse(engine.NewResponse(sql, "", rows))
}

// completer offers dot-commands and the introspected table names.
func (s *shell) completer() *readline.PrefixCompleter {
	seen := map[string]bool{}
	var tables []readline.PrefixCompleterInterface
	for _, f := range s.eng.Facts() {
		if !seen[f.TableName] {
			seen[f.TableName] = true
			tables = append(tables, readline.PcItem(f.TableName))
		}
	}
	return readline.NewPrefixCompleter(
		readline.PcItem(".sql", tables...),
		readline.PcItem(".explain"),
		readline.PcItem(".schema"),
		readline.PcItem(".reload"),
		readline.PcItem(".status"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
	)
}

// tableCompleter rebuilds the completion tree on every request, so tables
// picked up by a reload are offered without restarting the shell.
type tableCompleter struct {
	s *shell
}

func (c tableCompleter) Do(line []rune, pos int) ([][]rune, int) {
	return c.s.completer().Do(line, pos)
}

func serveMetrics(addr string, prom *telemetry.PrometheusTelemetry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", prom.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			debug.Warn("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	ui.PrintInfo("metrics on http://%s/metrics", displayAddr(addr))
	return srv
}

func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
