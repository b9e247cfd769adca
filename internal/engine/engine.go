// Package engine wires sessions, introspection, inference and row conversion
// into the question-answering pipeline.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/satishbabariya/nlsql/internal/adapters/database"
	"github.com/satishbabariya/nlsql/internal/adapters/database/pool"
	"github.com/satishbabariya/nlsql/internal/adapters/telemetry"
	"github.com/satishbabariya/nlsql/internal/apperr"
	"github.com/satishbabariya/nlsql/internal/config"
	"github.com/satishbabariya/nlsql/internal/core/extract"
	"github.com/satishbabariya/nlsql/internal/core/inference"
	"github.com/satishbabariya/nlsql/internal/core/introspection"
	"github.com/satishbabariya/nlsql/internal/core/prompt"
	"github.com/satishbabariya/nlsql/internal/core/rowconv"
	"github.com/satishbabariya/nlsql/internal/debug"
)

// Response is the answer to a question: the SQL that was run and its rows.
type Response struct {
	SQL      string        `json:"sql"`
	Question string        `json:"question"`
	Data     []rowconv.Row `json:"data"`
}

// NewResponse builds a response, normalizing missing rows to an empty list.
func NewResponse(sql, question string, data []rowconv.Row) Response {
	if data == nil {
		data = []rowconv.Row{}
	}
	return Response{SQL: sql, Question: question, Data: data}
}

// Engine owns the configuration, the single live session and the knowledge
// text. Every public operation holds the engine lock for its full duration.
type Engine struct {
	mu sync.Mutex

	state     State
	cfg       config.Config
	session   database.Session
	converter *rowconv.Converter
	facts     []introspection.SchemaFact
	knowledge string
	runner    Inference

	prime        bool
	maxTokens    int
	telemetry    telemetry.Telemetry
	newInference InferenceFactory
}

// New creates an unconfigured engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		state:        Unconfigured,
		maxTokens:    inference.DefaultMaxTokens,
		telemetry:    telemetry.NewNoopTelemetry(),
		newInference: defaultInference,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Knowledge returns the knowledge text the question prompt embeds.
func (e *Engine) Knowledge() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.knowledge
}

// Facts returns the schema facts of the last successful configure.
func (e *Engine) Facts() []introspection.SchemaFact {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]introspection.SchemaFact(nil), e.facts...)
}

// Dialect returns the configured backend, or "" when unconfigured.
func (e *Engine) Dialect() config.DBType {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Unconfigured {
		return ""
	}
	return e.cfg.DBType
}

// Configure replaces the configuration. The previous session is closed first,
// even if opening the new one fails. Knowledge starts from cfg.SQLKnowledge
// on every call, so repeated configures never accumulate schema text.
func (e *Engine) Configure(ctx context.Context, cfg config.Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reset()

	if err := cfg.Validate(); err != nil {
		return e.fail(ctx, "configure", err)
	}

	start := time.Now()
	session, err := database.Open(ctx, cfg.DBType, cfg.ConnectionString)
	e.telemetry.RecordConnection(ctx, telemetry.ConnectionInfo{
		Dialect:  cfg.DBType.String(),
		Event:    "connect",
		Duration: time.Since(start),
		Success:  err == nil,
	})
	if err != nil {
		return e.fail(ctx, "configure", err)
	}

	facts, err := introspection.Introspect(ctx, session, cfg.ConnectionString)
	if err != nil {
		closeSession(session)
		return e.fail(ctx, "configure", err)
	}
	knowledge, err := introspection.AppendKnowledge(cfg.SQLKnowledge, facts)
	if err != nil {
		closeSession(session)
		return e.fail(ctx, "configure", err)
	}
	converter, err := rowconv.For(cfg.DBType)
	if err != nil {
		closeSession(session)
		return e.fail(ctx, "configure", err)
	}

	runner := e.newInference(cfg.AICLIPath, cfg.AIModelPath)
	if e.prime {
		start := time.Now()
		line, err := runner.Prime(ctx, prompt.Priming(cfg.DBType), e.maxTokens)
		e.telemetry.RecordInference(ctx, telemetry.InferenceInfo{
			Operation: "prime",
			Duration:  time.Since(start),
			Success:   err == nil,
		})
		if err != nil {
			closeSession(session)
			return e.fail(ctx, "configure", err)
		}
		debug.Debug("priming output discarded", "line", line)
	}

	cfg.SQLKnowledge = knowledge
	e.cfg = cfg
	e.session = session
	e.converter = converter
	e.facts = facts
	e.knowledge = knowledge
	e.runner = runner
	e.state = Configured

	debug.Info("engine configured", "dialect", cfg.DBType, "facts", len(facts))
	return nil
}

// AskForSQL asks the model for a statement answering question and returns the
// extracted SQL without running it.
func (e *Engine) AskForSQL(ctx context.Context, question string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sql, err := e.askForSQL(ctx, question)
	if err != nil {
		return "", e.fail(ctx, "ask_for_sql", err)
	}
	return sql, nil
}

// RunQuery executes sql on the session and returns the converted rows.
func (e *Engine) RunQuery(ctx context.Context, sql string) ([]rowconv.Row, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rows, err := e.runQuery(ctx, sql)
	if err != nil {
		return nil, e.fail(ctx, "run_query", err)
	}
	return rows, nil
}

// Ask answers question: it asks for SQL, runs it and returns both. A failure
// in either step is returned as is and the other step is not attempted.
func (e *Engine) Ask(ctx context.Context, question string) (Response, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sql, err := e.askForSQL(ctx, question)
	if err != nil {
		return Response{}, e.fail(ctx, "ask", err)
	}
	rows, err := e.runQuery(ctx, sql)
	if err != nil {
		return Response{}, e.fail(ctx, "ask", err)
	}
	return NewResponse(sql, question, rows), nil
}

// Status pings the live session and returns its pool statistics.
func (e *Engine) Status(ctx context.Context) (pool.Stats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireConfigured(); err != nil {
		return pool.Stats{}, err
	}
	p := e.session.Pool()
	if err := p.HealthCheck(ctx); err != nil {
		return p.Stats(), e.fail(ctx, "status", apperr.Wrap(apperr.ConnectionError, err, ""))
	}
	return p.Stats(), nil
}

// Close releases the session and returns the engine to Unconfigured.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	if e.session != nil {
		err = e.session.Close()
		e.telemetry.RecordConnection(context.Background(), telemetry.ConnectionInfo{
			Dialect: e.cfg.DBType.String(),
			Event:   "disconnect",
			Success: err == nil,
		})
	}
	e.clear()
	return err
}

func (e *Engine) requireConfigured() error {
	if e.state != Configured || e.session == nil {
		return apperr.New(apperr.ConfigError, "Engine is not configured")
	}
	return nil
}

func (e *Engine) askForSQL(ctx context.Context, question string) (string, error) {
	if err := e.requireConfigured(); err != nil {
		return "", err
	}

	e.state = AwaitingInference
	defer func() { e.state = Configured }()

	start := time.Now()
	text, err := e.runner.Run(ctx, prompt.Question(e.knowledge, e.cfg.DBType, question), e.maxTokens)
	e.telemetry.RecordInference(ctx, telemetry.InferenceInfo{
		Operation: "ask",
		Duration:  time.Since(start),
		Success:   err == nil,
	})
	if err != nil {
		return "", err
	}
	return extract.SQL(text)
}

func (e *Engine) runQuery(ctx context.Context, sql string) ([]rowconv.Row, error) {
	if err := e.requireConfigured(); err != nil {
		return nil, err
	}

	e.state = ExecutingQuery
	defer func() { e.state = Configured }()

	start := time.Now()
	result, err := e.execute(ctx, sql)
	e.telemetry.RecordQuery(ctx, telemetry.QueryInfo{
		Dialect:  e.cfg.DBType.String(),
		Duration: time.Since(start),
		Success:  err == nil,
		Rows:     len(result),
	})
	return result, err
}

func (e *Engine) execute(ctx context.Context, sql string) ([]rowconv.Row, error) {
	rows, err := e.session.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result, err := e.converter.ConvertRows(rows)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = []rowconv.Row{}
	}
	return result, nil
}

// reset closes the live session, if any, and clears engine state.
func (e *Engine) reset() {
	if e.session != nil {
		closeSession(e.session)
	}
	e.clear()
}

func (e *Engine) clear() {
	e.state = Unconfigured
	e.cfg = config.Config{}
	e.session = nil
	e.converter = nil
	e.facts = nil
	e.knowledge = ""
	e.runner = nil
}

func (e *Engine) fail(ctx context.Context, op string, err error) error {
	e.telemetry.RecordError(ctx, telemetry.ErrorInfo{Error: err, Operation: op})
	debug.Debug("engine operation failed", "op", op, "kind", apperr.KindOf(err), "error", err)
	return err
}

func closeSession(s database.Session) {
	if err := s.Close(); err != nil {
		debug.Warn("failed to close session", "dialect", s.Dialect(), "error", err)
	}
}
