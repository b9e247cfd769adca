package engine

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/nlsql/internal/adapters/telemetry"
	"github.com/satishbabariya/nlsql/internal/apperr"
	"github.com/satishbabariya/nlsql/internal/config"
	"github.com/satishbabariya/nlsql/internal/core/introspection"
	"github.com/satishbabariya/nlsql/internal/core/rowconv"
)

type fakeInference struct {
	output   string
	err      error
	primeErr error

	prompts []string
	primes  []string
}

func (f *fakeInference) Run(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.output, f.err
}

func (f *fakeInference) Prime(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.primes = append(f.primes, prompt)
	return "ok", f.primeErr
}

func (f *fakeInference) factory() InferenceFactory {
	return func(string, string) Inference { return f }
}

type recordingTelemetry struct {
	telemetry.NoopTelemetry

	mu      sync.Mutex
	queries []telemetry.QueryInfo
	errors  []telemetry.ErrorInfo
}

func (r *recordingTelemetry) RecordQuery(ctx context.Context, info telemetry.QueryInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, info)
}

func (r *recordingTelemetry) RecordError(ctx context.Context, info telemetry.ErrorInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, info)
}

// schoolDB creates a SQLite file with a students table.
func schoolDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "school.db")

	e := New()
	require.NoError(t, e.Configure(context.Background(), config.Config{
		DBType:           config.SQLite,
		ConnectionString: "sqlite://" + path,
	}))
	for _, stmt := range []string{
		`CREATE TABLE students (id INTEGER PRIMARY KEY, name TEXT NOT NULL, grade REAL)`,
		`INSERT INTO students VALUES (1, 'Ada', 3.9), (2, 'Grace', 3.7)`,
	} {
		_, err := e.RunQuery(context.Background(), stmt)
		require.NoError(t, err)
	}
	require.NoError(t, e.Close())
	return path
}

func sqliteConfig(path string) config.Config {
	return config.Config{
		DBType:           config.SQLite,
		ConnectionString: "sqlite://" + path,
		AICLIPath:        "llm",
		AIModelPath:      "model.gguf",
		SQLKnowledge:     "students of a small school",
	}
}

func TestOperationsRequireConfigure(t *testing.T) {
	ctx := context.Background()
	e := New()
	assert.Equal(t, Unconfigured, e.State())

	_, err := e.AskForSQL(ctx, "how many students?")
	require.Error(t, err)
	assert.Equal(t, apperr.ConfigError, apperr.KindOf(err))

	_, err = e.RunQuery(ctx, "select 1")
	assert.Equal(t, apperr.ConfigError, apperr.KindOf(err))

	_, err = e.Ask(ctx, "how many students?")
	assert.Equal(t, apperr.ConfigError, apperr.KindOf(err))
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	e := New()
	defer e.Close()

	require.NoError(t, e.Configure(ctx, config.Config{DBType: config.SQLite, ConnectionString: ":memory:"}))
	assert.Equal(t, Configured, e.State())
	assert.Equal(t, config.SQLite, e.Dialect())

	rows, err := e.RunQuery(ctx, "select 1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Len())
	assert.Equal(t, Configured, e.State())
}

func TestStudentsScenario(t *testing.T) {
	ctx := context.Background()
	path := schoolDB(t)
	fake := &fakeInference{output: "Sure! select * from students;"}

	e := New(WithInference(fake.factory()))
	defer e.Close()
	require.NoError(t, e.Configure(ctx, sqliteConfig(path)))

	resp, err := e.Ask(ctx, "list all students")
	require.NoError(t, err)
	assert.Equal(t, "select * from students;", resp.SQL)
	assert.Equal(t, "list all students", resp.Question)
	require.Len(t, resp.Data, 2)

	name, ok := resp.Data[1].Get("name")
	require.True(t, ok)
	assert.Equal(t, "Grace", name.AsString())

	require.Len(t, fake.prompts, 1)
	p := fake.prompts[0]
	assert.True(t, strings.HasPrefix(p, "<|system|>You are a helpful assistant based on the following knowledge: students of a small school"+introspection.KnowledgeSeparator))
	assert.Contains(t, p, `"table_name":"students"`)
	assert.True(t, strings.HasSuffix(p, "You will generate proper SQL statements for SQLite.<|end|><|user|>list all students<|end|>.<|assistant|>"))
}

func TestAskForSQLDoesNotExecute(t *testing.T) {
	ctx := context.Background()
	fake := &fakeInference{output: "SELECT count(*) FROM students; -- done"}
	tel := &recordingTelemetry{}

	e := New(WithInference(fake.factory()), WithTelemetry(tel))
	defer e.Close()
	require.NoError(t, e.Configure(ctx, sqliteConfig(schoolDB(t))))

	sql, err := e.AskForSQL(ctx, "how many?")
	require.NoError(t, err)
	assert.Equal(t, "SELECT count(*) FROM students;", sql)
	assert.Empty(t, tel.queries)
}

func TestAskShortCircuitsOnExtraction(t *testing.T) {
	ctx := context.Background()
	fake := &fakeInference{output: "I am not sure what you mean."}
	tel := &recordingTelemetry{}

	e := New(WithInference(fake.factory()), WithTelemetry(tel))
	defer e.Close()
	require.NoError(t, e.Configure(ctx, sqliteConfig(schoolDB(t))))

	_, err := e.Ask(ctx, "???")
	require.Error(t, err)
	assert.Equal(t, apperr.ExecutionError, apperr.KindOf(err))
	assert.Empty(t, tel.queries)
	require.Len(t, tel.errors, 1)
	assert.Equal(t, "ask", tel.errors[0].Operation)
	assert.Equal(t, Configured, e.State())
}

func TestAskPropagatesInferenceError(t *testing.T) {
	ctx := context.Background()
	fake := &fakeInference{err: apperr.New(apperr.EngineExecutionError, "spawn failed")}

	e := New(WithInference(fake.factory()))
	defer e.Close()
	require.NoError(t, e.Configure(ctx, sqliteConfig(schoolDB(t))))

	_, err := e.Ask(ctx, "list all students")
	assert.Equal(t, apperr.EngineExecutionError, apperr.KindOf(err))
}

func TestAskPropagatesQueryError(t *testing.T) {
	ctx := context.Background()
	fake := &fakeInference{output: "select * from instructors;"}

	e := New(WithInference(fake.factory()))
	defer e.Close()
	require.NoError(t, e.Configure(ctx, sqliteConfig(schoolDB(t))))

	_, err := e.Ask(ctx, "list all instructors")
	assert.Equal(t, apperr.QueryError, apperr.KindOf(err))
}

func TestConfigureTwiceResetsKnowledge(t *testing.T) {
	ctx := context.Background()
	path := schoolDB(t)
	e := New(WithInference((&fakeInference{}).factory()))
	defer e.Close()

	require.NoError(t, e.Configure(ctx, sqliteConfig(path)))
	first := e.Knowledge()
	facts := e.Facts()

	require.NoError(t, e.Configure(ctx, sqliteConfig(path)))
	assert.Equal(t, len(first), len(e.Knowledge()))
	assert.Equal(t, first, e.Knowledge())
	assert.Equal(t, facts, e.Facts())
	assert.Equal(t, 1, strings.Count(e.Knowledge(), introspection.KnowledgeSeparator))

	rows, err := e.RunQuery(ctx, "select count(*) as n from students")
	require.NoError(t, err)
	n, _ := rows[0].Get("n")
	assert.Equal(t, int64(2), n.AsInt())
}

func TestReconfigureClosesPreviousSession(t *testing.T) {
	ctx := context.Background()
	path := schoolDB(t)
	e := New(WithInference((&fakeInference{}).factory()))
	defer e.Close()

	require.NoError(t, e.Configure(ctx, sqliteConfig(path)))
	old := e.session

	require.NoError(t, e.Configure(ctx, sqliteConfig(path)))
	assert.NotSame(t, old, e.session)
	assert.EqualError(t, old.Pool().DB().Ping(), "sql: database is closed")
	assert.NoError(t, e.session.Pool().DB().Ping())
}

func TestFailedReconfigureClosesPreviousSession(t *testing.T) {
	ctx := context.Background()
	e := New(WithInference((&fakeInference{}).factory()))
	defer e.Close()

	require.NoError(t, e.Configure(ctx, sqliteConfig(schoolDB(t))))
	old := e.session

	err := e.Configure(ctx, config.Config{DBType: config.SQLite})
	assert.Equal(t, apperr.ConfigError, apperr.KindOf(err))
	assert.EqualError(t, old.Pool().DB().Ping(), "sql: database is closed")
	assert.Nil(t, e.session)
	assert.Equal(t, Unconfigured, e.State())
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	e := New(WithInference((&fakeInference{}).factory()))

	_, err := e.Status(ctx)
	assert.Equal(t, apperr.ConfigError, apperr.KindOf(err))

	require.NoError(t, e.Configure(ctx, sqliteConfig(schoolDB(t))))
	stats, err := e.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
	assert.False(t, stats.LastHealthCheck.IsZero())
	assert.Zero(t, stats.FailedHealthChecks)

	require.NoError(t, e.Close())
	_, err = e.Status(ctx)
	assert.Equal(t, apperr.ConfigError, apperr.KindOf(err))
}

func TestConfigureFailureLeavesUnconfigured(t *testing.T) {
	ctx := context.Background()
	e := New()
	require.NoError(t, e.Configure(ctx, config.Config{DBType: config.SQLite, ConnectionString: ":memory:"}))

	missing := filepath.Join(t.TempDir(), "missing", "x.db")
	err := e.Configure(ctx, config.Config{DBType: config.SQLite, ConnectionString: "file:" + missing + "?mode=ro"})
	require.Error(t, err)
	assert.Equal(t, apperr.ConnectionError, apperr.KindOf(err))
	assert.Equal(t, Unconfigured, e.State())
	assert.Empty(t, e.Knowledge())

	_, err = e.RunQuery(ctx, "select 1")
	assert.Equal(t, apperr.ConfigError, apperr.KindOf(err))
}

func TestConfigureRejectsInvalidConfig(t *testing.T) {
	e := New()
	err := e.Configure(context.Background(), config.Config{DBType: config.SQLite})
	assert.Equal(t, apperr.ConfigError, apperr.KindOf(err))

	err = e.Configure(context.Background(), config.Config{DBType: "Oracle", ConnectionString: "x"})
	assert.Equal(t, apperr.ConfigError, apperr.KindOf(err))
	assert.Equal(t, Unconfigured, e.State())
}

func TestPriming(t *testing.T) {
	ctx := context.Background()
	fake := &fakeInference{}
	e := New(WithPriming(true), WithInference(fake.factory()))
	defer e.Close()

	require.NoError(t, e.Configure(ctx, config.Config{DBType: config.SQLite, ConnectionString: ":memory:"}))
	require.Len(t, fake.primes, 1)
	assert.True(t, strings.HasSuffix(fake.primes[0], "For running in SQLite"))
}

func TestPrimingFailureFailsConfigure(t *testing.T) {
	ctx := context.Background()
	fake := &fakeInference{primeErr: apperr.New(apperr.EngineExecutionError, "no binary")}
	e := New(WithPriming(true), WithInference(fake.factory()))

	err := e.Configure(ctx, config.Config{DBType: config.SQLite, ConnectionString: ":memory:"})
	assert.Equal(t, apperr.EngineExecutionError, apperr.KindOf(err))
	assert.Equal(t, Unconfigured, e.State())
}

func TestAskWithInferenceBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a POSIX shell")
	}
	ctx := context.Background()
	bin := filepath.Join(t.TempDir(), "llm")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\necho 'Sure!'\necho 'select name from students order by id;'\n"), 0o755))

	cfg := sqliteConfig(schoolDB(t))
	cfg.AICLIPath = bin

	e := New(WithMaxTokens(64))
	defer e.Close()
	require.NoError(t, e.Configure(ctx, cfg))

	resp, err := e.Ask(ctx, "names please")
	require.NoError(t, err)
	assert.Equal(t, "select name from students order by id;", resp.SQL)
	require.Len(t, resp.Data, 2)
	first, _ := resp.Data[0].Get("name")
	assert.Equal(t, "Ada", first.AsString())
}

func TestResponseJSON(t *testing.T) {
	data, err := json.Marshal(NewResponse("select 1;", "q", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"sql":"select 1;","question":"q","data":[]}`, string(data))

	row := rowconv.NewRow(2)
	row.Set("b", rowconv.Int(1))
	row.Set("a", rowconv.Null())
	data, err = json.Marshal(NewResponse("select 1;", "q", []rowconv.Row{row}))
	require.NoError(t, err)
	assert.Equal(t, `{"sql":"select 1;","question":"q","data":[{"b":1,"a":null}]}`, string(data))
}

func TestCloseIsIdempotent(t *testing.T) {
	e := New()
	require.NoError(t, e.Configure(context.Background(), config.Config{DBType: config.SQLite, ConnectionString: ":memory:"}))
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	assert.Equal(t, Unconfigured, e.State())
}
