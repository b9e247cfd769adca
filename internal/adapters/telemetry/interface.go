// Package telemetry records engine activity: queries, inference runs,
// connection events and errors.
package telemetry

import (
	"context"
	"time"
)

// Telemetry defines the telemetry adapter interface.
type Telemetry interface {
	// RecordQuery records a SQL execution.
	RecordQuery(ctx context.Context, info QueryInfo)

	// RecordInference records one run of the inference process.
	RecordInference(ctx context.Context, info InferenceInfo)

	// RecordError records an error.
	RecordError(ctx context.Context, info ErrorInfo)

	// RecordConnection records a connection event.
	RecordConnection(ctx context.Context, info ConnectionInfo)

	// Close closes the telemetry adapter.
	Close(ctx context.Context) error
}

// QueryInfo contains information about a query.
type QueryInfo struct {
	// Dialect is the backend the query ran on.
	Dialect string

	// Duration is how long execution and conversion took.
	Duration time.Duration

	// Success indicates if the query succeeded.
	Success bool

	// Rows is the number of rows returned.
	Rows int
}

// InferenceInfo contains information about an inference run.
type InferenceInfo struct {
	// Operation is "prime" or "ask".
	Operation string

	Duration time.Duration
	Success  bool
}

// ErrorInfo contains information about an error.
type ErrorInfo struct {
	// Error is the error that occurred.
	Error error

	// Operation is the engine operation that failed.
	Operation string
}

// ConnectionInfo contains information about a connection event.
type ConnectionInfo struct {
	// Dialect is the backend of the session.
	Dialect string

	// Event is the event type (connect, disconnect).
	Event string

	Duration time.Duration
	Success  bool
}

// Config holds telemetry configuration.
type Config struct {
	// Type is the telemetry type (noop, prometheus).
	Type string

	// Namespace prefixes metric names. Defaults to "nlsql".
	Namespace string
}
