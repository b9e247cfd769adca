// Package apperr defines the closed error taxonomy shared by every engine component.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind names one member of the error taxonomy.
type Kind string

const (
	// ConfigError reports missing or invalid configuration and invalid derived identifiers.
	ConfigError Kind = "ConfigError"
	// SqlReadError reports a row that could not be decoded.
	SqlReadError Kind = "SqlReadError"
	// IOError reports filesystem or stream I/O failures.
	IOError Kind = "IOError"
	// EngineExecutionError reports inference subprocess spawn or I/O failures.
	EngineExecutionError Kind = "EngineExecutionError"
	// QueryError reports backend execution and introspection failures.
	QueryError Kind = "QueryError"
	// ServerError is reserved.
	ServerError Kind = "ServerError"
	// ConnectionError reports a session that could not be opened.
	ConnectionError Kind = "ConnectionError"
	// ExecutionError reports serialization and SQL extraction failures.
	ExecutionError Kind = "ExecutionError"
	// UnknownError is the catch-all for unanticipated conditions.
	UnknownError Kind = "UnknownError"
)

// Kinds lists every member of the taxonomy.
var Kinds = []Kind{
	ConfigError,
	SqlReadError,
	IOError,
	EngineExecutionError,
	QueryError,
	ServerError,
	ConnectionError,
	ExecutionError,
	UnknownError,
}

// Sentinel errors, one per kind, for errors.Is checks.
var (
	ErrConfig          = errors.New("nlsql: config error")
	ErrSqlRead         = errors.New("nlsql: sql read error")
	ErrIO              = errors.New("nlsql: io error")
	ErrEngineExecution = errors.New("nlsql: engine execution error")
	ErrQuery           = errors.New("nlsql: query error")
	ErrServer          = errors.New("nlsql: server error")
	ErrConnection      = errors.New("nlsql: connection error")
	ErrExecution       = errors.New("nlsql: execution error")
	ErrUnknown         = errors.New("nlsql: unknown error")
)

var sentinels = map[Kind]error{
	ConfigError:          ErrConfig,
	SqlReadError:         ErrSqlRead,
	IOError:              ErrIO,
	EngineExecutionError: ErrEngineExecution,
	QueryError:           ErrQuery,
	ServerError:          ErrServer,
	ConnectionError:      ErrConnection,
	ExecutionError:       ErrExecution,
	UnknownError:         ErrUnknown,
}

var prefixes = map[Kind]string{
	ConfigError:          "Failed to use config information",
	SqlReadError:         "Failed to read SQL rows",
	IOError:              "File IO error",
	EngineExecutionError: "Failed to execute engine",
	QueryError:           "Failed to query database",
	ServerError:          "Failed to start server",
	ConnectionError:      "Connection error",
	ExecutionError:       "Execution error",
	UnknownError:         "Unknown error",
}

// Error is a typed error carrying its taxonomy kind.
type Error struct {
	// Kind is the taxonomy member.
	Kind Kind

	// Message is the human-readable message.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix, ok := prefixes[e.Kind]
	if !ok {
		prefix = string(e.Kind)
	}
	if e.Message == "" {
		return prefix
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	if s, ok := sentinels[e.Kind]; ok && s == target {
		return true
	}
	return false
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around cause.
// The message is the cause's message unless one is supplied.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	msg := ""
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	if cause != nil {
		if msg == "" {
			msg = cause.Error()
		} else {
			msg = msg + ": " + cause.Error()
		}
	}
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// KindOf reports the kind of err. Errors outside the taxonomy are UnknownError.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return UnknownError
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Payload is the structured error emitted to callers.
type Payload struct {
	Err string `json:"err"`
	Msg string `json:"msg"`
}

// ToPayload converts any error into its structured payload.
func ToPayload(err error) Payload {
	var appErr *Error
	if errors.As(err, &appErr) {
		msg := appErr.Message
		if appErr.Kind == UnknownError && msg == "" {
			msg = "An unknown error occurred."
		}
		return Payload{Err: string(appErr.Kind), Msg: msg}
	}
	if err == nil {
		return Payload{Err: string(UnknownError), Msg: "An unknown error occurred."}
	}
	return Payload{Err: string(UnknownError), Msg: err.Error()}
}

// JSON renders the payload of err.
func JSON(err error) string {
	b, mErr := json.Marshal(ToPayload(err))
	if mErr != nil {
		return `{"err":"UnknownError","msg":"An unknown error occurred."}`
	}
	return string(b)
}
