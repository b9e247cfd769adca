package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	err := New(ConfigError, "Invalid database name")
	assert.Equal(t, "Failed to use config information: Invalid database name", err.Error())

	bare := &Error{Kind: UnknownError}
	assert.Equal(t, "Unknown error", bare.Error())
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(ConnectionError, cause, "MySQL connection error")

	assert.Equal(t, "MySQL connection error: dial tcp: connection refused", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrConnection)
	assert.NotErrorIs(t, err, ErrQuery)
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", New(QueryError, "boom"))
	assert.Equal(t, QueryError, KindOf(wrapped))
	assert.True(t, Is(wrapped, QueryError))
	assert.Equal(t, UnknownError, KindOf(errors.New("plain")))
	assert.False(t, Is(nil, UnknownError))
}

func TestToPayload(t *testing.T) {
	for _, kind := range Kinds {
		t.Run(string(kind), func(t *testing.T) {
			p := ToPayload(New(kind, "msg"))
			assert.Equal(t, string(kind), p.Err)
			assert.Equal(t, "msg", p.Msg)
		})
	}

	p := ToPayload(errors.New("raw"))
	assert.Equal(t, "UnknownError", p.Err)
	assert.Equal(t, "raw", p.Msg)

	p = ToPayload(&Error{Kind: UnknownError})
	assert.Equal(t, "An unknown error occurred.", p.Msg)
}

func TestJSON(t *testing.T) {
	out := JSON(New(ExecutionError, "Failed to extract SQL query from AI response"))
	require.JSONEq(t, `{"err":"ExecutionError","msg":"Failed to extract SQL query from AI response"}`, out)
}
