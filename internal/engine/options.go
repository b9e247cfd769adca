package engine

import (
	"context"

	"github.com/satishbabariya/nlsql/internal/adapters/telemetry"
	"github.com/satishbabariya/nlsql/internal/core/inference"
)

// Inference runs the model binary. *inference.Bridge implements it.
type Inference interface {
	Run(ctx context.Context, prompt string, maxTokens int) (string, error)
	Prime(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// InferenceFactory builds the inference runner for a configuration.
type InferenceFactory func(cliPath, modelPath string) Inference

func defaultInference(cliPath, modelPath string) Inference {
	return inference.New(cliPath, modelPath)
}

// Option configures an Engine.
type Option func(*Engine)

// WithPriming runs the priming prompt once after every successful configure.
func WithPriming(enabled bool) Option {
	return func(e *Engine) {
		e.prime = enabled
	}
}

// WithMaxTokens sets the token budget passed to the inference process.
func WithMaxTokens(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

// WithTelemetry sets the telemetry adapter.
func WithTelemetry(t telemetry.Telemetry) Option {
	return func(e *Engine) {
		if t != nil {
			e.telemetry = t
		}
	}
}

// WithInference replaces the inference runner factory.
func WithInference(f InferenceFactory) Option {
	return func(e *Engine) {
		if f != nil {
			e.newInference = f
		}
	}
}
