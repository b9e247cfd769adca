package telemetry

import (
	"context"
)

// NoopTelemetry is a no-op implementation of the Telemetry interface.
type NoopTelemetry struct{}

// NewNoopTelemetry creates a new no-op telemetry adapter.
func NewNoopTelemetry() *NoopTelemetry {
	return &NoopTelemetry{}
}

func (n *NoopTelemetry) RecordQuery(ctx context.Context, info QueryInfo)           {}
func (n *NoopTelemetry) RecordInference(ctx context.Context, info InferenceInfo)   {}
func (n *NoopTelemetry) RecordError(ctx context.Context, info ErrorInfo)           {}
func (n *NoopTelemetry) RecordConnection(ctx context.Context, info ConnectionInfo) {}

// Close does nothing.
func (n *NoopTelemetry) Close(ctx context.Context) error {
	return nil
}

var _ Telemetry = (*NoopTelemetry)(nil)
