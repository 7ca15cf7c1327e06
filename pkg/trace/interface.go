package trace

import (
	"context"
	"time"
)

// Exporter defines the interface for exporting operation traces.
// Implementations must be safe for concurrent use.
type Exporter interface {
	// Export writes a trace record to the configured destination.
	Export(ctx context.Context, record *TraceRecord) error

	// Close flushes any buffered records and releases resources.
	// Should be called during graceful shutdown.
	Close() error
}

// TraceRecord represents a sanitized operation trace ready for export.
// It contains no request payloads, curve data, or API keys.
type TraceRecord struct {
	// Timestamp is the operation start time
	Timestamp time.Time `json:"timestamp"`

	// OperationID uniquely identifies this operation (for correlation)
	OperationID string `json:"operationId"`

	// Operation is the operation type: "compare", "insights", "chat", "export"
	Operation string `json:"operation"`

	// DurationMs is the total operation duration in milliseconds
	DurationMs int64 `json:"durationMs"`

	// Status is "success" or "error"
	Status string `json:"status"`

	// ErrorType classifies the failure when Status is "error"
	ErrorType string `json:"errorType,omitempty"`

	// Spans contains per-stage timing and status
	Spans []SpanRecord `json:"spans,omitempty"`
}

// SpanRecord is one timed stage within an operation.
type SpanRecord struct {
	Stage      string `json:"stage"`
	DurationMs int64  `json:"durationMs"`
	Status     string `json:"status"`
}
