package trace

import "context"

// NoopExporter is a zero-overhead exporter that does nothing.
// Used when tracing is disabled in configuration.
type NoopExporter struct{}

// Compile-time interface check
var _ Exporter = (*NoopExporter)(nil)

// NewNoopExporter creates a no-op exporter.
func NewNoopExporter() *NoopExporter {
	return &NoopExporter{}
}

// Export does nothing.
func (n *NoopExporter) Export(ctx context.Context, record *TraceRecord) error {
	return nil
}

// Close does nothing.
func (n *NoopExporter) Close() error {
	return nil
}
