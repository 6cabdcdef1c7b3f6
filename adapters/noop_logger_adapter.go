package adapters

// NoOpLoggerAdapter discards all diagnostics. Useful in tests and for hosts
// that want the engine fully silent.
type NoOpLoggerAdapter struct{}

// NewNoOpLoggerAdapter creates a logger that discards everything.
func NewNoOpLoggerAdapter() *NoOpLoggerAdapter {
	return &NoOpLoggerAdapter{}
}

func (n *NoOpLoggerAdapter) Debug(message string, args ...any) {}
func (n *NoOpLoggerAdapter) Info(message string, args ...any)  {}
func (n *NoOpLoggerAdapter) Warn(message string, args ...any)  {}
func (n *NoOpLoggerAdapter) Error(message string, args ...any) {}
