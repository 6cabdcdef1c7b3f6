package adapters

// LogLevel selects how much engine diagnostics gets through.
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
	LogLevelNone  LogLevel = "NONE"
)

// LoggerAdapter receives the engine's diagnostics: session transitions,
// dropped events, transport failures. Implement it to route them into the
// host's own logging; messages use Printf-style formatting.
type LoggerAdapter interface {
	Debug(message string, args ...interface{})
	Info(message string, args ...interface{})
	Warn(message string, args ...interface{})
	Error(message string, args ...interface{})
}
