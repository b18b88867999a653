package logging

// Logger is a deliberately small, framework-agnostic logging interface.
// Components receive a Logger and derive a child with With() so every line
// carries the component that produced it.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger with persistent fields.
	With(fields ...Field) Logger
}

// Field is a simple key/value pair for structured logging fields.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for building a Field inline.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Err wraps an error as an "error" field. A nil error yields an empty string
// so JSON encoders never choke on it.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: ""}
	}
	return Field{Key: "error", Value: err.Error()}
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}

func (n NopLogger) With(...Field) Logger { return n }
