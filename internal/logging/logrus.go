package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogrusLogger adapts a logrus entry to the Logger interface. It is what the
// binary uses; StdoutLogger stays around for tests and quick debugging.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger builds a JSON logrus logger at the given level
// ("debug", "info", "warn", "error"; anything else means info).
func NewLogrusLogger(level string, out io.Writer) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(ParseLevel(level))
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

// ParseLevel maps a level name onto logrus levels, defaulting to info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func toLogrusFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}

func (l *LogrusLogger) Debug(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Debug(msg)
}

func (l *LogrusLogger) Info(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Info(msg)
}

func (l *LogrusLogger) Warn(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Warn(msg)
}

func (l *LogrusLogger) Error(msg string, fields ...Field) {
	l.entry.WithFields(toLogrusFields(fields)).Error(msg)
}

func (l *LogrusLogger) With(fields ...Field) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(toLogrusFields(fields))}
}
