package logging

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is a deliberately small logging interface passed into every
// component. Tests swap in testutil.DummyLogger.
type Logger interface {
	// Debug logs a debug-level message.
	Debug(msg string, fields ...Field)

	// Info logs an informational message.
	Info(msg string, fields ...Field)

	// Warn logs a warning.
	Warn(msg string, fields ...Field)

	// Error logs an error.
	Error(msg string, fields ...Field)

	// With returns a child logger with persistent fields.
	With(fields ...Field) Logger
}

// Field is a simple key/value pair for structured logging fields.
type Field struct {
	Key   string
	Value interface{}
}

// StdoutLogger adapts a logrus entry to Logger. The default constructor prints
// JSON lines to stdout with the component attached to every entry.
type StdoutLogger struct {
	entry *logrus.Entry
}

// NewStdoutLogger creates a JSON logger writing to stdout. component is
// optional and is included as a persistent field.
func NewStdoutLogger(component string) *StdoutLogger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyMsg: "msg",
		},
	})
	return NewLogrusLogger(l, component)
}

// NewLogrusLogger wraps an already configured logrus logger.
func NewLogrusLogger(l *logrus.Logger, component string) *StdoutLogger {
	entry := logrus.NewEntry(l)
	if component != "" {
		entry = entry.WithField("component", component)
	}
	return &StdoutLogger{entry: entry}
}

// Discard returns a logger that drops everything.
func Discard() *StdoutLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewLogrusLogger(l, "")
}

func toLogrusFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			out[f.Key] = err.Error()
			continue
		}
		out[f.Key] = f.Value
	}
	return out
}

func (s *StdoutLogger) Debug(msg string, fields ...Field) {
	s.entry.WithFields(toLogrusFields(fields)).Debug(msg)
}

func (s *StdoutLogger) Info(msg string, fields ...Field) {
	s.entry.WithFields(toLogrusFields(fields)).Info(msg)
}

func (s *StdoutLogger) Warn(msg string, fields ...Field) {
	s.entry.WithFields(toLogrusFields(fields)).Warn(msg)
}

func (s *StdoutLogger) Error(msg string, fields ...Field) {
	s.entry.WithFields(toLogrusFields(fields)).Error(msg)
}

func (s *StdoutLogger) With(fields ...Field) Logger {
	return &StdoutLogger{entry: s.entry.WithFields(toLogrusFields(fields))}
}
