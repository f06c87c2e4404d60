package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

type Options struct {
	Debug   bool
	Verbose bool
	Quiet   bool
	Output  io.Writer
}

// Configure sets level and output of a logrus logger from CLI switches.
// Without Debug or Verbose the logger is silenced so only scan output reaches
// the terminal.
func Configure(logger *logrus.Logger, opts Options) {
	if logger == nil {
		return
	}
	target := opts.Output
	if target == nil {
		target = os.Stderr
	}

	if opts.Debug {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetOutput(target)
		return
	}

	logger.SetLevel(logrus.InfoLevel)

	if opts.Quiet {
		logger.SetOutput(io.Discard)
		return
	}

	if opts.Verbose {
		logger.SetOutput(target)
		return
	}

	logger.SetOutput(io.Discard)
}

// NewCLILogger returns a human readable logger for terminal use together with
// the underlying logrus instance so callers can Configure it.
func NewCLILogger(component string, opts Options) (*StdoutLogger, *logrus.Logger) {
	l := logrus.New()
	l.SetFormatter(&prefixed.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
		ForceFormatting: true,
	})
	Configure(l, opts)
	return NewLogrusLogger(l, component), l
}
