// Package logflags centralises construction of the per-component loggers
// used across the simulator. Components obtain a pre-configured
// *logrus.Entry tagged with their layer name; verbosity is toggled globally
// so the CLI can wire a single --verbose flag.
package logflags

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu      sync.Mutex
	verbose bool
	out     io.Writer
)

// Setup configures global logger behaviour. When w is nil loggers keep
// logrus' default output (stderr).
func Setup(verboseFlag bool, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	verbose = verboseFlag
	out = w
}

func makeLogger(fields logrus.Fields) *logrus.Entry {
	mu.Lock()
	defer mu.Unlock()
	logger := logrus.New()
	logger.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if out != nil {
		logger.SetOutput(out)
	}
	logger.Level = logrus.InfoLevel
	if verbose {
		logger.Level = logrus.DebugLevel
	}
	return logger.WithFields(fields)
}

// CoordinatorLogger returns a logger for the coordinator layer.
func CoordinatorLogger() *logrus.Entry {
	return makeLogger(logrus.Fields{"layer": "coordinator"})
}

// WorkerLogger returns a logger for a single worker, tagged with its slot
// and identity.
func WorkerLogger(slot int, id string) *logrus.Entry {
	return makeLogger(logrus.Fields{"layer": "worker", "slot": slot, "id": id})
}

// EventLogger returns a logger for the event feed listener.
func EventLogger() *logrus.Entry {
	return makeLogger(logrus.Fields{"layer": "events"})
}
