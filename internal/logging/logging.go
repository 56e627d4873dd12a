// Package logging configures logrus for the server and migration binaries.
package logging

import (
	"io" // Output destination

	"github.com/sirupsen/logrus" // Structured logging
)

// Setup configures the standard logrus logger and returns it.
// Production logs are JSON, development logs are text with full timestamps.
// An unknown level name falls back to info.
func Setup(out io.Writer, level string, isProd bool) *logrus.Logger {
	logger := logrus.StandardLogger()
	logger.SetOutput(out)
	if isProd {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	if err != nil {
		logger.WithField("level", level).Warn("Unknown LOG_LEVEL, using info")
	}
	return logger
}
