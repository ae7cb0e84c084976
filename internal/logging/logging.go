// Package logging provides the process-wide structured logger.
package logging

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logg *logrus.Logger
	once sync.Once
)

// GetLogger returns the shared logger. Level and format come from
// BILLEXACT_LOG_LEVEL and BILLEXACT_LOG_FORMAT ("json" for machine output);
// defaults are info level, text format.
func GetLogger() *logrus.Logger {
	once.Do(func() {
		logg = logrus.New()
		logg.SetOutput(os.Stderr)

		if os.Getenv("BILLEXACT_LOG_FORMAT") == "json" {
			logg.SetFormatter(&logrus.JSONFormatter{})
		}

		level := logrus.InfoLevel
		if s := os.Getenv("BILLEXACT_LOG_LEVEL"); s != "" {
			if parsed, err := logrus.ParseLevel(s); err == nil {
				level = parsed
			}
		}
		logg.SetLevel(level)
	})
	return logg
}

// LogError records a structured error with its module/function origin and
// optional contextual data.
func LogError(logger *logrus.Logger, module, funcName, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   module,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}
