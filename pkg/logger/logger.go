// Package logger wraps logrus with a service-scoped entry so every line
// carries the service name and any run context fields.
package logger

import (
	"os"

	log "github.com/sirupsen/logrus"
)

var base *log.Entry

// Init configures the process logger. level is a logrus level name
// ("debug", "info", ...); unknown values fall back to info.
func Init(service string, level string) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)

	base = log.WithField("service", service)
}

func entry() *log.Entry {
	if base == nil {
		Init("retailsync", "info")
	}
	return base
}

// WithFields returns a child entry carrying extra structured fields.
func WithFields(fields log.Fields) *log.Entry {
	return entry().WithFields(fields)
}

func WithError(err error) *log.Entry {
	return entry().WithError(err)
}

func Debugf(format string, args ...interface{}) {
	entry().Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	entry().Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	entry().Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	entry().Errorf(format, args...)
}
