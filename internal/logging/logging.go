// Package logging holds the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is usable before Init; Init only reconfigures it.
var Log = logrus.New()

// Init configures Log. LOG_LEVEL and LOG_FORMAT override the given level and
// format; format is "json" or "text". Logs go to stderr so stdout stays free
// for command output.
func Init(level, format string) {
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		level = v
	}
	if v, ok := os.LookupEnv("LOG_FORMAT"); ok {
		format = v
	}
	if strings.TrimSpace(level) == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if strings.ToLower(strings.TrimSpace(format)) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	Log.SetOutput(os.Stderr)
}

// Component returns an entry tagged with the subsystem name.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}

// Discard returns an entry that drops everything; handy in tests.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
