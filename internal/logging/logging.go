// Package logging provides the engine's shared logrus logger, pre-tagged
// per component the way the teacher tagged its log.Printf calls with
// "[INFO]"/"[ERROR]" prefixes.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLevel adjusts the base logger's level (used by the CLI's --log-level flag).
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}

// For returns a logger tagged with component=name, mirroring the original's
// per-module log targets ("comrade.watcher", "comrade.watcher.raw", ...).
func For(component string) *logrus.Entry {
	return base.WithField("component", component)
}
