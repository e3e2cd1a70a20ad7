// Package dublog is a minimal wrapper around logrus: a small struct exposing
// just the handful of methods callers actually need, rather than threading a
// full logrus.Logger (or its Fields API) through every function signature.
package dublog

import "github.com/sirupsen/logrus"

// Logger logs structured diagnostics. The zero value is not usable; use New.
type Logger struct {
	entry *logrus.Entry
}

// New returns a Logger writing through l (or logrus.StandardLogger() if l is
// nil).
func New(l *logrus.Logger) *Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &Logger{entry: logrus.NewEntry(l)}
}

// With returns a Logger with an additional structured field attached, for
// diagnostics that should carry the package or configuration name they
// concern (every *Warning*-class diagnostic in this module does).
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// Warn logs a non-fatal diagnostic.
func (l *Logger) Warn(msg string) {
	l.entry.Warn(msg)
}

// Warnf logs a formatted non-fatal diagnostic.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

// Debugf logs a formatted debug-level trace message.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}
