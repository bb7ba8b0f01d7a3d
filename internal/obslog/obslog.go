// Package obslog wraps logrus for the coordinator/worker progress
// logging spec.md §6 requires ("All progress reported via log lines
// on the coordinator") and tracks the lightweight run counters
// SPEC_FULL.md's domain-stack supplement adds (cells processed,
// halos found, splits, acceptances).
package obslog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logrus.Logger configured the way the coordinator and
// cmd/halofinder expect: text formatting, timestamps, to stderr.
func New() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.InfoLevel)
	return log
}
