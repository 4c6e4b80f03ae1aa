// Package logging sets up the process-wide logrus entry the rest of
// lightclientd logs through, the same package-level-Log pattern the
// teacher uses in common/common.go.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the package-wide structured logger. Callers set fields with
// Log.WithFields(...) rather than constructing their own *logrus.Entry.
var Log = logrus.NewEntry(logrus.StandardLogger())

// Configure points the standard logger at level and, if file is
// non-empty, appends JSON-formatted entries to it instead of stderr.
func Configure(level string, file string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(parsed)

	if file == "" {
		return nil
	}
	out, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	return nil
}
