package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConfigureParsesLevel(t *testing.T) {
	if err := Configure("warn", ""); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if logrus.GetLevel() != logrus.WarnLevel {
		t.Fatalf("level = %v, want warn", logrus.GetLevel())
	}
}

func TestConfigureRejectsUnknownLevel(t *testing.T) {
	if err := Configure("not-a-level", ""); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}

func TestConfigureRedirectsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightclientd.log")
	if err := Configure("info", path); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	Log.Info("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected log output to be written to the configured file")
	}
}
