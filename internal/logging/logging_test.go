package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snakenet/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{"", log.InfoLevel, false},
		{"debug", log.DebugLevel, false},
		{"WARN", log.WarnLevel, false},
		{"error", log.ErrorLevel, false},
		{"loud", log.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestFileSinkWritesLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "snakenet.log")
	cfg := config.LogConfig{Level: "info", File: path, MaxSizeMB: 1}

	logger, closer, err := New(cfg, SinkFile, "test")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info("peer joined", "id", "alice")
	logger.Debug("hidden")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file missing: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "peer joined") || !strings.Contains(out, "alice") {
		t.Errorf("log line missing: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug line written at info level")
	}
}
