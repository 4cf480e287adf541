package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_Levels(t *testing.T) {
	Init(false)
	if Log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("Init(false) level = %v, want info", Log.GetLevel())
	}

	Init(true)
	if Log.GetLevel() != zerolog.DebugLevel {
		t.Errorf("Init(true) level = %v, want debug", Log.GetLevel())
	}
}

func TestInitWithFile_WritesJSON(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &LoggingConfig{MaxSizeMB: 1}
	if err := InitWithFile(true, tmpDir, cfg); err != nil {
		t.Fatalf("InitWithFile failed: %v", err)
	}
	t.Cleanup(func() { CloseFileWriter() })

	want := filepath.Join(tmpDir, LogFileName)
	if got := GetLogFilePath(); got != want {
		t.Errorf("GetLogFilePath() = %q, want %q", got, want)
	}

	SetEnvironment("cicontainerzenwuzzdivzz1-00000000")
	t.Cleanup(func() { SetEnvironment("") })
	Info().Str("phase", "sweep").Msg("file logging works")

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)
	for _, fragment := range []string{`"message":"file logging works"`, `"phase":"sweep"`, `"env":"cicontainerzenwuzzdivzz1-00000000"`} {
		if !strings.Contains(content, fragment) {
			t.Errorf("log file missing %s, got %q", fragment, content)
		}
	}
}

func TestInitWithFile_Disabled(t *testing.T) {
	disabled := false
	if err := InitWithFile(false, t.TempDir(), &LoggingConfig{FileEnabled: &disabled}); err != nil {
		t.Fatalf("InitWithFile failed: %v", err)
	}
	if GetLogFilePath() != "" {
		t.Errorf("expected no log file when disabled, got %q", GetLogFilePath())
	}
}

func TestLoggingConfigDefaults(t *testing.T) {
	cfg := &LoggingConfig{}
	if !cfg.IsFileEnabled() {
		t.Error("file logging should default to enabled")
	}
	if cfg.GetMaxSizeMB() != 50 {
		t.Errorf("GetMaxSizeMB() = %d, want 50", cfg.GetMaxSizeMB())
	}
	if cfg.GetMaxAgeDays() != 7 {
		t.Errorf("GetMaxAgeDays() = %d, want 7", cfg.GetMaxAgeDays())
	}
	if cfg.GetMaxBackups() != 3 {
		t.Errorf("GetMaxBackups() = %d, want 3", cfg.GetMaxBackups())
	}
}

func TestGlobal_UsesPackageLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := Log
	Log = zerolog.New(&buf)
	t.Cleanup(func() { Log = prev })

	var g Global
	g.Warn().Msg("via interface")

	if !strings.Contains(buf.String(), "via interface") {
		t.Errorf("expected message in output, got %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	// Must be safe to use and produce nothing.
	Nop().Error().Msg("discarded")
}
