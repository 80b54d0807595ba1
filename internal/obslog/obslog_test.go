package obslog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestReplaceRestores(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))
	L().Info("hello", zap.String("k", "v"))
	restore()
	L().Info("dropped")

	if logs.Len() != 1 {
		t.Fatalf("captured %d entries, want 1", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["k"]; got != "v" {
		t.Fatalf("field k = %v", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel, "WARNING": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel, "": zapcore.InfoLevel, "nope": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitFromEnvConsoleOnly(t *testing.T) {
	t.Setenv("LOG_TO_FILE", "false")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "warn")
	defer Replace(L())()
	if err := InitFromEnv(); err != nil {
		t.Fatalf("InitFromEnv: %v", err)
	}
	if L().Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info should be disabled at warn level")
	}
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "legacy")
	t.Setenv("LOG_TO_CONSOLE", "off")
	t.Setenv("LOG_TO_FILE", "yes")
	t.Setenv("LOG_FILE", "")
	o := OptionsFromEnv()
	if o.Level != zapcore.DebugLevel || o.Format != FormatText || o.Stdout {
		t.Fatalf("options = %+v", o)
	}
	if o.File != filepath.Join("logs", "chess.log") {
		t.Fatalf("default log file = %q", o.File)
	}
}

func TestBuildWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chess.log")
	l, err := Build(Options{Level: zapcore.InfoLevel, Format: FormatJSON, File: path})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	l.Info("store_save", zap.String("slot", "chess_save"))
	_ = l.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"slot":"chess_save"`) {
		t.Fatalf("log file = %s", b)
	}
}
