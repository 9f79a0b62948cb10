package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		" warn": slog.LevelWarn,
		"error": slog.LevelError,
	}

	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&buf, slog.LevelInfo)
	logger.Debug("hidden")
	logger.Info("registered", slog.Int("count", 2))

	var record map[string]any

	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected a single JSON record, got %q: %v", buf.String(), err)
	}

	if record["msg"] != "registered" || record["count"] != float64(2) {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestNewCreatesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log", "autotrack.log")

	logger, closer, err := New(Options{Path: path, Level: "info", MaxSizeMB: 1})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("hello")

	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Contains(b, []byte(`"msg":"hello"`)) {
		t.Fatalf("log file missing record: %s", b)
	}
}
