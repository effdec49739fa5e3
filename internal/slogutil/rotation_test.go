package slogutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cipherkit/internal/config"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		wantErr  bool
	}{
		{"", 0, false},
		{"100", 100, false},
		{"100b", 100, false},
		{"1KB", 1024, false},
		{"10 kb", 10240, false},
		{"10MB", 10 * 1024 * 1024, false},
		{"1GB", 1024 * 1024 * 1024, false},
		{"1.5MB", int64(1.5 * 1024 * 1024), false},
		{"invalid", 0, true},
		{"10TB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRotatingFile_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")

	rf, err := OpenRotatingFile(path, 50, 2)
	if err != nil {
		t.Fatalf("OpenRotatingFile failed: %v", err)
	}

	line := []byte(strings.Repeat("a", 29) + "\n")
	for i := 0; i < 7; i++ {
		if _, err := rf.Write(line); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}
	if err := rf.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	for _, p := range []string{path, path + ".1", path + ".2"} {
		info, err := os.Stat(p)
		if err != nil {
			t.Errorf("%s should exist: %v", p, err)
			continue
		}
		if info.Size() > 50 {
			t.Errorf("%s size = %d, want <= 50", p, info.Size())
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("only two backups should be kept")
	}
}

func TestRotatingFile_NoBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	rf, err := OpenRotatingFile(path, 20, 0)
	if err != nil {
		t.Fatalf("OpenRotatingFile failed: %v", err)
	}
	defer rf.Close()

	for i := 0; i < 3; i++ {
		if _, err := rf.Write([]byte("0123456789abcdef\n")); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("no backup should be written when maxBackups is 0")
	}
}

func TestLoggerFactory_ServerLogger(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Logging.File = filepath.Join(dir, "server.log")
	cfg.Logging.Level = "debug"

	var stderr strings.Builder
	factory := NewLoggerFactory(cfg, &stderr)

	logger, err := factory.ServerLogger()
	if err != nil {
		t.Fatalf("ServerLogger() error = %v", err)
	}
	logger.Debug("listening", "addr", "localhost:8088")
	if err := factory.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(cfg.Logging.File)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "addr=localhost:8088") {
		t.Errorf("log file = %q", data)
	}
	if !strings.Contains(stderr.String(), "listening") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestLoggerFactory_CLILevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "error"

	var stderr strings.Builder
	factory := NewLoggerFactory(cfg, &stderr)

	factory.CLILogger().Warn("from config level")
	if stderr.Len() != 0 {
		t.Errorf("warn should be filtered at error level: %q", stderr.String())
	}

	factory.SetCLILevel(LevelFromVerbosity(1, false))
	factory.CLILogger().Info("from flag level")
	if !strings.Contains(stderr.String(), "from flag level") {
		t.Errorf("CLI level should override config: %q", stderr.String())
	}
}

func TestLoggerFactory_BadMaxSize(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.File = filepath.Join(t.TempDir(), "x.log")
	cfg.Logging.MaxSize = "lots"

	if _, err := NewLoggerFactory(cfg, os.Stderr).ServerLogger(); err == nil {
		t.Error("ServerLogger() should reject an invalid max_size")
	}
}
