package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetHome(t *testing.T) {
	customHome := filepath.Join(t.TempDir(), "custom")
	t.Setenv(HomeEnvVar, customHome)

	home, err := GetHome()
	if err != nil {
		t.Fatalf("GetHome failed: %v", err)
	}
	if home != customHome {
		t.Errorf("GetHome() = %s, want %s", home, customHome)
	}

	t.Setenv(HomeEnvVar, "")
	home, err = GetHome()
	if err != nil {
		t.Fatalf("GetHome failed: %v", err)
	}
	if !strings.HasSuffix(home, DefaultHomeDir) {
		t.Errorf("GetHome() = %s, want suffix %s", home, DefaultHomeDir)
	}
}

func TestEnsureHome(t *testing.T) {
	customHome := filepath.Join(t.TempDir(), "nested", "home")
	t.Setenv(HomeEnvVar, customHome)

	home, err := EnsureHome()
	if err != nil {
		t.Fatalf("EnsureHome failed: %v", err)
	}
	info, err := os.Stat(home)
	if err != nil {
		t.Fatalf("home not created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("%s is not a directory", home)
	}
}

func TestFilePaths(t *testing.T) {
	customHome := t.TempDir()
	t.Setenv(HomeEnvVar, customHome)

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"config", GetConfigPath, filepath.Join(customHome, "config.toml")},
		{"history", GetHistoryPath, filepath.Join(customHome, "history.db")},
		{"log", GetLogPath, filepath.Join(customHome, "logs", "cipherkit.log")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	userHome, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no user home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", userHome},
		{"~/data/history.db", filepath.Join(userHome, "data", "history.db")},
		{"/var/lib/../lib/cipherkit", "/var/lib/cipherkit"},
		{"relative/./path", "relative/path"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandHome(tt.in)
			if err != nil {
				t.Fatalf("ExpandHome(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
