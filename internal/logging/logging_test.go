package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{"debug", log.DebugLevel, false},
		{"INFO", log.InfoLevel, false},
		{"", log.InfoLevel, false},
		{"warning", log.WarnLevel, false},
		{"warn", log.WarnLevel, false},
		{"error", log.ErrorLevel, false},
		{"loud", log.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLevel) {
					t.Fatalf("ParseLevel(%q) error = %v, want ErrInvalidLevel", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLevel(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGet_ReturnsSameLogger(t *testing.T) {
	a := Get("scanner")
	b := Get("scanner")
	if a != b {
		t.Error("Get() should return the cached logger for a component")
	}
	if Get("store") == a {
		t.Error("Get() should return distinct loggers per component")
	}
}

func TestInit_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "brewcat.log")

	// Created before Init; must follow the new configuration.
	logger := Get("test-file")

	if err := Init(Config{Level: "info", Path: path}); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	defer Close()

	logger.Debug("hidden message")
	logger.Info("scan finished", "packages", 3)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "scan finished") {
		t.Errorf("log file should contain info message, got: %q", content)
	}
	if !strings.Contains(content, "test-file") {
		t.Errorf("log file should contain component prefix, got: %q", content)
	}
	if strings.Contains(content, "hidden message") {
		t.Errorf("debug message should be filtered at info level, got: %q", content)
	}
}

func TestInit_InvalidLevel(t *testing.T) {
	err := Init(Config{Level: "verbose"})
	if err == nil {
		t.Fatal("Init() should fail for an invalid level")
	}
	if !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("Init() error = %v, want ErrInvalidLevel", err)
	}
}
