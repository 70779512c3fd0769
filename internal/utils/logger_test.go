// internal/utils/logger_test.go
package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOptions(WarnLevel, &buf)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Errorf("error %d", 42)

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below the level must be suppressed:\n%s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error 42") {
		t.Errorf("messages at or above the level must appear:\n%s", out)
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOptions(InfoLevel, &buf)

	logger.WithField("page", "page_001").WithField("asset", "img_002").Info("downloaded")

	out := buf.String()
	if !strings.Contains(out, "asset=img_002, page=page_001") {
		t.Errorf("fields must render sorted by key:\n%s", out)
	}
}

func TestLoggerFieldsDoNotLeakBack(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOptions(InfoLevel, &buf)

	logger.WithField("page", "page_001").Info("scoped")
	buf.Reset()
	logger.Info("plain")

	if strings.Contains(buf.String(), "page_001") {
		t.Errorf("WithField must not mutate the parent logger:\n%s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"ERROR", ErrorLevel},
		{"nonsense", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
