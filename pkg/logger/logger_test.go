package logger

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/wonny/kscreener/pkg/config"
)

func testConfig(level, format string) *config.Config {
	return &config.Config{
		Env:       "development",
		LogLevel:  level,
		LogFormat: format,
	}
}

func TestNew(t *testing.T) {
	log := New(testConfig("debug", "json"))
	if log == nil {
		t.Fatal("Expected logger to be created")
	}
}

func TestNewConsoleFormat(t *testing.T) {
	log := New(testConfig("info", "console"))
	if log == nil {
		t.Fatal("Expected logger to be created with console format")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.expected {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestWithField(t *testing.T) {
	log := NewNop()
	child := log.WithField("code", "005930")
	if child == nil {
		t.Fatal("Expected child logger")
	}
	if child == log {
		t.Error("Expected WithField to return a new logger")
	}
}

func TestWithFields(t *testing.T) {
	log := NewNop()
	child := log.WithFields(map[string]interface{}{
		"market": "KOSPI",
		"count":  10,
	})
	if child == nil {
		t.Fatal("Expected child logger")
	}
}
