package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestSetLevel(t *testing.T) {
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	SetLevel(slog.LevelDebug)
	if !DefaultLogger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled after SetLevel(LevelDebug)")
	}

	SetLevel(slog.LevelError)
	if DefaultLogger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info level should be disabled after SetLevel(LevelError)")
	}
}

func TestSetVerbose(t *testing.T) {
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	SetVerbose(true)
	if !DefaultLogger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("verbose mode should enable debug logging")
	}

	SetVerbose(false)
	if DefaultLogger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("non-verbose mode should disable debug logging")
	}
}

func TestRedact(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   string
	}{
		{"empty", "", ""},
		{"short", "abc", "****"},
		{"boundary", "12345678", "****"},
		{"api key", "sk-proj-abcdef123456", "****3456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Redact(tt.secret); got != tt.want {
				t.Errorf("Redact(%q) = %q, want %q", tt.secret, got, tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("hello", 10); got != "hello" {
		t.Errorf("Preview() = %q, want unmodified text", got)
	}
	if got := Preview("hello world", 5); got != "hello..." {
		t.Errorf("Preview() = %q, want %q", got, "hello...")
	}
}
