package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(999), "UNKNOWN"},
	}

	for _, test := range tests {
		result := test.level.String()
		if result != test.expected {
			t.Errorf("LogLevel(%d).String() = %s, expected %s", test.level, result, test.expected)
		}
	}
}

func TestLogLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{LogLevel(999), slog.LevelInfo}, // Default for unknown
	}

	for _, test := range tests {
		result := test.level.SlogLevel()
		if result != test.expected {
			t.Errorf("LogLevel(%d).SlogLevel() = %v, expected %v", test.level, result, test.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitForCLI_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelWarn, &buf)

	Debug("Session", "debug %s", "hidden")
	Info("Session", "info hidden")
	Warn("Session", "token file %s unreadable", "abc")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "token file abc unreadable") {
		t.Errorf("expected warning in output, got %q", out)
	}
	if !strings.Contains(out, "subsystem=Session") {
		t.Errorf("expected subsystem attribute, got %q", out)
	}
}

func TestError_IncludesErrorAttribute(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelDebug, &buf)

	Error("OAuth", errors.New("connection refused"), "Refresh request failed")

	out := buf.String()
	if !strings.Contains(out, "Refresh request failed") {
		t.Errorf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, `error="connection refused"`) {
		t.Errorf("expected error attribute in output, got %q", out)
	}
}

func TestAudit(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelInfo, &buf)

	Audit(AuditEvent{
		Action:    "sign_in",
		Outcome:   "denied",
		Target:    "appstore.example.com",
		AttemptID: "attempt-1",
	})

	out := buf.String()
	for _, want := range []string{"[AUDIT] sign_in", "outcome=denied", "target=appstore.example.com", "attempt_id=attempt-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in audit output, got %q", want, out)
		}
	}
	if strings.Contains(out, "reason=") {
		t.Errorf("empty reason should be omitted, got %q", out)
	}
}

func TestAudit_SuppressedAboveInfo(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelError, &buf)

	Audit(AuditEvent{Action: "token_refresh", Outcome: "success"})

	if buf.Len() != 0 {
		t.Errorf("expected no audit output at ERROR level, got %q", buf.String())
	}
}
