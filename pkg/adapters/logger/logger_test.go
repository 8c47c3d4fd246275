package logger

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/user/blocksched/pkg/ports"
)

func TestConsoleLogger_Streams(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewConsoleTo(ports.LevelInfo, &out, &errOut)

	l.Debug("hidden")
	l.Info("Loaded %d days and %d stages", 2, 3)
	l.Warn("careful")

	if strings.Contains(out.String(), "hidden") {
		t.Error("expected debug to be filtered")
	}
	if !strings.Contains(out.String(), "2") || !strings.Contains(out.String(), "3") {
		t.Errorf("expected formatted info on out, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "careful") {
		t.Errorf("expected warning on errOut, got %q", errOut.String())
	}
}

func TestConsoleLogger_Component(t *testing.T) {
	var out bytes.Buffer
	l := NewConsoleTo(ports.LevelDebug, &out, &out).WithComponent("composite")

	l.Debug("showing %d stages", 2)

	if got := out.String(); got != "[composite] showing 2 stages\n" {
		t.Errorf("expected component prefix, got %q", got)
	}
}

func TestConsoleLogger_NestedComponent(t *testing.T) {
	var out bytes.Buffer
	l := NewConsoleTo(ports.LevelDebug, &out, &out).WithComponent("server").WithComponent("controller")

	l.Warn("Ignoring unknown day %q", "sun")

	if got := out.String(); got != "[server.controller] Ignoring unknown day \"sun\"\n" {
		t.Errorf("expected nested prefix, got %q", got)
	}
}

func TestConsoleLogger_Quiet(t *testing.T) {
	var out bytes.Buffer
	l := NewConsoleTo(ports.LevelQuiet, &out, &out)

	l.Error("boom")

	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewZapFrom(zap.New(core)).WithComponent("server").WithComponent("controller")

	l.Debug("dropped")
	l.Info("Listening on %s", ":8080")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message != "Listening on :8080" {
		t.Errorf("message: expected %q, got %q", "Listening on :8080", entries[0].Message)
	}
	if got := entries[0].LoggerName; got != "server.controller" {
		t.Errorf("logger name: expected server.controller, got %q", got)
	}
}

func TestZapLevel(t *testing.T) {
	tests := []struct {
		level ports.LogLevel
		want  zapcore.Level
	}{
		{ports.LevelDebug, zapcore.DebugLevel},
		{ports.LevelInfo, zapcore.InfoLevel},
		{ports.LevelWarn, zapcore.WarnLevel},
		{ports.LevelError, zapcore.ErrorLevel},
		{ports.LevelQuiet, zapcore.FatalLevel},
	}
	for _, tt := range tests {
		if got := zapLevel(tt.level); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.level, tt.want, got)
		}
	}
}
