package logger_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/remake-build/remake/internal/adapters/logger"
)

func newBuffered(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	lg, ok := logger.New().(*logger.Logger)
	if !ok {
		t.Fatal("New() did not return a *logger.Logger")
	}
	buf := new(bytes.Buffer)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Info(t *testing.T) {
	lg, buf := newBuffered(t)
	lg.Info("building target", "target", "main.o")

	out := buf.String()
	if !strings.Contains(out, "INFO") {
		t.Errorf("expected INFO level, got: %s", out)
	}
	if !strings.Contains(out, "building target") || !strings.Contains(out, "main.o") {
		t.Errorf("expected message and attribute, got: %s", out)
	}
}

func TestLogger_Error(t *testing.T) {
	lg, buf := newBuffered(t)
	lg.Error(errors.New("no rule for building prog"))

	out := buf.String()
	if !strings.Contains(out, "ERROR") {
		t.Errorf("expected ERROR level, got: %s", out)
	}
	if !strings.Contains(out, "no rule for building prog") {
		t.Errorf("expected error message, got: %s", out)
	}
}

func TestLogger_ErrorNil(t *testing.T) {
	lg, buf := newBuffered(t)
	lg.Error(nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output for nil error, got: %s", buf.String())
	}
}

func TestLogger_DebugSuppressedByDefault(t *testing.T) {
	lg, buf := newBuffered(t)
	lg.Debug("status decision", "target", "a", "status", "todo")
	if buf.Len() != 0 {
		t.Errorf("expected debug output to be suppressed, got: %s", buf.String())
	}

	lg.SetDebug(true)
	lg.Debug("status decision", "target", "a", "status", "todo")
	out := buf.String()
	if !strings.Contains(out, "status decision") {
		t.Errorf("expected debug output once enabled, got: %s", out)
	}

	buf.Reset()
	lg.SetDebug(false)
	lg.Debug("gone again")
	if buf.Len() != 0 {
		t.Errorf("expected debug output to be suppressed again, got: %s", buf.String())
	}
}

func TestLogger_Warn(t *testing.T) {
	lg, buf := newBuffered(t)
	lg.Warn("unexpected client", "job", 17)
	if !strings.Contains(buf.String(), "WARN") {
		t.Errorf("expected WARN level, got: %s", buf.String())
	}
}
