package log

import (
	"bytes"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, fn func()) (string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	t.Cleanup(func() {
		SetOutput(nil, nil)
		SetVerbose(false)
		SetForceStdErr(false)
		EnableLogs()
	})
	fn()
	return out.String(), errOut.String()
}

func TestLevelsRouteToStreams(t *testing.T) {
	out, errOut := captureOutput(t, func() {
		Infof("hello %s", "world")
		Warnf("careful")
		Errorf("broken: %d", 42)
	})

	if !strings.Contains(out, "[INF]") || !strings.Contains(out, "hello world") {
		t.Errorf("Expected info message on stdout, got %q", out)
	}
	if !strings.Contains(out, "[WRN]") {
		t.Errorf("Expected warning on stdout, got %q", out)
	}
	if strings.Contains(out, "broken") {
		t.Errorf("Expected error not on stdout, got %q", out)
	}
	if !strings.Contains(errOut, "[ERR]") || !strings.Contains(errOut, "broken: 42") {
		t.Errorf("Expected error on stderr, got %q", errOut)
	}
}

func TestDebugRequiresVerbose(t *testing.T) {
	out, _ := captureOutput(t, func() {
		Debugf("hidden")
		SetVerbose(true)
		Debugf("shown")
	})

	if strings.Contains(out, "hidden") {
		t.Errorf("Expected debug message to be suppressed, got %q", out)
	}
	if !strings.Contains(out, "[DBG]") || !strings.Contains(out, "shown") {
		t.Errorf("Expected debug message in verbose mode, got %q", out)
	}
}

func TestForceStdErrAndDisable(t *testing.T) {
	out, errOut := captureOutput(t, func() {
		SetForceStdErr(true)
		Infof("to stderr")
		DisableLogs()
		Errorf("dropped")
	})

	if out != "" {
		t.Errorf("Expected nothing on stdout, got %q", out)
	}
	if !strings.Contains(errOut, "to stderr") {
		t.Errorf("Expected info on stderr when forced, got %q", errOut)
	}
	if strings.Contains(errOut, "dropped") {
		t.Errorf("Expected disabled logger to drop messages, got %q", errOut)
	}
}
