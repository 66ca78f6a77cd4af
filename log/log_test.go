// log/log_test.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, tc := range []struct {
		s    string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	} {
		if got := ParseLevel(tc.s); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tc.s, got, tc.want)
		}
	}
}

func TestWriterLevelsAndCallstack(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWriter("info", &buf)

	lg.Debug("hidden")
	lg.Infof("shown %d", 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 record, got %d: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec["msg"] != "shown 1" {
		t.Errorf("msg = %v", rec["msg"])
	}
	if _, ok := rec["callstack"]; !ok {
		t.Errorf("expected callstack attribute in %v", rec)
	}
}

func TestNilLogger(t *testing.T) {
	var lg *Logger
	// None of these should crash.
	lg.Debug("x")
	lg.Debugf("x %d", 1)
	lg.Info("x")
	lg.Infof("x %d", 1)
	if lg.With("a", 1) != nil {
		t.Errorf("With on nil logger should return nil")
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWriter("debug", &buf).With(slog.String("adr", "ZNY1"))
	lg.Debug("evaluating")
	if !strings.Contains(buf.String(), `"adr":"ZNY1"`) {
		t.Errorf("expected adr attribute in %q", buf.String())
	}
}
