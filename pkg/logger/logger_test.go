package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger_BasicLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "text", Output: &buf})

	log.Debug("dbg", String("k", "v"))
	log.Info("info", Int("n", 42))
	log.Warn("warn", Bool("ok", true))
	log.Error("err", Error(nil))

	out := buf.String()
	for _, s := range []string{
		"DEBU", "dbg", "k=v",
		"INFO", "info", "n=42",
		"WARN", "warn", "ok=true",
		"ERRO", "err", "error=nil",
	} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected output to contain %q, got: %s", s, out)
		}
	}
}

func TestLogger_WithComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: "info", Output: &buf})
	comp := base.WithComponent("edi.framer")

	comp.Info("started")

	out := buf.String()
	if !strings.Contains(out, "component=edi.framer") {
		t.Fatalf("expected component field in output, got: %s", out)
	}
	if !strings.Contains(out, "started") {
		t.Fatalf("expected info message in output, got: %s", out)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Debug("should not appear")
	log.Info("should not appear either")
	log.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatalf("expected debug/info to be filtered, got: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("expected warn message present, got: %s", out)
	}
}
