package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newConfigInitCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--path", target})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample config: %v", err)
	}
	for _, want := range []string{"[firms]", "[scan]", "[telegram]"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("sample config missing %s", want)
		}
	}
	if !strings.Contains(out.String(), target) {
		t.Errorf("output missing target path: %s", out.String())
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing\n"), 0o644); err != nil {
		t.Fatalf("seed existing config: %v", err)
	}

	cmd := newConfigInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"--path", target})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}
}

func TestParseWindow(t *testing.T) {
	window, err := parseWindow("2026-02-01", "2026-02-02T06:00:00Z")
	if err != nil {
		t.Fatalf("parse window: %v", err)
	}
	if window.Start.IsZero() || window.End.IsZero() {
		t.Errorf("window = %+v", window)
	}
	if !window.Start.Before(window.End) {
		t.Error("window not ordered")
	}

	if _, err := parseWindow("2026-02-02", "2026-02-01"); err == nil {
		t.Error("expected error for inverted window")
	}
	if _, err := parseWindow("yesterday", ""); err == nil {
		t.Error("expected error for unparseable time")
	}
}
