package services_test

import (
	"errors"
	"strings"
	"testing"

	"firewatch/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalService, "verifying", "score", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"verifying", "score", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "fetching", "pull", "feed unavailable", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil", nil, false},
		{"timeout", services.Wrap(services.ErrTimeout, "verifying", "score", "deadline", nil), true},
		{"transient", services.Wrap(services.ErrTransient, "fetching", "pull", "503", nil), true},
		{"external", services.Wrap(services.ErrExternalService, "verifying", "score", "http 500", nil), true},
		{"malformed", services.Wrap(services.ErrMalformedInput, "normalizing", "parse", "bad row", nil), false},
		{"configuration", services.Wrap(services.ErrConfiguration, "fetching", "pull", "missing key", nil), false},
		{"conflict", services.Wrap(services.ErrConflict, "persisting", "upsert", "hash mismatch", nil), false},
		{"unmarked", errors.New("plain"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.Retryable(tc.err); got != tc.expect {
				t.Fatalf("Retryable(%v) = %v, want %v", tc.err, got, tc.expect)
			}
		})
	}
}

func TestFatal(t *testing.T) {
	if !services.Fatal(services.Wrap(services.ErrConfiguration, "", "", "missing api key", nil)) {
		t.Fatal("expected configuration errors to be fatal")
	}
	if services.Fatal(services.Wrap(services.ErrTransient, "", "", "retry me", nil)) {
		t.Fatal("transient errors must not be fatal")
	}
}
