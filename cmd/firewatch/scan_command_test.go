package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"firewatch/internal/config"
)

func TestNewScorerHonorsWorkflowRetrySettings(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Verifier.APIKey = "test"
	cfg.Verifier.BaseURL = server.URL
	cfg.Workflow.RetryMaxAttempts = 2
	cfg.Workflow.RetryBaseSeconds = 1
	cfg.Workflow.RetryMaxSeconds = 1

	scorer := newScorer(&cfg)
	if _, err := scorer.ClassifyFire(context.Background(), `{"region":"INDIA_OTHER"}`); err == nil {
		t.Fatal("expected classification to fail against erroring endpoint")
	}
	if calls.Load() != 2 {
		t.Fatalf("expected configured 2 attempts, got %d", calls.Load())
	}
}
