package notifications

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"firewatch/internal/config"
)

func TestNewServiceReturnsNoopWithoutToken(t *testing.T) {
	cfg := config.Default()
	cfg.Telegram.BotToken = ""
	cfg.Telegram.ChatIDs = []string{"123"}
	if _, ok := NewService(&cfg).(noopService); !ok {
		t.Fatal("expected noop service without a bot token")
	}

	cfg.Telegram.BotToken = "token"
	cfg.Telegram.ChatIDs = nil
	if _, ok := NewService(&cfg).(noopService); !ok {
		t.Fatal("expected noop service without chats")
	}
}

func TestNoopServiceSwallowsCalls(t *testing.T) {
	svc := noopService{}
	ctx := context.Background()
	if err := svc.NotifyFireAlert(ctx, Alert{}); err != nil {
		t.Errorf("NotifyFireAlert: %v", err)
	}
	if err := svc.TestNotification(ctx); err != nil {
		t.Errorf("TestNotification: %v", err)
	}
}

func TestFireAlertBroadcastsToAllChats(t *testing.T) {
	var requests []string
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		requests = append(requests, r.URL.Path+"?chat="+r.FormValue("chat_id"))
		bodies = append(bodies, r.FormValue("text"))
		if _, err := w.Write([]byte(`{"ok":true}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer server.Close()

	svc := &telegramService{
		apiBase: server.URL,
		token:   "bot-token",
		chats:   []string{"111", "222"},
		client:  server.Client(),
	}

	alert := Alert{
		EventID:    "abcdef0123456789",
		Region:     "PUNJAB_HARYANA",
		Latitude:   30.123,
		Longitude:  75.568,
		ObservedAt: time.Date(2026, 2, 1, 4, 56, 0, 0, time.UTC),
		FRPMW:      100,
		Confidence: 0.85,
		PM25Kg:     221.2,
	}
	if err := svc.NotifyFireAlert(context.Background(), alert); err != nil {
		t.Fatalf("NotifyFireAlert: %v", err)
	}

	if len(requests) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(requests))
	}
	if requests[0] != "/botbot-token/sendMessage?chat=111" {
		t.Errorf("first request = %s", requests[0])
	}
	for _, want := range []string{"PUNJAB_HARYANA", "30.123, 75.568", "100.0 MW", "85%", "abcdef012345"} {
		if !strings.Contains(bodies[0], want) {
			t.Errorf("alert text missing %q:\n%s", want, bodies[0])
		}
	}
}

func TestBroadcastReportsFirstFailureAfterAllChats(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "chat not found", http.StatusBadRequest)
			return
		}
		if _, err := w.Write([]byte(`{"ok":true}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer server.Close()

	svc := &telegramService{
		apiBase: server.URL,
		token:   "t",
		chats:   []string{"bad", "good"},
		client:  server.Client(),
	}

	err := svc.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected an error for the failed chat")
	}
	if attempts != 2 {
		t.Fatalf("expected both chats attempted, got %d", attempts)
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error = %v", err)
	}
}

func TestShouldAlert(t *testing.T) {
	cfg := config.Telegram{
		AlertRegions:    []string{"DELHI_NCR"},
		MinAlertPowerMW: 50,
	}
	cases := []struct {
		region string
		frp    float64
		want   bool
	}{
		{"DELHI_NCR", 1, true},
		{"delhi_ncr", 1, true},
		{"PUNJAB_HARYANA", 49.9, false},
		{"PUNJAB_HARYANA", 50, true},
		{"INDIA_OTHER", 120, true},
	}
	for _, tc := range cases {
		if got := ShouldAlert(cfg, tc.region, tc.frp); got != tc.want {
			t.Errorf("ShouldAlert(%s, %.1f) = %v, want %v", tc.region, tc.frp, got, tc.want)
		}
	}

	open := config.Telegram{}
	if !ShouldAlert(open, "ANY", 0.1) {
		t.Error("zero thresholds should alert everything")
	}
}
