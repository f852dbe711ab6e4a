package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"firewatch/internal/config"
)

const userAgent = "Firewatch-Go/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyFireAlert(ctx context.Context, alert Alert) error
	NotifyScanCompleted(ctx context.Context, persisted, alerted, failed int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// Alert is the per-event payload broadcast to subscribers.
type Alert struct {
	EventID    string
	Region     string
	Latitude   float64
	Longitude  float64
	ObservedAt time.Time
	FRPMW      float64
	Confidence float64
	PM25Kg     float64
}

// NewService builds a notification service backed by Telegram when a bot
// token and at least one chat are configured. Otherwise a noop implementation
// is returned.
func NewService(cfg *config.Config) Service {
	token := strings.TrimSpace(cfg.Telegram.BotToken)
	chats := make([]string, 0, len(cfg.Telegram.ChatIDs))
	for _, chat := range cfg.Telegram.ChatIDs {
		if chat = strings.TrimSpace(chat); chat != "" {
			chats = append(chats, chat)
		}
	}
	if token == "" || len(chats) == 0 {
		return noopService{}
	}

	timeout := time.Duration(cfg.Telegram.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &telegramService{
		apiBase: "https://api.telegram.org",
		token:   token,
		chats:   chats,
		client:  &http.Client{Timeout: timeout},
	}
}

// ShouldAlert applies the broadcast gate. Events in an always-alert region
// pass unconditionally; everything else must clear the power threshold.
func ShouldAlert(cfg config.Telegram, region string, frpMW float64) bool {
	for _, always := range cfg.AlertRegions {
		if strings.EqualFold(strings.TrimSpace(always), region) {
			return true
		}
	}
	return frpMW >= cfg.MinAlertPowerMW
}

type telegramService struct {
	apiBase string
	token   string
	chats   []string
	client  *http.Client
}

func (t *telegramService) NotifyFireAlert(ctx context.Context, alert Alert) error {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 Fire confirmed: %s\n", alert.Region)
	fmt.Fprintf(&b, "Location: %.3f, %.3f\n", alert.Latitude, alert.Longitude)
	fmt.Fprintf(&b, "Observed: %s\n", alert.ObservedAt.UTC().Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "Power: %.1f MW | Confidence: %.0f%%\n", alert.FRPMW, alert.Confidence*100)
	if alert.PM25Kg > 0 {
		fmt.Fprintf(&b, "Est. PM2.5: %.1f kg\n", alert.PM25Kg)
	}
	fmt.Fprintf(&b, "Event: %s", shortID(alert.EventID))
	return t.broadcast(ctx, b.String())
}

func (t *telegramService) NotifyScanCompleted(ctx context.Context, persisted, alerted, failed int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	message := fmt.Sprintf("✅ Scan complete: %d events recorded, %d alerts sent in %s", persisted, alerted, duration)
	if failed > 0 {
		message = fmt.Sprintf("⚠️ Scan complete with errors: %d events recorded, %d alerts sent, %d failures in %s",
			persisted, alerted, failed, duration)
	}
	return t.broadcast(ctx, message)
}

func (t *telegramService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var b strings.Builder
	b.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		b.WriteString(" in ")
		b.WriteString(contextLabel)
	}
	b.WriteString(": ")
	if err != nil {
		b.WriteString(strings.TrimSpace(err.Error()))
	} else {
		b.WriteString("unknown")
	}
	return t.broadcast(ctx, b.String())
}

func (t *telegramService) TestNotification(ctx context.Context) error {
	return t.broadcast(ctx, "🧪 Notification system test")
}

// broadcast fans the message out to every configured chat. Delivery is
// best-effort per chat; the first failure is returned after all chats were
// attempted.
func (t *telegramService) broadcast(ctx context.Context, message string) error {
	if t == nil || t.client == nil {
		return nil
	}

	var firstErr error
	for _, chat := range t.chats {
		if err := t.send(ctx, chat, message); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t *telegramService) send(ctx context.Context, chatID, message string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)
	form := url.Values{
		"chat_id": {chatID},
		"text":    {message},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("telegram returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

type noopService struct{}

func (noopService) NotifyFireAlert(context.Context, Alert) error                        { return nil }
func (noopService) NotifyScanCompleted(context.Context, int, int, int, time.Duration) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                    { return nil }
func (noopService) TestNotification(context.Context) error                              { return nil }
