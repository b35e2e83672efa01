package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cdrip/internal/config"
)

// RipSummary describes a finished rip.
type RipSummary struct {
	Album    string
	Artist   string
	Written  int
	Skipped  int
	Failed   int
	Duration time.Duration
}

// Service defines the notification surface exposed to the workflow.
type Service interface {
	NotifyDiscDetected(ctx context.Context, device string) error
	NotifyRipCompleted(ctx context.Context, summary RipSummary) error
	NotifyRipFailed(ctx context.Context, albumTitle string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:  topic,
		userAgent: cfg.UserAgent(),
		client:    &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	userAgent string
	client    *http.Client
}

func (n *ntfyService) NotifyDiscDetected(ctx context.Context, device string) error {
	device = strings.TrimSpace(device)
	data := payload{
		title:   "cdrip - Disc Detected",
		message: fmt.Sprintf("💿 Audio CD inserted in %s", device),
		tags:    []string{"cdrip", "disc", "detected"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRipCompleted(ctx context.Context, summary RipSummary) error {
	title := strings.TrimSpace(summary.Album)
	if artist := strings.TrimSpace(summary.Artist); artist != "" {
		title = fmt.Sprintf("%s - %s", artist, title)
	}
	duration := summary.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	data := payload{
		title:   "cdrip - Rip Complete",
		message: fmt.Sprintf("🎵 Ripped: %s\n%d written, %d skipped in %s", title, summary.Written, summary.Skipped, duration),
		tags:    []string{"cdrip", "rip", "completed"},
	}
	if summary.Failed > 0 {
		data.title = "cdrip - Rip Complete (with errors)"
		data.message = fmt.Sprintf("🎵 Ripped: %s\n%d written, %d skipped, %d failed in %s",
			title, summary.Written, summary.Skipped, summary.Failed, duration)
		data.tags = []string{"cdrip", "rip", "warning"}
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRipFailed(ctx context.Context, albumTitle string, err error) error {
	var builder strings.Builder
	builder.WriteString("❌ Rip failed")
	if albumTitle = strings.TrimSpace(albumTitle); albumTitle != "" {
		builder.WriteString(": ")
		builder.WriteString(albumTitle)
	}
	builder.WriteString("\n")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown error")
	}

	data := payload{
		title:    "cdrip - Error",
		message:  builder.String(),
		tags:     []string{"cdrip", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "cdrip - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"cdrip", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// NewNoop returns a Service that drops every notification.
func NewNoop() Service {
	return noopService{}
}

type noopService struct{}

func (noopService) NotifyDiscDetected(context.Context, string) error     { return nil }
func (noopService) NotifyRipCompleted(context.Context, RipSummary) error { return nil }
func (noopService) NotifyRipFailed(context.Context, string, error) error { return nil }
func (noopService) TestNotification(context.Context) error               { return nil }
