package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cuesplice/internal/config"
)

const userAgent = "cuesplice/0.1"

// Event names a notice.
type Event string

const (
	EventRunCompleted Event = "run_completed"
	EventRunFailed    Event = "run_failed"
	EventTest         Event = "test"
)

// Payload carries event fields. Known keys: project, video, outputs (int),
// duration (time.Duration), error (string).
type Payload map[string]any

// Service publishes run notices.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds an ntfy publisher, or a no-op one when no topic is set.
// With notifications.on_success off, only failures and tests are sent.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
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
		client:    &http.Client{Timeout: timeout},
		onSuccess: cfg.Notifications.OnSuccess,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	onSuccess bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if event == EventRunCompleted && !n.onSuccess {
		return nil
	}
	msg, ok := format(event, payload)
	if !ok {
		return fmt.Errorf("unknown notification event %q", event)
	}
	return n.send(ctx, msg)
}

func format(event Event, payload Payload) (message, bool) {
	project := payload.text("project")
	if project == "" {
		project = "default"
	}
	switch event {
	case EventRunCompleted:
		body := fmt.Sprintf("Rendered %d variations for %s", payload.count("outputs"), project)
		if d, ok := payload["duration"].(time.Duration); ok && d > 0 {
			body += " in " + d.Round(time.Second).String()
		}
		if video := payload.text("video"); video != "" {
			body += "\nVideo: " + video
		}
		return message{
			title: "cuesplice - Splice complete",
			body:  body,
			tags:  []string{"cuesplice", "splice", "completed"},
		}, true
	case EventRunFailed:
		errText := payload.text("error")
		if errText == "" {
			errText = "unknown"
		}
		return message{
			title:    "cuesplice - Run failed",
			body:     fmt.Sprintf("Run for %s failed: %s", project, errText),
			tags:     []string{"cuesplice", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "cuesplice - Test",
			body:     "Notification system test",
			tags:     []string{"cuesplice", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (p Payload) text(key string) string {
	if v, ok := p[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func (p Payload) count(key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
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

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
