package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quill/internal/config"
)

const userAgent = "Quill-Go/0.1.0"

// Event identifies a notifiable moment in a job's lifecycle.
type Event string

const (
	EventJobQueued    Event = "job_queued"
	EventJobCompleted Event = "job_completed"
	EventError        Event = "error"
	EventTest         Event = "test"
)

// Payload carries event-specific fields used to render the message.
type Payload map[string]string

// Service publishes lifecycle notifications. Implementations decide which
// events actually go out; suppressed events return nil.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
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
		client:    &http.Client{Timeout: timeout},
		queued:    cfg.Notifications.Queued,
		completed: cfg.Notifications.Completed,
		errors:    cfg.Notifications.Errors,
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
	queued    bool
	completed bool
	errors    bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.render(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) render(event Event, payload Payload) (message, bool) {
	get := func(key string) string {
		return strings.TrimSpace(payload[key])
	}

	switch event {
	case EventJobQueued:
		if !n.queued {
			return message{}, false
		}
		kind := get("sourceKind")
		if kind == "" {
			kind = "file"
		}
		return message{
			title: "Quill - Job Queued",
			body:  fmt.Sprintf("📝 Queued %s job: %s", kind, get("title")),
			tags:  []string{"quill", "queue", "added"},
		}, true
	case EventJobCompleted:
		if !n.completed {
			return message{}, false
		}
		body := fmt.Sprintf("✅ Transcript ready: %s", get("title"))
		if page := get("htmlPath"); page != "" {
			body = fmt.Sprintf("%s\nPage: %s", body, page)
		}
		return message{
			title:    "Quill - Transcript Ready",
			body:     body,
			tags:     []string{"quill", "workflow", "completed"},
			priority: "high",
		}, true
	case EventError:
		if !n.errors {
			return message{}, false
		}
		var builder strings.Builder
		builder.WriteString("❌ Error")
		if label := get("context"); label != "" {
			builder.WriteString(" with ")
			builder.WriteString(label)
		}
		builder.WriteString(": ")
		if detail := get("error"); detail != "" {
			builder.WriteString(detail)
		} else {
			builder.WriteString("unknown")
		}
		return message{
			title:    "Quill - Error",
			body:     builder.String(),
			tags:     []string{"quill", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "Quill - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"quill", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

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
