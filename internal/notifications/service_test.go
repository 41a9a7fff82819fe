package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"cuesplice/internal/config"
	"cuesplice/internal/notifications"
)

type captured struct {
	title, body, tags, priority string
}

func newServer(t *testing.T, status int) (*httptest.Server, func() []captured) {
	t.Helper()
	var mu sync.Mutex
	var got []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, captured{
			title:    r.Header.Get("Title"),
			body:     string(body),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		})
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte("nope"))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []captured {
		mu.Lock()
		defer mu.Unlock()
		return append([]captured(nil), got...)
	}
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventRunFailed, notifications.Payload{"error": "x"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).Publish(context.Background(), notifications.EventTest, nil); err != nil {
		t.Fatalf("nil config: %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectBody     string
		expectTags     string
		expectPriority string
	}{
		{
			name:  "run completed",
			event: notifications.EventRunCompleted,
			payload: notifications.Payload{
				"project":  "promo",
				"outputs":  3,
				"duration": 95 * time.Second,
				"video":    "/in/talk.mp4",
			},
			expectTitle: "cuesplice - Splice complete",
			expectBody:  "Rendered 3 variations for promo in 1m35s\nVideo: /in/talk.mp4",
			expectTags:  "cuesplice,splice,completed",
		},
		{
			name:           "run failed",
			event:          notifications.EventRunFailed,
			payload:        notifications.Payload{"error": "ffmpeg exited 1"},
			expectTitle:    "cuesplice - Run failed",
			expectBody:     "Run for default failed: ffmpeg exited 1",
			expectTags:     "cuesplice,error,alert",
			expectPriority: "high",
		},
		{
			name:           "test",
			event:          notifications.EventTest,
			expectTitle:    "cuesplice - Test",
			expectBody:     "Notification system test",
			expectTags:     "cuesplice,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, requests := newServer(t, http.StatusOK)
			cfg := config.Default()
			cfg.Notifications.NtfyTopic = srv.URL
			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("Publish: %v", err)
			}
			got := requests()
			if len(got) != 1 {
				t.Fatalf("expected 1 request, got %d", len(got))
			}
			r := got[0]
			if r.title != tc.expectTitle || r.body != tc.expectBody || r.tags != tc.expectTags || r.priority != tc.expectPriority {
				t.Fatalf("unexpected request %+v", r)
			}
		})
	}
}

func TestSuccessNoticesCanBeDisabled(t *testing.T) {
	srv, requests := newServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	cfg.Notifications.OnSuccess = false
	svc := notifications.NewService(&cfg)

	if err := svc.Publish(context.Background(), notifications.EventRunCompleted, notifications.Payload{"outputs": 1}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := svc.Publish(context.Background(), notifications.EventRunFailed, notifications.Payload{"error": "x"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := requests(); len(got) != 1 || !strings.Contains(got[0].title, "failed") {
		t.Fatalf("expected only the failure notice, got %+v", got)
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	srv, _ := newServer(t, http.StatusForbidden)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	err := notifications.NewService(&cfg).Publish(context.Background(), notifications.EventTest, nil)
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}

func TestUnknownEvent(t *testing.T) {
	srv, requests := newServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	err := notifications.NewService(&cfg).Publish(context.Background(), notifications.Event("bogus"), nil)
	if err == nil {
		t.Fatal("expected error for unknown event")
	}
	if errors.Is(err, context.Canceled) || len(requests()) != 0 {
		t.Fatal("unknown events must not be sent")
	}
}
