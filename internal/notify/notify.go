// Package notify delivers supervisor lifecycle events to a webhook.
// Delivery is strictly best-effort: an unconfigured webhook makes every
// call a no-op, and network failures are logged and swallowed. Nothing in
// here may ever affect supervisor control flow.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// PlaceholderURL is the documented placeholder left in example configs.
// A webhook URL equal to it is treated the same as an empty one.
const PlaceholderURL = "YOUR_WEBHOOK_URL_HERE"

// EventKind identifies a lifecycle event.
type EventKind string

const (
	EventStarted             EventKind = "started"
	EventIterationComplete   EventKind = "iteration_complete"
	EventInterrupted         EventKind = "interrupted"
	EventMissionAccomplished EventKind = "mission_accomplished"
)

// Event is a lifecycle notification. Events are ephemeral: they are
// forwarded once and never persisted.
type Event struct {
	Kind    EventKind
	Message string
	// Model labels which worker/model produced the event.
	Model string
}

// payload is the webhook body: a single content field.
type payload struct {
	Content string `json:"content"`
}

// Notifier posts lifecycle events to a webhook URL.
type Notifier struct {
	url    string
	client *http.Client
}

// New creates a Notifier for the given webhook URL. An empty or
// placeholder URL yields a disabled notifier.
func New(url string) *Notifier {
	return &Notifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether the notifier has a usable webhook URL.
func (n *Notifier) Enabled() bool {
	return n.url != "" && n.url != PlaceholderURL
}

// Send forwards an event to the webhook. Always returns quickly and never
// reports delivery failure to the caller.
func (n *Notifier) Send(ctx context.Context, ev Event) {
	if !n.Enabled() {
		return
	}

	msg := ev.Message
	if ev.Model != "" {
		msg = fmt.Sprintf("[%s] %s", ev.Model, msg)
	}

	body, err := json.Marshal(payload{Content: msg})
	if err != nil {
		log.Printf("notify: encoding %s event: %v", ev.Kind, err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		log.Printf("notify: building request for %s event: %v", ev.Kind, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		log.Printf("notify: delivering %s event: %v", ev.Kind, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Printf("notify: webhook returned %s for %s event", resp.Status, ev.Kind)
	}
}
