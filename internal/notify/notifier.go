package notify

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"comandero/internal/core"
)

// Event kinds published by the print pipeline.
const (
	KindJob          = "job"
	KindPoll         = "poll"
	KindTestPrint    = "test_print"
	KindConnectivity = "connectivity"
	KindReprint      = "reprint"
	KindDailyReport  = "daily_report"
)

// StatusEvent is one observability event: what the status lamp in the
// control panel shows, and what an optional webhook receives.
type StatusEvent struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	State     core.OutcomeState `json:"state"`
	Message   string            `json:"message"`
	JobID     int64             `json:"job_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

type Config struct {
	// WebhookURL, when set, receives every event as a JSON POST.
	WebhookURL string
	Timeout    time.Duration
	QueueSize  int
}

// Hub fans events out to in-process subscribers and, when configured, to an
// HTTP webhook from a background worker. Publishing never blocks the print
// path: a full queue drops the webhook delivery, not the print.
type Hub struct {
	mu         sync.RWMutex
	last       *StatusEvent
	subs       []chan StatusEvent
	webhookURL string
	httpClient *http.Client
	queue      chan StatusEvent
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

func NewHub(cfg Config) *Hub {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	return &Hub{
		webhookURL: cfg.WebhookURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		queue:      make(chan StatusEvent, cfg.QueueSize),
		stopCh:     make(chan struct{}),
	}
}

func (h *Hub) Start() {
	if h.webhookURL == "" {
		return
	}
	h.wg.Add(1)
	go h.worker()
}

func (h *Hub) Stop() {
	close(h.stopCh)
	h.wg.Wait()
}

// Publish implements core.Notifier.
func (h *Hub) Publish(kind string, jobID int64, outcome core.Outcome) {
	ev := StatusEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		State:     outcome.State,
		Message:   outcome.Message,
		JobID:     jobID,
		Timestamp: time.Now(),
	}

	h.mu.Lock()
	h.last = &ev
	subs := make([]chan StatusEvent, len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}

	if h.webhookURL != "" {
		select {
		case h.queue <- ev:
		default:
			log.Printf("notify: webhook queue full, dropping event %s", ev.ID)
		}
	}
}

// Last returns the most recent event, nil before the first publish.
func (h *Hub) Last() *StatusEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.last == nil {
		return nil
	}
	ev := *h.last
	return &ev
}

// Subscribe registers a buffered listener. Slow listeners miss events
// rather than stall the pipeline.
func (h *Hub) Subscribe() <-chan StatusEvent {
	ch := make(chan StatusEvent, 16)
	h.mu.Lock()
	h.subs = append(h.subs, ch)
	h.mu.Unlock()
	return ch
}

func (h *Hub) worker() {
	defer h.wg.Done()
	for {
		select {
		case <-h.stopCh:
			return
		case ev := <-h.queue:
			h.deliver(ev)
		}
	}
}

func (h *Hub) deliver(ev StatusEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("notify: failed to marshal event %s: %v", ev.ID, err)
		return
	}

	resp, err := h.httpClient.Post(h.webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("notify: webhook delivery failed for event %s: %v", ev.ID, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("notify: webhook returned %d for event %s", resp.StatusCode, ev.ID)
	}
}
