// Package sse implements a Server-Sent Events broker for note and review
// updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/starford/revue/internal/watchlist"
)

// Event names not produced by the note service.
const (
	WatchlistUpdated = "watchlist.updated"
)

// Event represents an SSE event to broadcast. An empty ID is filled with a
// fresh UUID.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data any    `json:"data"`
}

// WatchlistData is the payload of watchlist.updated.
type WatchlistData struct {
	Counts  watchlist.Counts `json:"counts"`
	Overdue []string         `json:"overdue"`
	Due     []string         `json:"due_reminders"`
}

// Broker manages SSE client connections and broadcasts events.
//
// A single internal event loop owns the client set and the last watchlist
// event. Public methods talk to it over channels.
type Broker struct {
	keepAlive time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that writes a comment line to every client each
// keepAlive interval. A non-positive interval defaults to 15 seconds.
func NewBroker(keepAlive time.Duration) *Broker {
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}

	b := &Broker{
		keepAlive:     keepAlive,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	ticker := time.NewTicker(b.keepAlive)
	defer ticker.Stop()

	clients := make(map[chan []byte]struct{})
	var lastWatchlist []byte

	send := func(raw []byte) {
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}
			if lastWatchlist != nil {
				ch <- lastWatchlist
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			raw, err := encode(event)
			if err != nil {
				continue
			}
			if event.Type == WatchlistUpdated {
				lastWatchlist = raw
			}
			send(raw)

		case <-ticker.C:
			send([]byte(": keep-alive\n\n"))

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

func encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	id := event.ID
	if id == "" {
		id = uuid.NewString()
	}
	return fmt.Appendf(nil, "id: %s\nevent: %s\ndata: %s\n\n", id, event.Type, payload), nil
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel. The latest
// watchlist.updated event, if any, is delivered first.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishChange publishes a note service mutation; kind is the event name.
func (b *Broker) PublishChange(kind, id string) {
	b.Publish(Event{Type: kind, Data: map[string]string{"id": id}})
}

// PublishNoteEvent publishes a file watcher change (created, updated or
// deleted) as note.<kind>.
func (b *Broker) PublishNoteEvent(kind, path string) {
	switch kind {
	case "created", "updated", "deleted":
		b.Publish(Event{Type: "note." + kind, Data: map[string]string{"id": path}})
	}
}

// PublishWatchlist publishes a new classification.
func (b *Broker) PublishWatchlist(buckets watchlist.Buckets) {
	m := buckets.Membership()
	b.Publish(Event{Type: WatchlistUpdated, Data: WatchlistData{
		Counts:  buckets.Counts(),
		Overdue: m[0],
		Due:     m[1],
	}})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
