package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

const (
	// SessionCookie carries the view session id between page loads.
	SessionCookie     = "rinsight_session"
	sessionQueryParam = "session"
)

type subscriber struct {
	session string
	ch      chan ViewEvent
}

// BroadcastHook fans out view events to in-process subscribers.
type BroadcastHook struct {
	mu     sync.RWMutex
	subs   map[int]subscriber
	next   int
	onIdle func(sessionID string)
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{
		subs: make(map[int]subscriber),
	}
}

// ViewUpdated satisfies the RefreshHook interface and broadcasts events.
// Slow subscribers miss events rather than block the publisher.
func (h *BroadcastHook) ViewUpdated(ctx context.Context, event ViewEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.session != "" && sub.session != event.SessionID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of view events and a cancel func. An empty
// session id receives events for every session; the network endpoints never
// subscribe that way.
func (h *BroadcastHook) Subscribe(sessionID string) (<-chan ViewEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan ViewEvent, 8)
	h.subs[id] = subscriber{session: sessionID, ch: ch}
	cancel := func() {
		h.mu.Lock()
		sub, ok := h.subs[id]
		if !ok {
			h.mu.Unlock()
			return
		}
		delete(h.subs, id)
		close(sub.ch)
		idle := sub.session != "" && h.countLocked(sub.session) == 0
		onIdle := h.onIdle
		h.mu.Unlock()
		if idle && onIdle != nil {
			onIdle(sub.session)
		}
	}
	return ch, cancel
}

// OnSessionIdle registers fn to run after the last subscriber of a session
// cancels. fn runs outside the hook lock.
func (h *BroadcastHook) OnSessionIdle(fn func(sessionID string)) {
	h.mu.Lock()
	h.onIdle = fn
	h.mu.Unlock()
}

// Subscribers reports the number of active subscriptions.
func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// SessionSubscribers reports the subscriptions bound to sessionID.
func (h *BroadcastHook) SessionSubscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.countLocked(sessionID)
}

func (h *BroadcastHook) countLocked(sessionID string) int {
	n := 0
	for _, sub := range h.subs {
		if sub.session == sessionID {
			n++
		}
	}
	return n
}

// StreamSession resolves the session an event stream request subscribes to:
// the session query parameter, then the session cookie.
func StreamSession(r *http.Request) string {
	if id := strings.TrimSpace(r.URL.Query().Get(sessionQueryParam)); id != "" {
		return id
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams view events as JSON.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	session := StreamSession(r)
	if session == "" {
		http.Error(w, errMissingStreamSession.Error(), http.StatusBadRequest)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe(session)
	defer cancel()
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

// ServeSSE provides a Server-Sent Events endpoint for view events.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	session := StreamSession(r)
	if session == "" {
		http.Error(w, errMissingStreamSession.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	events, cancel := h.Subscribe(session)
	defer cancel()

	encoder := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			w.Write([]byte("data: "))
			if err := encoder.Encode(event); err != nil {
				return
			}
			w.Write([]byte("\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
