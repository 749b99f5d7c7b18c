// Package events fans out entity change notifications to websocket subscribers.
package events

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	// sendBuffer is how many events a subscriber may lag behind before it is dropped.
	sendBuffer = 64
)

type Action string

const (
	Created Action = "created"
	Updated Action = "updated"
	Deleted Action = "deleted"
)

// Entity names carried in events.
const (
	EntityTask     = "task"
	EntityCategory = "category"
)

// Event describes one successful mutation.
type Event struct {
	Entity string    `json:"entity"`
	Action Action    `json:"action"`
	ID     uint      `json:"id"`
	At     time.Time `json:"at"`
}

var subscribersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "taskflow_events_subscribers",
	Help: "Number of connected change-feed subscribers",
})

func init() {
	prometheus.MustRegister(subscribersGauge)
}

// Publisher is what mutating handlers need from the hub.
type Publisher interface {
	Publish(e Event)
}

// Subscription receives encoded events until it is closed, either by the
// subscriber or by the hub when the subscriber falls behind.
type Subscription struct {
	C    <-chan []byte
	ch   chan []byte
	hub  *Hub
	once sync.Once
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Hub broadcasts events to every live subscription.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	log    *slog.Logger
	closed bool
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		subs: make(map[*Subscription]struct{}),
		log:  log,
	}
}

// Subscribe registers a new subscription. It returns nil once the hub is closed.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan []byte, sendBuffer)
	s := &Subscription{C: ch, ch: ch, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.subs[s] = struct{}{}
	subscribersGauge.Inc()
	return s
}

// Publish never blocks: a subscriber with a full buffer is dropped.
func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	msg, err := json.Marshal(e)
	if err != nil {
		h.log.Error("encode event", "error", err)
		return
	}

	var slow []*Subscription
	h.mu.RLock()
	for s := range h.subs {
		select {
		case s.ch <- msg:
		default:
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range slow {
		h.log.Warn("dropping slow event subscriber")
		h.remove(s)
	}
}

// Len reports the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close detaches every subscription and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*Subscription, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.closed = true
	h.mu.Unlock()

	for _, s := range subs {
		h.remove(s)
	}
}

func (h *Hub) remove(s *Subscription) {
	s.once.Do(func() {
		h.mu.Lock()
		if _, ok := h.subs[s]; ok {
			delete(h.subs, s)
			subscribersGauge.Dec()
		}
		h.mu.Unlock()
		close(s.ch)
	})
}

// Serve pumps events to conn until the peer goes away or the subscription is
// dropped. It blocks; the caller owns nothing after it returns.
func (h *Hub) Serve(conn *websocket.Conn) {
	sub := h.Subscribe()
	if sub == nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		readPump(conn)
	}()

	writePump(conn, sub, done)
	sub.Close()
	conn.Close()
	<-done
}

// readPump discards client messages; it exists to process pongs and detect close.
func readPump(conn *websocket.Conn) {
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, sub *Subscription, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-sub.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
