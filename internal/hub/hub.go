// Package hub fans nogo change notifications out to websocket subscribers so
// other open map sessions know to re-fetch.
package hub

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// EventNogosChanged is the only event type the feed emits.
const EventNogosChanged = "nogos_changed"

const writeWait = 5 * time.Second

// ChangeEvent tells subscribers the nogo collection changed.
type ChangeEvent struct {
	Type    string `json:"type"`
	Created int    `json:"created"`
	Deleted int    `json:"deleted"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NogoHub tracks feed subscribers and broadcasts change events to all of
// them. Writes happen only on the Run goroutine.
type NogoHub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan ChangeEvent
	mu        sync.Mutex
}

func NewNogoHub() *NogoHub {
	return &NogoHub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan ChangeEvent, 100),
	}
}

// Run delivers queued events until ctx is cancelled, then closes every
// subscriber.
func (h *NogoHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case ev := <-h.broadcast:
			h.deliver(ev)
		}
	}
}

func (h *NogoHub) deliver(ev ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(ev); err != nil {
			logrus.WithError(err).WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("dropping feed subscriber after failed write")
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

func (h *NogoHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

// Register adds a subscriber.
func (h *NogoHub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("feed subscriber registered")
}

// Unregister removes a subscriber.
func (h *NogoHub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("feed subscriber unregistered")
}

// ClientCount returns the number of live subscribers.
func (h *NogoHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish queues ev for delivery. When the queue is full the event is
// dropped; subscribers re-fetch the whole list anyway.
func (h *NogoHub) Publish(ev ChangeEvent) {
	if ev.Type == "" {
		ev.Type = EventNogosChanged
	}
	select {
	case h.broadcast <- ev:
	default:
		logrus.Warn("nogo feed channel full, dropping change event")
	}
}

// ServeWS upgrades the request and keeps the subscriber registered until it
// disconnects. Messages sent by subscribers are ignored.
func (h *NogoHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Error("failed to upgrade feed connection")
		return
	}

	h.Register(conn)
	defer func() {
		h.Unregister(conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithError(err).Debug("feed subscriber read ended")
			}
			return
		}
	}
}
