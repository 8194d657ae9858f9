// File: internal/adminws/adminws.go
// MUD Engine - admin observability channel.
//
// The player-facing transport is raw Telnet (internal/telnet), but the
// teacher's original websocket server is repurposed here as a
// read-only side channel: every WorldUpdated/combat/scheduler event is
// pushed to connected admin dashboards as JSON. Adapted from the
// teacher's Client.send-buffered-channel/writePump split, trimmed to
// one direction (server -> browser) since admins only observe here.
package adminws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"mudengine/internal/eventbus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Trusted-network admin tool; not exposed publicly.
		return true
	},
}

// wireEvent is the JSON shape pushed to observers.
type wireEvent struct {
	Kind      string         `json:"kind"`
	Source    string         `json:"source"`
	RoomID    string         `json:"room_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// watcher is one connected admin observer.
type watcher struct {
	conn *websocket.Conn
	send chan wireEvent
}

// Hub fans bus events out to every connected admin websocket.
type Hub struct {
	bus *eventbus.Bus
	log *log.Logger

	mu       sync.Mutex
	watchers map[*watcher]bool
}

// NewHub subscribes to the event kinds admins care about and returns a
// Hub ready to serve ServeHTTP.
func NewHub(bus *eventbus.Bus, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(log.Writer(), "[adminws] ", log.LstdFlags)
	}
	h := &Hub{bus: bus, log: logger, watchers: make(map[*watcher]bool)}
	for _, kind := range []eventbus.Kind{
		eventbus.WorldUpdated, eventbus.CombatStarted, eventbus.CombatEnded,
		eventbus.MonsterSpawned, eventbus.MonsterDied, eventbus.SchedulerTick,
		eventbus.DayNightChanged, eventbus.PlayerLogin, eventbus.PlayerLogout,
	} {
		bus.Subscribe(kind, h.broadcast)
	}
	return h
}

func (h *Hub) broadcast(e eventbus.Event) {
	we := wireEvent{Kind: e.Kind.String(), Source: e.Source, RoomID: e.RoomID, Data: e.Data, Timestamp: e.Timestamp}
	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.watchers {
		select {
		case w.send <- we:
		default:
			h.log.Printf("admin observer too slow, dropping event")
		}
	}
}

// ServeHTTP upgrades the request to a websocket and streams events
// until the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Printf("admin ws upgrade: %v", err)
		return
	}
	watch := &watcher{conn: conn, send: make(chan wireEvent, 64)}

	h.mu.Lock()
	h.watchers[watch] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.watchers, watch)
		h.mu.Unlock()
		conn.Close()
	}()

	go h.readPump(watch)
	h.writePump(watch)
}

// readPump only drains control frames (ping/close); admins never send
// commands over this channel.
func (h *Hub) readPump(w *watcher) {
	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(w *watcher) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-w.send:
			if !ok {
				return
			}
			w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := w.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
