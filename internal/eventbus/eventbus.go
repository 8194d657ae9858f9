// File: internal/eventbus/eventbus.go
// MUD Engine - Event Bus

// Package eventbus implements typed pub/sub with queued delivery: a
// single consumer goroutine drains a FIFO buffered to 4096 events and
// dispatches to each kind's subscribers in registration order.
// Publishers never block on subscriber work; when the buffer is full,
// Publish drops the new event and logs it.
package eventbus

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind enumerates the event types the core publishes.
type Kind int

const (
	PlayerConnected Kind = iota
	PlayerDisconnected
	PlayerLogin
	PlayerLogout
	PlayerCommand
	PlayerMoved
	RoomEntered
	RoomLeft
	RoomBroadcast
	PlayerEmote
	PlayerGive
	PlayerFollow
	ObjectPickedUp
	ObjectDropped
	ServerStarted
	ServerStopping
	SchedulerTick
	WorldUpdated
	PlayerStatusChanged
	DayNightChanged
	CombatStarted
	CombatEnded
	MonsterSpawned
	MonsterDied
	MonsterMoved
)

var kindNames = map[Kind]string{
	PlayerConnected:     "player_connected",
	PlayerDisconnected:  "player_disconnected",
	PlayerLogin:         "player_login",
	PlayerLogout:        "player_logout",
	PlayerCommand:       "player_command",
	PlayerMoved:         "player_moved",
	RoomEntered:         "room_entered",
	RoomLeft:            "room_left",
	RoomBroadcast:       "room_broadcast",
	PlayerEmote:         "player_emote",
	PlayerGive:          "player_give",
	PlayerFollow:        "player_follow",
	ObjectPickedUp:      "object_picked_up",
	ObjectDropped:       "object_dropped",
	ServerStarted:       "server_started",
	ServerStopping:      "server_stopping",
	SchedulerTick:       "scheduler_tick",
	WorldUpdated:        "world_updated",
	PlayerStatusChanged: "player_status_changed",
	DayNightChanged:     "day_night_changed",
	CombatStarted:       "combat_started",
	CombatEnded:         "combat_ended",
	MonsterSpawned:      "monster_spawned",
	MonsterDied:         "monster_died",
	MonsterMoved:        "monster_moved",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "custom"
}

// Event carries everything a subscriber needs to react to a state change.
type Event struct {
	ID        string
	Kind      Kind
	Source    string
	Target    string
	RoomID    string
	Data      map[string]any
	Timestamp time.Time
}

// Handler reacts to an Event. Handlers run synchronously on the bus's
// single consumer goroutine; a handler that needs parallelism must
// spawn its own goroutine.
type Handler func(Event)

const maxHistory = 1000

// Bus is the process-wide typed publish/subscribe hub.
type Bus struct {
	log *log.Logger

	mu          sync.RWMutex
	subscribers map[Kind][]Handler

	histMu  sync.Mutex
	history []Event

	queue   chan Event
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a Bus. Call Start to begin dispatching.
func New(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.New(logWriter{}, "[eventbus] ", log.LstdFlags)
	}
	return &Bus{
		log:         logger,
		subscribers: make(map[Kind][]Handler),
		queue:       make(chan Event, 4096),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) { return len(p), nil }

// Subscribe registers handler for kind. Handlers for a given kind are
// invoked in registration order.
func (b *Bus) Subscribe(kind Kind, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[kind] = append(b.subscribers[kind], handler)
}

// Start begins the consumer goroutine and publishes ServerStarted.
func (b *Bus) Start() {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return
	}
	b.running = true
	b.mu.Unlock()

	go b.loop()
	b.Publish(Event{Kind: ServerStarted, Source: "eventbus"})
}

// Stop publishes ServerStopping, drains the queue, then halts the consumer.
func (b *Bus) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	b.Publish(Event{Kind: ServerStopping, Source: "eventbus"})
	close(b.stopCh)
	<-b.doneCh

	b.mu.Lock()
	b.running = false
	b.mu.Unlock()
}

// Publish enqueues an event for asynchronous dispatch.
func (b *Bus) Publish(e Event) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	select {
	case b.queue <- e:
	default:
		b.log.Printf("queue full, dropping event %s (%s)", e.ID, e.Kind)
	}
}

func (b *Bus) loop() {
	defer close(b.doneCh)
	for {
		select {
		case e := <-b.queue:
			b.dispatch(e)
		case <-b.stopCh:
			// Drain whatever is already queued before exiting.
			for {
				select {
				case e := <-b.queue:
					b.dispatch(e)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) dispatch(e Event) {
	b.addHistory(e)

	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[e.Kind]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		b.invoke(h, e)
	}
}

func (b *Bus) invoke(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Printf("subscriber panic on %s: %v", e.Kind, r)
		}
	}()
	h(e)
}

func (b *Bus) addHistory(e Event) {
	b.histMu.Lock()
	defer b.histMu.Unlock()
	b.history = append(b.history, e)
	if len(b.history) > maxHistory {
		b.history = b.history[len(b.history)-maxHistory:]
	}
}

// History returns up to limit most-recent events, optionally filtered
// by kind. limit<=0 returns the full retained history.
func (b *Bus) History(kind *Kind, limit int) []Event {
	b.histMu.Lock()
	defer b.histMu.Unlock()

	var out []Event
	if kind == nil {
		out = append(out, b.history...)
	} else {
		for _, e := range b.history {
			if e.Kind == *kind {
				out = append(out, e)
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
