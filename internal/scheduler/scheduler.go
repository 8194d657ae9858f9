// File: internal/scheduler/scheduler.go
// MUD Engine - Scheduler & Time (C8)

// Package scheduler runs two independent wall-clock-aligned loops: a
// tick loop firing at :00/:15/:30/:45 seconds past the minute (with
// named, individually enable/disable-able registered events), and a
// day/night loop that fires on designated minutes. Tick-aligned
// scheduling gives predictable, auditable cadence; named registration
// gives the admin surface a dynamic control handle.
package scheduler

import (
	"log"
	"sync"
	"time"

	"mudengine/internal/eventbus"
)

// NamedEvent is a registered handler the admin surface can list,
// enable, and disable by name.
type NamedEvent struct {
	Name      string
	Handler   func()
	Intervals []int // seconds-past-the-minute this fires on, subset of {0,15,30,45}
	Enabled   bool
	RunCount  int
	ErrorCount int
	LastRun   time.Time
}

// Broadcaster is the narrow slice of C9 the day/night loop needs.
type Broadcaster interface {
	BroadcastToAll(localeKey string, args map[string]any, authenticatedOnly bool)
}

var nightEntryMinutes = map[int]bool{0: true, 10: true, 20: true, 30: true, 40: true, 50: true}
var dayEntryMinutes = map[int]bool{5: true, 15: true, 25: true, 35: true, 45: true, 55: true}

// Scheduler owns the tick loop, the day/night loop, and the named
// event registry.
type Scheduler struct {
	log *log.Logger
	bus *eventbus.Bus
	bc  Broadcaster

	mu     sync.Mutex
	events map[string]*NamedEvent

	isNight bool

	stopCh chan struct{}
}

// New constructs a Scheduler. Call Run (tick loop) and RunDayNight in
// their own goroutines.
func New(bus *eventbus.Bus, bc Broadcaster, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(nopWriter{}, "[scheduler] ", log.LstdFlags)
	}
	return &Scheduler{
		log:    logger,
		bus:    bus,
		bc:     bc,
		events: make(map[string]*NamedEvent),
		stopCh: make(chan struct{}),
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// RegisterNamedEvent adds an event the tick loop invokes whenever the
// current second is in its Intervals set.
func (s *Scheduler) RegisterNamedEvent(e *NamedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !e.Enabled {
		e.Enabled = true
	}
	s.events[e.Name] = e
}

func nextAlignedTick(now time.Time) time.Time {
	sec := now.Second()
	for _, boundary := range []int{0, 15, 30, 45, 60} {
		if boundary > sec {
			t := now.Truncate(time.Minute).Add(time.Duration(boundary) * time.Second)
			if boundary == 60 {
				t = now.Truncate(time.Minute).Add(time.Minute)
			}
			return t
		}
	}
	return now.Truncate(time.Minute).Add(time.Minute)
}

// Run blocks, firing SchedulerTick and due named events at each
// aligned second until Stop is called.
func (s *Scheduler) Run() {
	for {
		now := time.Now()
		next := nextAlignedTick(now)
		select {
		case <-time.After(next.Sub(now)):
			s.fireTick(next.Second())
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) fireTick(second int) {
	if s.bus != nil {
		s.bus.Publish(eventbus.Event{Kind: eventbus.SchedulerTick, Data: map[string]any{"interval": second}})
	}

	s.mu.Lock()
	due := make([]*NamedEvent, 0, len(s.events))
	for _, e := range s.events {
		if !e.Enabled {
			continue
		}
		for _, interval := range e.Intervals {
			if interval == second {
				due = append(due, e)
				break
			}
		}
	}
	s.mu.Unlock()

	for _, e := range due {
		s.runNamed(e)
	}
}

func (s *Scheduler) runNamed(e *NamedEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			e.ErrorCount++
			s.mu.Unlock()
			s.log.Printf("named event %s panicked: %v", e.Name, r)
		}
	}()
	e.Handler()
	s.mu.Lock()
	e.RunCount++
	e.LastRun = time.Now()
	s.mu.Unlock()
}

// RunDayNight blocks, broadcasting dawn/dusk lines on minute
// boundaries until Stop is called.
func (s *Scheduler) RunDayNight() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.checkDayNight(time.Now())
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) checkDayNight(now time.Time) {
	if now.Second() != 0 {
		return
	}
	minute := now.Minute()

	s.mu.Lock()
	wasNight := s.isNight
	s.mu.Unlock()

	if nightEntryMinutes[minute] && !wasNight {
		s.mu.Lock()
		s.isNight = true
		s.mu.Unlock()
		s.announce("time.dusk")
	} else if dayEntryMinutes[minute] && wasNight {
		s.mu.Lock()
		s.isNight = false
		s.mu.Unlock()
		s.announce("time.dawn")
	}
}

func (s *Scheduler) announce(key string) {
	if s.bc != nil {
		s.bc.BroadcastToAll(key, nil, true)
	}
	if s.bus != nil {
		s.bus.Publish(eventbus.Event{Kind: eventbus.DayNightChanged, Data: map[string]any{"key": key}})
	}
}

// IsNight reports the current phase.
func (s *Scheduler) IsNight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isNight
}

// Stop halts both loops.
func (s *Scheduler) Stop() { close(s.stopCh) }

// List returns every registered named event for the admin surface.
func (s *Scheduler) List() []*NamedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*NamedEvent, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	return out
}

// Info returns one named event by name.
func (s *Scheduler) Info(name string) (*NamedEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[name]
	return e, ok
}

// Enable/Disable toggle a named event without unregistering it.
func (s *Scheduler) Enable(name string) bool  { return s.setEnabled(name, true) }
func (s *Scheduler) Disable(name string) bool { return s.setEnabled(name, false) }

func (s *Scheduler) setEnabled(name string, enabled bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[name]
	if !ok {
		return false
	}
	e.Enabled = enabled
	return true
}
