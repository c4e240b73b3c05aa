// Package notify schedules local reminders: a title and body delivered
// after a relative delay. Delivery is fire-and-forget; there is no
// acknowledgment or retry.
package notify

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Reminder is a scheduled local notification.
type Reminder struct {
	ID    string
	Title string
	Body  string
	At    time.Time
}

// Scheduler delivers reminders through a callback after their delay
// elapses.
type Scheduler struct {
	log     *slog.Logger
	deliver func(Reminder)

	mu      sync.Mutex
	nextID  int
	pending map[string]*time.Timer
}

// NewScheduler creates a scheduler. deliver is invoked from a timer
// goroutine once per fired reminder; nil falls back to logging only.
func NewScheduler(deliver func(Reminder)) *Scheduler {
	return &Scheduler{
		log:     slog.New(slog.NewTextHandler(os.Stderr, nil)),
		deliver: deliver,
		pending: make(map[string]*time.Timer),
	}
}

// Schedule queues a reminder to fire after delay and returns its ID.
func (s *Scheduler) Schedule(title, body string, delay time.Duration) (string, error) {
	if title == "" {
		return "", fmt.Errorf("reminder title is required")
	}
	if delay < 0 {
		return "", fmt.Errorf("reminder delay must not be negative")
	}

	s.mu.Lock()
	s.nextID++
	id := fmt.Sprintf("reminder-%d", s.nextID)
	r := Reminder{ID: id, Title: title, Body: body, At: time.Now().Add(delay)}
	s.pending[id] = time.AfterFunc(delay, func() { s.fire(r) })
	s.mu.Unlock()

	return id, nil
}

// Cancel stops a pending reminder. Cancelling an unknown or already-fired
// ID reports false.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer, ok := s.pending[id]
	if !ok {
		return false
	}
	delete(s.pending, id)
	return timer.Stop()
}

// Pending returns how many reminders have not fired yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending reminder.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.pending {
		timer.Stop()
		delete(s.pending, id)
	}
}

func (s *Scheduler) fire(r Reminder) {
	s.mu.Lock()
	delete(s.pending, r.ID)
	s.mu.Unlock()

	s.log.Info("reminder fired", "title", r.Title, "body", r.Body)
	if s.deliver != nil {
		s.deliver(r)
	}
}
