package notify

import (
	"testing"
	"time"
)

func TestScheduleDelivers(t *testing.T) {
	fired := make(chan Reminder, 1)
	s := NewScheduler(func(r Reminder) { fired <- r })
	defer s.Stop()

	id, err := s.Schedule("Task Reminder 🎉", "standup (09:00 - 09:15)", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("failed to schedule: %v", err)
	}
	if id == "" {
		t.Fatal("schedule should return an ID")
	}

	select {
	case r := <-fired:
		if r.Title != "Task Reminder 🎉" {
			t.Errorf("title = %q", r.Title)
		}
	case <-time.After(time.Second):
		t.Fatal("reminder never fired")
	}

	if s.Pending() != 0 {
		t.Errorf("pending = %d after fire, want 0", s.Pending())
	}
}

func TestScheduleValidation(t *testing.T) {
	s := NewScheduler(nil)
	defer s.Stop()

	if _, err := s.Schedule("", "body", time.Second); err == nil {
		t.Error("expected error for empty title")
	}
	if _, err := s.Schedule("t", "body", -time.Second); err == nil {
		t.Error("expected error for negative delay")
	}
}

func TestCancel(t *testing.T) {
	fired := make(chan Reminder, 1)
	s := NewScheduler(func(r Reminder) { fired <- r })
	defer s.Stop()

	id, _ := s.Schedule("soon", "", 50*time.Millisecond)
	if !s.Cancel(id) {
		t.Fatal("cancel of pending reminder should succeed")
	}
	if s.Cancel(id) {
		t.Error("second cancel should report false")
	}

	select {
	case <-fired:
		t.Error("cancelled reminder must not fire")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStopCancelsAll(t *testing.T) {
	s := NewScheduler(nil)

	_, _ = s.Schedule("one", "", time.Hour)
	_, _ = s.Schedule("two", "", time.Hour)
	if s.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", s.Pending())
	}

	s.Stop()
	if s.Pending() != 0 {
		t.Errorf("pending = %d after stop, want 0", s.Pending())
	}
}
