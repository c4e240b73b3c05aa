package store

import (
	"errors"
	"strings"
	"testing"
	"time"

	"taskdeck/internal/model"
)

func TestSendAndListMessages(t *testing.T) {
	s := setupTestStore(t)

	first, err := s.SendMessage("u1", "Sandra", "hello")
	if err != nil {
		t.Fatalf("failed to send: %v", err)
	}
	if first.Timestamp.IsZero() {
		t.Error("timestamp should be server-assigned on write")
	}
	if _, err := s.SendMessage("u2", "David", "hi back"); err != nil {
		t.Fatalf("failed to send: %v", err)
	}

	messages, err := s.ListMessages()
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Text != "hello" || messages[1].Text != "hi back" {
		t.Errorf("messages out of order: %q, %q", messages[0].Text, messages[1].Text)
	}
	if !messages[0].Timestamp.Before(messages[1].Timestamp) &&
		!messages[0].Timestamp.Equal(messages[1].Timestamp) {
		t.Error("messages should be ordered by timestamp ascending")
	}
}

func TestSendMessageEmpty(t *testing.T) {
	s := setupTestStore(t)

	if _, err := s.SendMessage("u1", "Sandra", ""); err == nil {
		t.Error("expected error for empty message")
	}
}

func TestAssignProject(t *testing.T) {
	s := setupTestStore(t)

	p, msg, err := s.AssignProject(&model.Project{
		Title:      "Data pipeline",
		Details:    "ingest and clean",
		DueDate:    time.Now().UTC().Add(10 * 24 * time.Hour),
		AssignedTo: "u2",
	}, "u1", "Sandra")
	if err != nil {
		t.Fatalf("failed to assign: %v", err)
	}

	if p.CreatedBy != "u1" {
		t.Errorf("createdBy = %q, want u1", p.CreatedBy)
	}
	if msg.ProjectID != p.ID {
		t.Errorf("announcement should link the project: %q vs %q", msg.ProjectID, p.ID)
	}
	if !strings.HasPrefix(msg.Text, "📋 New Project Assigned:") {
		t.Errorf("unexpected announcement text: %q", msg.Text)
	}

	// Both documents committed together
	stored, err := s.GetProject(p.ID)
	if err != nil {
		t.Fatalf("project missing after assign: %v", err)
	}
	if stored.CreatedAt.IsZero() {
		t.Error("project creation time should be server-assigned")
	}
	messages, _ := s.ListMessages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
}

func TestAssignImportantProject(t *testing.T) {
	s := setupTestStore(t)

	_, msg, err := s.AssignProject(&model.Project{
		Title:       "Demo day",
		DueDate:     time.Now().UTC().Add(2 * 24 * time.Hour),
		IsImportant: true,
	}, "u1", "Sandra")
	if err != nil {
		t.Fatalf("failed to assign: %v", err)
	}
	if !strings.HasPrefix(msg.Text, "🌟 Important Project Assigned:") {
		t.Errorf("important announcement text = %q", msg.Text)
	}
}

func TestDanglingProjectReferenceTolerated(t *testing.T) {
	s := setupTestStore(t)

	p, msg, err := s.AssignProject(&model.Project{
		Title:   "Short lived",
		DueDate: time.Now().UTC().Add(24 * time.Hour),
	}, "u1", "Sandra")
	if err != nil {
		t.Fatalf("failed to assign: %v", err)
	}

	if err := s.DeleteDoc(ColProjects, p.ID); err != nil {
		t.Fatalf("failed to delete project: %v", err)
	}

	// The message still lists and still carries the dead reference; only
	// following it reports not-found.
	messages, err := s.ListMessages()
	if err != nil {
		t.Fatalf("failed to list messages: %v", err)
	}
	if len(messages) != 1 || messages[0].ProjectID != msg.ProjectID {
		t.Fatalf("announcement should survive project deletion: %+v", messages)
	}
	if _, err := s.GetProject(messages[0].ProjectID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound following dangling reference, got %v", err)
	}
}
