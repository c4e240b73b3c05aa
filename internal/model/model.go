// Package model defines the document types stored in the taskdeck backend:
// projects with subtasks, daily task groups, chat messages, and user profiles.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Priority is a project's display priority, derived from its due date and
// important flag at render time. It is never authoritative in storage.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank returns the sort weight of a priority. Higher sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Subtask is an atomic completable unit of work owned by a project.
// Each subtask carries a stable generated ID so toggles address the item
// itself rather than its position in the list.
type Subtask struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Project is a chat-assigned unit of work with a due date, an assignee,
// and an ordered subtask list. Progress is derived from the subtasks and
// stored alongside them; the two are always written together.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Details     string    `json:"details"`
	DueDate     time.Time `json:"dueDate"`
	CreatedBy   string    `json:"createdBy"`
	AssignedTo  string    `json:"assignedTo"`
	IsImportant bool      `json:"isImportant"`
	Subtasks    []Subtask `json:"subtasks"`
	Progress    int       `json:"progress"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Task is an atomic completable unit of work owned by a daily task group.
type Task struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// TaskGroup is a named daily-task bucket keyed by a human-entered name.
type TaskGroup struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tasks     []Task    `json:"tasks"`
	CreatedAt time.Time `json:"createdAt"`
}

// CompletedCount returns how many tasks in the group are done.
func (g *TaskGroup) CompletedCount() int {
	n := 0
	for _, t := range g.Tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// Message is a group-chat entry. ProjectID is set when the message
// announces a project assignment; it may dangle if the project is gone
// and readers must tolerate that.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	ProjectID  string    `json:"projectId,omitempty"`
}

// Profile holds user details independent of the auth record, merged by
// the auth-provided user ID.
type Profile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Age     string `json:"age"`
	Contact string `json:"contact"`
	Region  string `json:"region"`
}

// GenerateID returns a new unique document or item identifier.
func GenerateID() string {
	return uuid.NewString()
}
