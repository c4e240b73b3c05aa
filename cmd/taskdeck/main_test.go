package main

import (
	"strings"
	"testing"
	"time"

	"taskdeck/internal/model"
	"taskdeck/internal/store"
)

// setupTestEnv points the CLI at a throwaway data directory and opens
// the same backends the commands do.
func setupTestEnv(t *testing.T) *env {
	t.Helper()
	old := flagDataDir
	flagDataDir = t.TempDir()
	t.Cleanup(func() { flagDataDir = old })

	e, err := openEnv()
	if err != nil {
		t.Fatalf("failed to open environment: %v", err)
	}
	t.Cleanup(func() { _ = e.store.Close() })
	return e
}

func TestRequireUser(t *testing.T) {
	e := setupTestEnv(t)

	if _, err := e.requireUser(); err == nil || !strings.Contains(err.Error(), "not signed in") {
		t.Errorf("expected a sign-in hint, got %v", err)
	}

	user, err := e.auth.SignUp("cli@example.com", "secret1", "")
	if err != nil {
		t.Fatalf("failed to sign up: %v", err)
	}
	got, err := e.requireUser()
	if err != nil {
		t.Fatalf("failed to resolve user: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("resolved wrong user: %+v", got)
	}
}

func TestSessionSurvivesReopen(t *testing.T) {
	e := setupTestEnv(t)

	if _, err := e.auth.SignUp("cli@example.com", "secret1", ""); err != nil {
		t.Fatalf("failed to sign up: %v", err)
	}
	_ = e.store.Close()

	// A second invocation against the same data dir sees the session.
	e2, err := openEnv()
	if err != nil {
		t.Fatalf("failed to reopen environment: %v", err)
	}
	defer e2.store.Close()

	user, err := e2.requireUser()
	if err != nil {
		t.Fatalf("session should survive reopen: %v", err)
	}
	if user.Email != "cli@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestGreetingNameFallbacks(t *testing.T) {
	e := setupTestEnv(t)

	// No account name and no profile: greet from the email local part.
	user, err := e.auth.SignUp("john.doe.smith@example.com", "secret1", "")
	if err != nil {
		t.Fatalf("failed to sign up: %v", err)
	}
	if got := assignedByName(e.store, user.ID, user); got != "john doe smith" {
		t.Errorf("greeting = %q, want %q", got, "john doe smith")
	}

	// The name given at signup takes precedence over the email.
	_ = e.auth.Logout()
	named, err := e.auth.SignUp("lead@example.com", "secret1", "Sandra")
	if err != nil {
		t.Fatalf("failed to sign up: %v", err)
	}
	if got := assignedByName(e.store, named.ID, named); got != "Sandra" {
		t.Errorf("greeting = %q, want %q", got, "Sandra")
	}

	// A profile name overrides the account name.
	if err := e.store.SaveProfile(&model.Profile{ID: named.ID, Name: "Sandra Wong"}); err != nil {
		t.Fatalf("failed to save profile: %v", err)
	}
	if got := assignedByName(e.store, named.ID, named); got != "Sandra Wong" {
		t.Errorf("greeting = %q, want %q", got, "Sandra Wong")
	}

	// Another user's project shows Unknown without their profile.
	if got := assignedByName(e.store, "someone-else", named); got != "Unknown" {
		t.Errorf("foreign creator = %q, want %q", got, "Unknown")
	}
}

func TestParseDueDate(t *testing.T) {
	due, err := parseDueDate("2026-09-15")
	if err != nil {
		t.Fatalf("failed to parse date: %v", err)
	}
	if due.Year() != 2026 || due.Month() != time.September || due.Day() != 15 {
		t.Errorf("parsed wrong date: %v", due)
	}

	if _, err := parseDueDate("next tuesday"); err == nil {
		t.Error("expected error for unparseable date")
	}

	tomorrow, err := parseDueDate("tomorrow")
	if err != nil {
		t.Fatalf("failed to parse tomorrow: %v", err)
	}
	if !tomorrow.After(time.Now()) {
		t.Errorf("tomorrow should be in the future, got %v", tomorrow)
	}
}

func TestParseDueDateAnchorsToLocalDay(t *testing.T) {
	now := time.Now()

	today, err := parseDueDate("today")
	if err != nil {
		t.Fatalf("failed to parse today: %v", err)
	}
	y, m, d := today.In(time.Local).Date()
	ny, nm, nd := now.Date()
	if y != ny || m != nm || d != nd {
		t.Errorf("today = %v, want the local calendar day of %v", today, now)
	}
	if today.Before(now) {
		t.Errorf("today must not already be overdue, got %v", today)
	}

	tomorrow, _ := parseDueDate("tomorrow")
	wy, wm, wd := now.AddDate(0, 0, 1).Date()
	y, m, d = tomorrow.In(time.Local).Date()
	if y != wy || m != wm || d != wd {
		t.Errorf("tomorrow = %v, want the next local calendar day", tomorrow)
	}
}

func TestPriorityTag(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		p    model.Project
		want string
	}{
		{"due soon", model.Project{DueDate: now.Add(72 * time.Hour)}, "High"},
		{"due next month", model.Project{DueDate: now.Add(20 * 24 * time.Hour)}, "Medium"},
		{"distant", model.Project{DueDate: now.Add(90 * 24 * time.Hour)}, "Low"},
		{"important overrides date", model.Project{DueDate: now.Add(90 * 24 * time.Hour), IsImportant: true}, "High"},
		{"past due", model.Project{DueDate: now.Add(-time.Hour)}, "Overdue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := priorityTag(&tt.p, now); got != tt.want {
				t.Errorf("priorityTag = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAssignFlowThroughStore(t *testing.T) {
	e := setupTestEnv(t)

	user, err := e.auth.SignUp("lead@example.com", "secret1", "Lead")
	if err != nil {
		t.Fatalf("failed to sign up: %v", err)
	}

	// Simulate what projectAssignCmd does.
	p := &model.Project{Title: "Quarterly report", DueDate: time.Now().Add(7 * 24 * time.Hour)}
	sender := e.store.DisplayName(user.ID, user.DisplayName, user.Email)
	p, msg, err := e.store.AssignProject(p, user.ID, sender)
	if err != nil {
		t.Fatalf("failed to assign: %v", err)
	}
	if msg.ProjectID != p.ID {
		t.Errorf("announcement should reference the project, got %q", msg.ProjectID)
	}

	if _, err := e.store.GetDoc(store.ColProjects, p.ID); err != nil {
		t.Errorf("project document missing: %v", err)
	}
}
