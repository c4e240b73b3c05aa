package store

import (
	"errors"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"taskdeck/internal/model"
	"taskdeck/internal/rules"
)

func createTestProject(t *testing.T, s *Store, title string, subtasks []model.Subtask) *model.Project {
	t.Helper()
	p := &model.Project{
		Title:      title,
		Details:    "test project",
		DueDate:    time.Now().UTC().Add(14 * 24 * time.Hour),
		AssignedTo: "sandra",
		Subtasks:   subtasks,
	}
	if err := s.CreateProject(p); err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	return p
}

func TestCreateGetProject(t *testing.T) {
	s := setupTestStore(t)

	p := createTestProject(t, s, "Thesis", nil)
	if p.ID == "" {
		t.Fatal("create should assign an ID")
	}

	got, err := s.GetProject(p.ID)
	if err != nil {
		t.Fatalf("failed to get project: %v", err)
	}
	if got.Title != "Thesis" {
		t.Errorf("title = %q, want %q", got.Title, "Thesis")
	}
	if got.CreatedAt.IsZero() {
		t.Error("creation time should be server-assigned on write")
	}
}

func TestCreateProjectRequiresTitle(t *testing.T) {
	s := setupTestStore(t)

	err := s.CreateProject(&model.Project{})
	if err == nil {
		t.Error("expected error for empty title")
	}
}

func TestAddSubtaskRecomputesProgress(t *testing.T) {
	s := setupTestStore(t)

	// 1 of 3 done: progress 33
	p := createTestProject(t, s, "Thesis", []model.Subtask{
		{ID: "a", Name: "outline", Completed: true},
		{ID: "b", Name: "draft"},
		{ID: "c", Name: "review"},
	})
	if p.Progress != 33 {
		t.Fatalf("initial progress = %d, want 33", p.Progress)
	}

	// Adding a fourth, incomplete subtask dilutes progress to 25
	updated, err := s.AddSubtask(p.ID, "submit")
	if err != nil {
		t.Fatalf("failed to add subtask: %v", err)
	}
	if len(updated.Subtasks) != 4 {
		t.Errorf("expected 4 subtasks, got %d", len(updated.Subtasks))
	}
	if updated.Progress != 25 {
		t.Errorf("progress = %d, want 25", updated.Progress)
	}

	// List and progress must land in the same stored document
	data, _ := s.GetDoc(ColProjects, p.ID)
	if got := gjson.GetBytes(data, "progress").Int(); got != 25 {
		t.Errorf("stored progress = %d, want 25", got)
	}
	if got := gjson.GetBytes(data, "subtasks.#").Int(); got != 4 {
		t.Errorf("stored subtask count = %d, want 4", got)
	}
}

func TestToggleSubtask(t *testing.T) {
	s := setupTestStore(t)

	p := createTestProject(t, s, "Thesis", []model.Subtask{
		{ID: "a", Name: "outline"},
		{ID: "b", Name: "draft"},
	})

	updated, err := s.ToggleSubtask(p.ID, "a")
	if err != nil {
		t.Fatalf("failed to toggle: %v", err)
	}
	if !updated.Subtasks[0].Completed {
		t.Error("subtask a should be completed")
	}
	if updated.Progress != 50 {
		t.Errorf("progress = %d, want 50", updated.Progress)
	}

	// Toggle back restores the original state
	reverted, err := s.ToggleSubtask(p.ID, "a")
	if err != nil {
		t.Fatalf("failed to toggle back: %v", err)
	}
	if reverted.Subtasks[0].Completed || reverted.Progress != 0 {
		t.Errorf("after double toggle: completed=%v progress=%d, want false 0",
			reverted.Subtasks[0].Completed, reverted.Progress)
	}
}

func TestToggleSubtaskMissingParentAborts(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.ToggleSubtask("no-such-project", "a")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleSubtaskUnknownID(t *testing.T) {
	s := setupTestStore(t)

	p := createTestProject(t, s, "Thesis", []model.Subtask{{ID: "a", Name: "outline"}})

	_, err := s.ToggleSubtask(p.ID, "zz")
	if err == nil {
		t.Fatal("expected error for unknown subtask")
	}

	// No partial apply: stored document unchanged
	got, _ := s.GetProject(p.ID)
	if got.Subtasks[0].Completed {
		t.Error("failed toggle must not modify the stored document")
	}
}

// Two clients that both read the project before either writes will
// silently drop one toggle: the subtask list is replaced wholesale, so
// the second write overwrites the first. This is an inherent property of
// the whole-array read-modify-write pattern, kept deliberately.
func TestConcurrentToggleLosesUpdate(t *testing.T) {
	s := setupTestStore(t)

	p := createTestProject(t, s, "Thesis", []model.Subtask{
		{ID: "a", Name: "outline"},
		{ID: "b", Name: "draft"},
	})

	// Both clients read the same persisted state.
	client1, err := s.GetProject(p.ID)
	if err != nil {
		t.Fatalf("client1 read failed: %v", err)
	}
	client2, err := s.GetProject(p.ID)
	if err != nil {
		t.Fatalf("client2 read failed: %v", err)
	}

	// Client 1 toggles subtask a and writes.
	client1.Subtasks, _ = rules.ToggleSubtask(client1.Subtasks, "a")
	if err := s.replaceProject(client1); err != nil {
		t.Fatalf("client1 write failed: %v", err)
	}

	// Client 2 toggles subtask b from its stale copy and writes.
	client2.Subtasks, _ = rules.ToggleSubtask(client2.Subtasks, "b")
	if err := s.replaceProject(client2); err != nil {
		t.Fatalf("client2 write failed: %v", err)
	}

	final, err := s.GetProject(p.ID)
	if err != nil {
		t.Fatalf("final read failed: %v", err)
	}
	if final.Subtasks[0].Completed {
		t.Error("client1's toggle of subtask a should have been lost")
	}
	if !final.Subtasks[1].Completed {
		t.Error("client2's toggle of subtask b should have won")
	}
	if final.Progress != 50 {
		t.Errorf("final progress = %d, want 50 (one of two complete)", final.Progress)
	}
}

func TestListProjects(t *testing.T) {
	s := setupTestStore(t)

	createTestProject(t, s, "One", nil)
	createTestProject(t, s, "Two", nil)

	projects, err := s.ListProjects()
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(projects) != 2 {
		t.Errorf("expected 2 projects, got %d", len(projects))
	}
}
