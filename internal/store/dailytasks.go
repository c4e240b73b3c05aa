package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"taskdeck/internal/model"
	"taskdeck/internal/rules"
)

// EnsureGroup returns the daily-task group with the given name, creating
// an empty one when it does not exist. Groups are keyed by the
// human-entered name; one document per group.
func (s *Store) EnsureGroup(name string) (*model.TaskGroup, error) {
	if name == "" {
		return nil, fmt.Errorf("group name is required")
	}

	g, err := s.GetGroupByName(name)
	if err == nil {
		return g, nil
	}

	g = &model.TaskGroup{
		ID:        model.GenerateID(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to encode group: %w", err)
	}
	if err := s.PutDoc(ColDailyTasks, g.ID, data); err != nil {
		return nil, err
	}
	return g, nil
}

// GetGroupByName finds a group by its name via an equality query.
func (s *Store) GetGroupByName(name string) (*model.TaskGroup, error) {
	docs, err := s.QueryEqual(ColDailyTasks, "name", name)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("daily task group %q: %w", name, ErrNotFound)
	}

	// One document per group is assumed; take the first match.
	var g model.TaskGroup
	if err := json.Unmarshal(docs[0].Data, &g); err != nil {
		return nil, fmt.Errorf("failed to decode group %s: %w", docs[0].ID, err)
	}
	return &g, nil
}

// ListGroups returns all daily-task groups, latest created first.
func (s *Store) ListGroups() ([]model.TaskGroup, error) {
	docs, err := s.ListDocs(ColDailyTasks)
	if err != nil {
		return nil, err
	}
	var groups []model.TaskGroup
	for _, d := range docs {
		var g model.TaskGroup
		if err := json.Unmarshal(d.Data, &g); err != nil {
			return nil, fmt.Errorf("failed to decode group %s: %w", d.ID, err)
		}
		groups = append(groups, g)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})
	return groups, nil
}

// AddTask appends a task to a group, creating the group when needed. The
// whole task list is written back in one replacement.
func (s *Store) AddTask(groupName, taskName string) (*model.TaskGroup, error) {
	if taskName == "" {
		return nil, fmt.Errorf("task name is required")
	}

	g, err := s.EnsureGroup(groupName)
	if err != nil {
		return nil, err
	}

	g.Tasks = append(g.Tasks, model.Task{
		ID:        model.GenerateID(),
		Name:      taskName,
		CreatedAt: time.Now().UTC(),
	})
	return g, s.replaceGroup(g)
}

// ToggleTask flips the completion flag of one task in a group. The fetch
// happens against the current persisted state; a missing group aborts the
// operation with no partial effects.
func (s *Store) ToggleTask(groupName, taskID string) (*model.TaskGroup, error) {
	g, err := s.GetGroupByName(groupName)
	if err != nil {
		return nil, err
	}

	updated, found := rules.ToggleTask(g.Tasks, taskID)
	if !found {
		return nil, fmt.Errorf("task not found in group %q: %s", groupName, taskID)
	}
	g.Tasks = updated
	return g, s.replaceGroup(g)
}

// RemoveTask deletes one task from a group by rewriting the remaining
// list.
func (s *Store) RemoveTask(groupName, taskID string) (*model.TaskGroup, error) {
	g, err := s.GetGroupByName(groupName)
	if err != nil {
		return nil, err
	}

	updated, found := rules.RemoveTask(g.Tasks, taskID)
	if !found {
		return nil, fmt.Errorf("task not found in group %q: %s", groupName, taskID)
	}
	g.Tasks = updated
	return g, s.replaceGroup(g)
}

// DeleteGroup removes a group document and every task in it.
func (s *Store) DeleteGroup(name string) error {
	g, err := s.GetGroupByName(name)
	if err != nil {
		return err
	}
	return s.DeleteDoc(ColDailyTasks, g.ID)
}

func (s *Store) replaceGroup(g *model.TaskGroup) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to encode group: %w", err)
	}
	return s.PutDoc(ColDailyTasks, g.ID, data)
}
