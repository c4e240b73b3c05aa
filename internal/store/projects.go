package store

import (
	"encoding/json"
	"fmt"

	"taskdeck/internal/model"
	"taskdeck/internal/rules"
)

// CreateProject stores a new project document. The ID is generated when
// empty and the creation time is server-assigned.
func (s *Store) CreateProject(p *model.Project) error {
	if p.Title == "" {
		return fmt.Errorf("project title is required")
	}
	if p.ID == "" {
		p.ID = model.GenerateID()
	}
	p.Progress = rules.ProjectProgress(p.Subtasks)

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	data, err = withServerTimestamp(data, "createdAt")
	if err != nil {
		return err
	}
	return s.PutDoc(ColProjects, p.ID, data)
}

// GetProject retrieves a project by ID.
func (s *Store) GetProject(id string) (*model.Project, error) {
	data, err := s.GetDoc(ColProjects, id)
	if err != nil {
		return nil, err
	}
	var p model.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode project %s: %w", id, err)
	}
	return &p, nil
}

// ListProjects returns all projects.
func (s *Store) ListProjects() ([]model.Project, error) {
	docs, err := s.ListDocs(ColProjects)
	if err != nil {
		return nil, err
	}
	var projects []model.Project
	for _, d := range docs {
		var p model.Project
		if err := json.Unmarshal(d.Data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode project %s: %w", d.ID, err)
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// AddSubtask appends a new incomplete subtask to a project and persists
// the grown list together with the recomputed progress in one write.
func (s *Store) AddSubtask(projectID, name string) (*model.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("subtask name is required")
	}

	p, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	p.Subtasks = append(p.Subtasks, model.Subtask{
		ID:   model.GenerateID(),
		Name: name,
	})
	return p, s.replaceProject(p)
}

// ToggleSubtask flips the completion flag of one subtask. The full
// subtask list and the recomputed progress are written back as a single
// document replacement; if the project is missing the operation aborts
// without side effects.
func (s *Store) ToggleSubtask(projectID, subtaskID string) (*model.Project, error) {
	p, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	updated, found := rules.ToggleSubtask(p.Subtasks, subtaskID)
	if !found {
		return nil, fmt.Errorf("subtask not found in project %s: %s", projectID, subtaskID)
	}
	p.Subtasks = updated
	return p, s.replaceProject(p)
}

// replaceProject recomputes progress from the full subtask list and
// writes the whole document. The stored progress is never trusted after a
// mutation; it is always derived from the list being written.
func (s *Store) replaceProject(p *model.Project) error {
	p.Progress = rules.ProjectProgress(p.Subtasks)
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	return s.PutDoc(ColProjects, p.ID, data)
}
