package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/tidwall/gjson"

	"taskdeck/internal/model"
	"taskdeck/internal/rules"
)

// SendMessage appends a chat message. The timestamp is server-assigned on
// write, not taken from the caller.
func (s *Store) SendMessage(senderID, senderName, text string) (*model.Message, error) {
	if text == "" {
		return nil, fmt.Errorf("message text is required")
	}

	msg := &model.Message{
		ID:         model.GenerateID(),
		SenderID:   senderID,
		SenderName: senderName,
		Text:       text,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	data, err = withServerTimestamp(data, "timestamp")
	if err != nil {
		return nil, err
	}
	if err := s.PutDoc(ColMessages, msg.ID, data); err != nil {
		return nil, err
	}

	ts := gjson.GetBytes(data, "timestamp").String()
	msg.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
	return msg, nil
}

// ListMessages returns the chat history ordered by timestamp ascending.
func (s *Store) ListMessages() ([]model.Message, error) {
	docs, err := s.ListDocs(ColMessages)
	if err != nil {
		return nil, err
	}
	var messages []model.Message
	for _, d := range docs {
		var m model.Message
		if err := json.Unmarshal(d.Data, &m); err != nil {
			return nil, fmt.Errorf("failed to decode message %s: %w", d.ID, err)
		}
		messages = append(messages, m)
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}

// AssignProject creates a project and the chat message announcing it in
// one batched write: both documents commit together or not at all. The
// announcement carries the new project's ID so readers can open it from
// the chat; a reader finding the project gone later simply sees a dangling
// reference.
func (s *Store) AssignProject(p *model.Project, senderID, senderName string) (*model.Project, *model.Message, error) {
	if p.Title == "" {
		return nil, nil, fmt.Errorf("project title is required")
	}
	if p.ID == "" {
		p.ID = model.GenerateID()
	}
	p.CreatedBy = senderID
	p.Progress = rules.ProjectProgress(p.Subtasks)

	projectData, err := json.Marshal(p)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode project: %w", err)
	}
	projectData, err = withServerTimestamp(projectData, "createdAt")
	if err != nil {
		return nil, nil, err
	}

	text := "📋 New Project Assigned: " + p.Title
	if p.IsImportant {
		text = "🌟 Important Project Assigned: " + p.Title
	}
	msg := &model.Message{
		ID:         model.GenerateID(),
		SenderID:   senderID,
		SenderName: senderName,
		Text:       text,
		ProjectID:  p.ID,
	}
	msgData, err := json.Marshal(msg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode message: %w", err)
	}
	msgData, err = withServerTimestamp(msgData, "timestamp")
	if err != nil {
		return nil, nil, err
	}

	err = s.WriteBatch([]Write{
		{Collection: ColProjects, ID: p.ID, Data: projectData},
		{Collection: ColMessages, ID: msg.ID, Data: msgData},
	})
	if err != nil {
		return nil, nil, err
	}

	ts := gjson.GetBytes(msgData, "timestamp").String()
	msg.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
	return p, msg, nil
}
