package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/sjson"

	"taskdeck/internal/model"
	"taskdeck/internal/rules"
)

// SaveProfile merges profile details into the user document keyed by the
// auth-provided ID. Only fields the caller filled in overwrite what is
// stored; empty fields leave the existing values alone.
func (s *Store) SaveProfile(p *model.Profile) error {
	if p.ID == "" {
		return fmt.Errorf("profile id is required")
	}

	data, err := s.GetDoc(ColUsers, p.ID)
	if errors.Is(err, ErrNotFound) {
		data, err = json.Marshal(&model.Profile{ID: p.ID})
	}
	if err != nil {
		return err
	}

	for field, value := range map[string]string{
		"name":    p.Name,
		"age":     p.Age,
		"contact": p.Contact,
		"region":  p.Region,
	} {
		if value == "" {
			continue
		}
		data, err = sjson.SetBytes(data, field, value)
		if err != nil {
			return fmt.Errorf("failed to merge profile field %s: %w", field, err)
		}
	}
	return s.PutDoc(ColUsers, p.ID, data)
}

// GetProfile retrieves a user profile by ID.
func (s *Store) GetProfile(id string) (*model.Profile, error) {
	data, err := s.GetDoc(ColUsers, id)
	if err != nil {
		return nil, err
	}
	var p model.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", id, err)
	}
	return &p, nil
}

// DisplayName resolves the name to show for a user: the stored profile
// name, then the account display name, then a greeting derived from the
// email local part, then "Unknown". Account name and email are only
// known for the signed-in user; callers pass empty strings for others.
func (s *Store) DisplayName(id, accountName, email string) string {
	if p, err := s.GetProfile(id); err == nil && p.Name != "" {
		return p.Name
	}
	if accountName != "" {
		return accountName
	}
	if email != "" {
		return rules.DisplayNameFromEmail(email)
	}
	return "Unknown"
}
