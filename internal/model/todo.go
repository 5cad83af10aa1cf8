package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Todo is a single task as seen by the client. IDs and user references are
// strings even though the backing API serves them as numbers.
type Todo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Equal reports whether two todos are structurally identical.
func (t Todo) Equal(o Todo) bool {
	return t.ID == o.ID &&
		t.Title == o.Title &&
		t.Completed == o.Completed &&
		t.UserID == o.UserID &&
		t.CreatedAt.Equal(o.CreatedAt) &&
		t.UpdatedAt.Equal(o.UpdatedAt)
}

// UnmarshalJSON accepts numeric or string ids and optional timestamps.
func (t *Todo) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID        json.RawMessage `json:"id"`
		Title     string          `json:"title"`
		Completed bool            `json:"completed"`
		UserID    json.RawMessage `json:"userId"`
		CreatedAt *time.Time      `json:"createdAt"`
		UpdatedAt *time.Time      `json:"updatedAt"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	id, err := decodeID(raw.ID)
	if err != nil {
		return fmt.Errorf("todo id: %w", err)
	}
	userID, err := decodeID(raw.UserID)
	if err != nil {
		return fmt.Errorf("todo userId: %w", err)
	}

	*t = Todo{
		ID:        id,
		Title:     raw.Title,
		Completed: raw.Completed,
		UserID:    userID,
	}
	if raw.CreatedAt != nil {
		t.CreatedAt = *raw.CreatedAt
	}
	if raw.UpdatedAt != nil {
		t.UpdatedAt = *raw.UpdatedAt
	}
	return nil
}

// TodoInput is a todo without an id, as submitted by the create dialog.
type TodoInput struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	UserID    string `json:"userId"`
}

// TodoPatch carries a partial update. Nil fields are left untouched by Apply.
type TodoPatch struct {
	Title     *string    `json:"title,omitempty"`
	Completed *bool      `json:"completed,omitempty"`
	UserID    *string    `json:"userId,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// PatchFrom builds a patch that sets every mutable field of t.
func PatchFrom(t Todo) TodoPatch {
	p := TodoPatch{
		Title:     &t.Title,
		Completed: &t.Completed,
		UserID:    &t.UserID,
	}
	if !t.CreatedAt.IsZero() {
		p.CreatedAt = &t.CreatedAt
	}
	return p
}

// Apply returns t with the patch fields merged in.
func (p TodoPatch) Apply(t Todo) Todo {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.UserID != nil {
		t.UserID = *p.UserID
	}
	if p.CreatedAt != nil {
		t.CreatedAt = *p.CreatedAt
	}
	return t
}

// UnmarshalJSON accepts a numeric or string userId.
func (in *TodoInput) UnmarshalJSON(b []byte) error {
	var raw struct {
		Title     string          `json:"title"`
		Completed bool            `json:"completed"`
		UserID    json.RawMessage `json:"userId"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	userID, err := decodeID(raw.UserID)
	if err != nil {
		return fmt.Errorf("todo userId: %w", err)
	}
	*in = TodoInput{Title: raw.Title, Completed: raw.Completed, UserID: userID}
	return nil
}

// UnmarshalJSON accepts a numeric or string userId. Absent fields stay nil.
func (p *TodoPatch) UnmarshalJSON(b []byte) error {
	var raw struct {
		Title     *string         `json:"title"`
		Completed *bool           `json:"completed"`
		UserID    json.RawMessage `json:"userId"`
		CreatedAt *time.Time      `json:"createdAt"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = TodoPatch{Title: raw.Title, Completed: raw.Completed, CreatedAt: raw.CreatedAt}
	if len(raw.UserID) > 0 && string(raw.UserID) != "null" {
		userID, err := decodeID(raw.UserID)
		if err != nil {
			return fmt.Errorf("todo userId: %w", err)
		}
		p.UserID = &userID
	}
	return nil
}

// decodeID turns a JSON string or number into its string form.
// A missing or null value decodes to "".
func decodeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("invalid id %s", raw)
	}
	return n.String(), nil
}
