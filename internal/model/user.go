package model

import (
	"encoding/json"
	"fmt"
)

type Company struct {
	Name string `json:"name"`
}

// User is read-only from the client's perspective.
type User struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Username string  `json:"username,omitempty"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Website  string  `json:"website,omitempty"`
	Company  Company `json:"company"`
}

func (u *User) UnmarshalJSON(b []byte) error {
	type alias User
	var raw struct {
		alias
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*u = User(raw.alias)
	u.ID = id
	return nil
}
