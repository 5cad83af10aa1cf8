package model

import (
	"encoding/json"
	"errors"
)

// Result is the {data, error} envelope returned at the fetch-action boundary.
// Exactly one side is populated: build values with OK or Fail. A zero Result
// counts as failed with "unknown error".
type Result[T any] struct {
	Data  T
	Error string
	ok    bool
}

// OK wraps a successful value.
func OK[T any](data T) Result[T] {
	return Result[T]{Data: data, ok: true}
}

const unknownError = "unknown error"

// Fail wraps an error message. An empty message is replaced with "unknown error"
// so a failed result never looks successful.
func Fail[T any](msg string) Result[T] {
	if msg == "" {
		msg = unknownError
	}
	return Result[T]{Error: msg}
}

// OK reports whether the result carries data.
func (r Result[T]) OK() bool {
	return r.ok
}

// Message returns the error message, or "" on success.
func (r Result[T]) Message() string {
	switch {
	case r.ok:
		return ""
	case r.Error == "":
		return unknownError
	default:
		return r.Error
	}
}

// Err returns the error message as an error, or nil on success.
func (r Result[T]) Err() error {
	if r.ok {
		return nil
	}
	return errors.New(r.Message())
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.ok {
		return json.Marshal(struct {
			Data  T   `json:"data"`
			Error any `json:"error"`
		}{Data: r.Data})
	}
	return json.Marshal(struct {
		Data  any    `json:"data"`
		Error string `json:"error"`
	}{Error: r.Message()})
}

func (r *Result[T]) UnmarshalJSON(b []byte) error {
	var raw struct {
		Data  json.RawMessage `json:"data"`
		Error *string         `json:"error"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Error != nil {
		*r = Fail[T](*raw.Error)
		return nil
	}
	var data T
	if len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, &data); err != nil {
			return err
		}
	}
	*r = OK(data)
	return nil
}
