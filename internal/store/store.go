// Package store holds the client-side list of todos that the UI renders.
//
// Every user mutation first copies the current list into a single
// previous-state slot, so the last mutation can be undone with
// RollbackToPreviousState. The slot holds one generation only: two
// overlapping mutations share it, and rolling back after both undoes only
// the later one.
package store

import (
	"slices"
	"sync"

	"github.com/jaekwang-park/taskboard/internal/model"
)

// Listener receives a copy of the todos after every change.
type Listener func(todos []model.Todo)

type TodoStore struct {
	mu          sync.Mutex
	todos       []model.Todo
	previous    []model.Todo
	hasPrevious bool

	listeners map[int]Listener
	nextSub   int
}

func New() *TodoStore {
	return &TodoStore{
		todos:     []model.Todo{},
		listeners: make(map[int]Listener),
	}
}

// Todos returns a copy of the current list in display order.
func (s *TodoStore) Todos() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.todos)
}

func (s *TodoStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.todos)
}

func (s *TodoStore) HasPreviousState() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasPrevious
}

// SetInitialTodos replaces the list wholesale. The previous-state slot is
// left alone.
func (s *TodoStore) SetInitialTodos(todos []model.Todo) {
	s.apply(false, func([]model.Todo) []model.Todo {
		return slices.Clone(todos)
	})
}

// AddTodo prepends todo.
func (s *TodoStore) AddTodo(todo model.Todo) {
	s.apply(true, func(cur []model.Todo) []model.Todo {
		return append([]model.Todo{todo}, cur...)
	})
}

// UpdateTodo replaces the entry with todo.ID in place. Callers pass the
// complete merged todo; no field-level merge happens here.
func (s *TodoStore) UpdateTodo(todo model.Todo) {
	s.apply(true, func(cur []model.Todo) []model.Todo {
		for i := range cur {
			if cur[i].ID == todo.ID {
				cur[i] = todo
			}
		}
		return cur
	})
}

// DeleteTodo removes the entry with id, keeping the order of the rest.
func (s *TodoStore) DeleteTodo(id string) {
	s.apply(true, func(cur []model.Todo) []model.Todo {
		return slices.DeleteFunc(cur, func(t model.Todo) bool { return t.ID == id })
	})
}

// RollbackToPreviousState restores the snapshot taken by the last mutation
// and clears it. It reports false when there is nothing to restore.
func (s *TodoStore) RollbackToPreviousState() bool {
	s.mu.Lock()
	if !s.hasPrevious {
		s.mu.Unlock()
		return false
	}
	s.todos = s.previous
	s.previous = nil
	s.hasPrevious = false
	snapshot, listeners := s.notifyLocked()
	s.mu.Unlock()

	notify(listeners, snapshot)
	return true
}

// Reconcile applies a corrective change without touching the
// previous-state slot. fn receives a private copy and returns the new list.
func (s *TodoStore) Reconcile(fn func([]model.Todo) []model.Todo) {
	s.apply(false, fn)
}

// Subscribe registers l and returns a function that removes it.
func (s *TodoStore) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *TodoStore) apply(snapshot bool, fn func([]model.Todo) []model.Todo) {
	s.mu.Lock()
	if snapshot {
		s.previous = slices.Clone(s.todos)
		s.hasPrevious = true
	}
	next := fn(slices.Clone(s.todos))
	if next == nil {
		next = []model.Todo{}
	}
	s.todos = next
	todos, listeners := s.notifyLocked()
	s.mu.Unlock()

	notify(listeners, todos)
}

// notifyLocked collects what listeners need so they can run without the lock.
func (s *TodoStore) notifyLocked() ([]model.Todo, []Listener) {
	if len(s.listeners) == 0 {
		return nil, nil
	}
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	return slices.Clone(s.todos), listeners
}

func notify(listeners []Listener, todos []model.Todo) {
	for _, l := range listeners {
		l(slices.Clone(todos))
	}
}
