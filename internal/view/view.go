// Package view derives what the task table shows from the store contents:
// filtering, client-side pages and the pagination bar.
package view

import (
	"slices"
	"strings"

	"github.com/jaekwang-park/taskboard/internal/model"
)

const (
	DefaultPageSize  = 10
	MaxPageSize      = 50
	InfinitePageSize = 10
)

type Status string

const (
	StatusAll       Status = "all"
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
)

// Next cycles all -> completed -> pending -> all.
func (s Status) Next() Status {
	switch s {
	case StatusAll:
		return StatusCompleted
	case StatusCompleted:
		return StatusPending
	default:
		return StatusAll
	}
}

func (s Status) Match(t model.Todo) bool {
	switch s {
	case StatusCompleted:
		return t.Completed
	case StatusPending:
		return !t.Completed
	default:
		return true
	}
}

// Filter selects todos for the table. Empty Assignees means every assignee.
type Filter struct {
	Status    Status
	Assignees []string
	Query     string
}

func (f Filter) Match(t model.Todo) bool {
	if !f.Status.Match(t) {
		return false
	}
	if len(f.Assignees) > 0 && !slices.Contains(f.Assignees, t.UserID) {
		return false
	}
	q := strings.TrimSpace(f.Query)
	return q == "" || strings.Contains(strings.ToLower(t.Title), strings.ToLower(q))
}

// Apply returns the matching todos in their original order.
func (f Filter) Apply(todos []model.Todo) []model.Todo {
	out := make([]model.Todo, 0, len(todos))
	for _, t := range todos {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// ClampPageSize bounds n to [1, MaxPageSize], using DefaultPageSize for n <= 0.
func ClampPageSize(n int) int {
	if n <= 0 {
		return DefaultPageSize
	}
	return min(n, MaxPageSize)
}

// TotalPages is at least 1 so an empty table still has a page to show.
func TotalPages(n, size int) int {
	size = ClampPageSize(size)
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Page returns the 1-based page of todos. Out-of-range pages are clamped.
func Page(todos []model.Todo, page, size int) []model.Todo {
	size = ClampPageSize(size)
	page = min(max(page, 1), TotalPages(len(todos), size))
	start := (page - 1) * size
	end := min(start+size, len(todos))
	if start >= end {
		return []model.Todo{}
	}
	return todos[start:end]
}

// Ellipsis stands for a gap in PaginationItems.
const Ellipsis = 0

// PaginationItems lists the page numbers for a pagination bar. Up to seven
// pages are listed in full; beyond that gaps are marked with Ellipsis.
func PaginationItems(current, total int) []int {
	if total <= 0 {
		return nil
	}
	current = min(max(current, 1), total)

	if total <= 7 {
		items := make([]int, total)
		for i := range items {
			items[i] = i + 1
		}
		return items
	}

	switch {
	case current <= 4:
		return []int{1, 2, 3, 4, 5, Ellipsis, total}
	case current >= total-3:
		return []int{1, Ellipsis, total - 4, total - 3, total - 2, total - 1, total}
	default:
		return []int{1, Ellipsis, current - 1, current, current + 1, Ellipsis, total}
	}
}

// UserName resolves a user id to a display name.
func UserName(users []model.User, id string) string {
	for _, u := range users {
		if u.ID == id {
			return u.Name
		}
	}
	return "Unknown"
}
