package repository

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jaekwang-park/taskboard/internal/model"
)

// Fixtures is the data set a mock API serves.
type Fixtures struct {
	Todos []model.Todo `json:"todos"`
	Users []model.User `json:"users"`
}

// FixtureEpoch stamps fixtures that carry no timestamps of their own.
var FixtureEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

var defaultNames = []string{
	"Leanne Graham", "Ervin Howell", "Clementine Bauch", "Patricia Lebsack",
	"Chelsey Dietrich", "Dennis Schulist", "Kurtis Weissnat", "Nicholas Runolfsdottir",
	"Glenna Reichert", "Clementina DuBuque",
}

var defaultTitles = []string{
	"review pull request", "update dependencies", "write release notes",
	"fix flaky test", "plan sprint", "triage bug reports", "refactor config loader",
	"document api", "benchmark cache", "rotate credentials",
}

// DefaultFixtures generates ten users owning twenty todos each, the same
// shape as the public JSONPlaceholder data set.
func DefaultFixtures() Fixtures {
	f := Fixtures{
		Users: make([]model.User, 0, len(defaultNames)),
		Todos: make([]model.Todo, 0, len(defaultNames)*20),
	}
	for i, name := range defaultNames {
		id := strconv.Itoa(i + 1)
		f.Users = append(f.Users, model.User{
			ID:       id,
			Name:     name,
			Username: fmt.Sprintf("user%d", i+1),
			Email:    fmt.Sprintf("user%d@example.com", i+1),
			Phone:    fmt.Sprintf("555-01%02d", i+1),
			Company:  model.Company{Name: "Example Co"},
		})
	}
	for i := range cap(f.Todos) {
		n := i + 1
		stamp := FixtureEpoch.Add(time.Duration(i) * time.Hour)
		f.Todos = append(f.Todos, model.Todo{
			ID:        strconv.Itoa(n),
			Title:     fmt.Sprintf("%s #%d", defaultTitles[i%len(defaultTitles)], n),
			Completed: n%3 == 0,
			UserID:    strconv.Itoa(i/20 + 1),
			CreatedAt: stamp,
			UpdatedAt: stamp,
		})
	}
	return f
}

// stamp fills missing timestamps.
func (f *Fixtures) stamp() {
	for i := range f.Todos {
		t := &f.Todos[i]
		if t.CreatedAt.IsZero() {
			t.CreatedAt = FixtureEpoch
		}
		if t.UpdatedAt.IsZero() {
			t.UpdatedAt = t.CreatedAt
		}
	}
}
