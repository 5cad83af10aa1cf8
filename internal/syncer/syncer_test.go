package syncer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/store"
	"github.com/jaekwang-park/taskboard/internal/syncer"
)

// fakeActions implements syncer.Actions for testing
type fakeActions struct {
	getTodosFn func(ctx context.Context, page, limit int) model.Result[[]model.Todo]
	getTodoFn  func(ctx context.Context, id string) model.Result[model.Todo]
	getUsersFn func(ctx context.Context) model.Result[[]model.User]
	getUserFn  func(ctx context.Context, id string) model.Result[model.User]
	createFn   func(ctx context.Context, input model.TodoInput) model.Result[model.Todo]
	updateFn   func(ctx context.Context, id string, patch model.TodoPatch) model.Result[model.Todo]
	deleteFn   func(ctx context.Context, id string) model.Result[string]
}

func (f *fakeActions) GetTodos(ctx context.Context, page, limit int) model.Result[[]model.Todo] {
	return f.getTodosFn(ctx, page, limit)
}
func (f *fakeActions) GetTodoByID(ctx context.Context, id string) model.Result[model.Todo] {
	return f.getTodoFn(ctx, id)
}
func (f *fakeActions) GetUserByID(ctx context.Context, id string) model.Result[model.User] {
	return f.getUserFn(ctx, id)
}
func (f *fakeActions) GetUsers(ctx context.Context) model.Result[[]model.User] {
	if f.getUsersFn == nil {
		return model.OK([]model.User{})
	}
	return f.getUsersFn(ctx)
}
func (f *fakeActions) CreateTodo(ctx context.Context, input model.TodoInput) model.Result[model.Todo] {
	return f.createFn(ctx, input)
}
func (f *fakeActions) UpdateTodo(ctx context.Context, id string, patch model.TodoPatch) model.Result[model.Todo] {
	return f.updateFn(ctx, id, patch)
}
func (f *fakeActions) DeleteTodo(ctx context.Context, id string) model.Result[string] {
	return f.deleteFn(ctx, id)
}

// recorder implements syncer.Notifier and keeps every call
type recorder struct {
	mu       sync.Mutex
	closed   []syncer.Dialog
	reopened []model.TodoInput
	errors   []string
}

func (r *recorder) CloseDialog(d syncer.Dialog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, d)
}
func (r *recorder) ReopenCreate(input model.TodoInput) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reopened = append(r.reopened, input)
}
func (r *recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, msg)
}

var clock = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return clock }

func todo(id, title string) model.Todo {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return model.Todo{ID: id, Title: title, UserID: "1", CreatedAt: created, UpdatedAt: created}
}

func ids(todos []model.Todo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.ID
	}
	return out
}

func equalIDs(t *testing.T, got []model.Todo, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("ids = %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("ids = %v, want %v", g, want)
		}
	}
}

func newSyncer(acts *fakeActions, initial []model.Todo, opts ...syncer.Option) (*syncer.Syncer, *recorder) {
	st := store.New()
	st.SetInitialTodos(initial)
	rec := &recorder{}
	opts = append([]syncer.Option{syncer.WithClock(fixedClock), syncer.WithNotifier(rec)}, opts...)
	return syncer.New(st, acts, opts...), rec
}

func TestCreate_ReplacesPlaceholder(t *testing.T) {
	var sawPlaceholder bool
	var s *syncer.Syncer
	acts := &fakeActions{
		createFn: func(_ context.Context, input model.TodoInput) model.Result[model.Todo] {
			head := s.Store().Todos()[0]
			sawPlaceholder = syncer.IsPlaceholder(head.ID) && head.Title == input.Title
			return model.OK(model.Todo{ID: "1000", Title: input.Title, UserID: input.UserID, CreatedAt: clock, UpdatedAt: clock})
		},
	}
	s, rec := newSyncer(acts, []model.Todo{todo("1", "existing")})

	got, err := s.Create(context.Background(), model.TodoInput{Title: "new", UserID: "2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "1000" {
		t.Errorf("expected id 1000, got %s", got.ID)
	}
	if !sawPlaceholder {
		t.Error("expected placeholder at head while the action ran")
	}
	equalIDs(t, s.Store().Todos(), "1000", "1")
	if len(rec.closed) != 1 || rec.closed[0] != syncer.DialogCreate {
		t.Errorf("expected create dialog closed once, got %v", rec.closed)
	}
	if s.Pending() != 0 {
		t.Errorf("expected no pending operations, got %d", s.Pending())
	}
}

func TestCreate_FailureRollsBackAndReopens(t *testing.T) {
	for _, strategy := range []syncer.RollbackStrategy{syncer.RollbackSnapshot, syncer.RollbackInverse} {
		acts := &fakeActions{
			createFn: func(context.Context, model.TodoInput) model.Result[model.Todo] {
				return model.Fail[model.Todo]("Failed to create todo")
			},
		}
		s, rec := newSyncer(acts, []model.Todo{todo("1", "existing")}, syncer.WithRollback(strategy))

		input := model.TodoInput{Title: "new", UserID: "2"}
		_, err := s.Create(context.Background(), input)
		if err == nil {
			t.Fatal("expected error")
		}
		equalIDs(t, s.Store().Todos(), "1")
		if len(rec.reopened) != 1 || rec.reopened[0] != input {
			t.Errorf("expected create dialog reopened with input, got %v", rec.reopened)
		}
		if len(rec.errors) != 1 || rec.errors[0] != "Failed to create todo" {
			t.Errorf("expected one error notification, got %v", rec.errors)
		}
	}
}

func TestUpdate_KeepsCreatedAtAndStampsUpdatedAt(t *testing.T) {
	var patch model.TodoPatch
	acts := &fakeActions{
		updateFn: func(_ context.Context, id string, p model.TodoPatch) model.Result[model.Todo] {
			patch = p
			return model.OK(p.Apply(model.Todo{ID: id, UpdatedAt: clock}))
		},
	}
	orig := todo("1", "old")
	s, _ := newSyncer(acts, []model.Todo{orig, todo("2", "other")})

	edited := orig
	edited.Title = "new"
	edited.CreatedAt = time.Time{}
	got, err := s.Update(context.Background(), edited)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if patch.Title == nil || *patch.Title != "new" {
		t.Errorf("expected title in patch, got %+v", patch)
	}
	if !got.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("expected createdAt %v, got %v", orig.CreatedAt, got.CreatedAt)
	}
	todos := s.Store().Todos()
	equalIDs(t, todos, "1", "2")
	if todos[0].Title != "new" || !todos[0].UpdatedAt.Equal(clock) {
		t.Errorf("unexpected stored todo: %+v", todos[0])
	}
}

func TestToggle(t *testing.T) {
	acts := &fakeActions{
		updateFn: func(_ context.Context, id string, p model.TodoPatch) model.Result[model.Todo] {
			return model.OK(p.Apply(model.Todo{ID: id}))
		},
	}
	s, _ := newSyncer(acts, []model.Todo{todo("1", "a")})

	got, err := s.Toggle(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Completed || !s.Store().Todos()[0].Completed {
		t.Error("expected todo to be completed")
	}

	if _, err := s.Toggle(context.Background(), "missing"); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestDelete_FailureRestoresPosition(t *testing.T) {
	acts := &fakeActions{
		deleteFn: func(context.Context, string) model.Result[string] {
			return model.Fail[string]("Failed to delete todo")
		},
	}
	s, rec := newSyncer(acts, []model.Todo{todo("1", "a"), todo("2", "b"), todo("3", "c")}, syncer.WithRollback(syncer.RollbackInverse))

	if err := s.Delete(context.Background(), "2"); err == nil {
		t.Fatal("expected error")
	}
	equalIDs(t, s.Store().Todos(), "1", "2", "3")
	if len(rec.closed) != 1 || rec.closed[0] != syncer.DialogDelete {
		t.Errorf("expected delete dialog closed, got %v", rec.closed)
	}
}

// overlapping runs a delete of "2" while the update of "1" is in flight,
// then fails the update.
func overlapping(t *testing.T, strategy syncer.RollbackStrategy) []model.Todo {
	t.Helper()
	var s *syncer.Syncer
	acts := &fakeActions{
		deleteFn: func(_ context.Context, id string) model.Result[string] {
			return model.OK(id)
		},
	}
	acts.updateFn = func(ctx context.Context, id string, p model.TodoPatch) model.Result[model.Todo] {
		if err := s.Delete(ctx, "2"); err != nil {
			t.Fatalf("nested delete: %v", err)
		}
		return model.Fail[model.Todo]("Failed to update todo")
	}
	s, _ = newSyncer(acts, []model.Todo{todo("1", "a"), todo("2", "b")}, syncer.WithRollback(strategy))

	edited := todo("1", "edited")
	if _, err := s.Update(context.Background(), edited); err == nil {
		t.Fatal("expected update error")
	}
	return s.Store().Todos()
}

func TestRollbackSnapshot_OverlapRevertsNewerMutation(t *testing.T) {
	got := overlapping(t, syncer.RollbackSnapshot)

	// The single slot held the state before the delete, so the delete is
	// undone and the failed edit survives.
	equalIDs(t, got, "1", "2")
	if got[0].Title != "edited" {
		t.Errorf("expected edited title to survive, got %q", got[0].Title)
	}
}

func TestRollbackInverse_OverlapRevertsOnlyFailedMutation(t *testing.T) {
	got := overlapping(t, syncer.RollbackInverse)

	equalIDs(t, got, "1")
	if got[0].Title != "a" {
		t.Errorf("expected original title, got %q", got[0].Title)
	}
}

func TestLoad_DoesNotClobberNonEmptyStore(t *testing.T) {
	acts := &fakeActions{
		getTodosFn: func(context.Context, int, int) model.Result[[]model.Todo] {
			return model.OK([]model.Todo{todo("9", "remote")})
		},
		getUsersFn: func(context.Context) model.Result[[]model.User] {
			return model.OK([]model.User{{ID: "1", Name: "Leanne"}})
		},
	}
	s, _ := newSyncer(acts, []model.Todo{todo("1", "local")})

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	equalIDs(t, s.Store().Todos(), "1")
	if len(s.Users()) != 1 {
		t.Errorf("expected users to load, got %v", s.Users())
	}
}

func TestLoad_PopulatesEmptyStoreAndReportsErrors(t *testing.T) {
	acts := &fakeActions{
		getTodosFn: func(_ context.Context, page, limit int) model.Result[[]model.Todo] {
			if page != 0 || limit != 0 {
				t.Errorf("expected full fetch, got page=%d limit=%d", page, limit)
			}
			return model.OK([]model.Todo{todo("1", "a"), todo("2", "b")})
		},
		getUsersFn: func(context.Context) model.Result[[]model.User] {
			return model.Fail[[]model.User]("Failed to fetch users")
		},
	}
	s, rec := newSyncer(acts, nil)

	err := s.Load(context.Background())
	if err == nil {
		t.Fatal("expected error for failed users fetch")
	}
	equalIDs(t, s.Store().Todos(), "1", "2")
	if len(rec.errors) != 1 || rec.errors[0] != "Failed to fetch users" {
		t.Errorf("unexpected notifications: %v", rec.errors)
	}
}

func TestRefresh_OverwritesOnlyOnDifference(t *testing.T) {
	remote := []model.Todo{todo("1", "a")}
	acts := &fakeActions{
		getTodosFn: func(context.Context, int, int) model.Result[[]model.Todo] {
			return model.OK(remote)
		},
	}
	s, _ := newSyncer(acts, []model.Todo{todo("1", "a")})

	var notified int
	s.Store().Subscribe(func([]model.Todo) { notified++ })

	changed, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed || notified != 0 {
		t.Errorf("expected no change, got changed=%v notified=%d", changed, notified)
	}

	remote = []model.Todo{todo("1", "a"), todo("2", "b")}
	changed, err = s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed || notified != 1 {
		t.Errorf("expected one change, got changed=%v notified=%d", changed, notified)
	}
	equalIDs(t, s.Store().Todos(), "1", "2")
}

func TestRefresh_Error(t *testing.T) {
	acts := &fakeActions{
		getTodosFn: func(context.Context, int, int) model.Result[[]model.Todo] {
			return model.Fail[[]model.Todo]("Failed to fetch todos")
		},
	}
	s, _ := newSyncer(acts, []model.Todo{todo("1", "a")})

	if _, err := s.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	equalIDs(t, s.Store().Todos(), "1")
}

func pagedActions(total int, calls *[][2]int) *fakeActions {
	all := make([]model.Todo, total)
	for i := range all {
		all[i] = todo(string(rune('a'+i)), "t")
	}
	return &fakeActions{
		getTodosFn: func(_ context.Context, page, limit int) model.Result[[]model.Todo] {
			*calls = append(*calls, [2]int{page, limit})
			start := min((page-1)*limit, total)
			end := min(start+limit, total)
			return model.OK(all[start:end])
		},
	}
}

func TestInfinite_LoadsPagesUntilShort(t *testing.T) {
	var calls [][2]int
	s, _ := newSyncer(pagedActions(5, &calls), nil, syncer.WithMode(syncer.ModeInfinite), syncer.WithPageSize(2))
	ctx := context.Background()

	if err := s.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	equalIDs(t, s.Store().Todos(), "a", "b")
	if !s.HasNextPage() {
		t.Fatal("expected next page after full page")
	}

	if err := s.LoadNextPage(ctx); err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if err := s.LoadNextPage(ctx); err != nil {
		t.Fatalf("page 3: %v", err)
	}
	equalIDs(t, s.Store().Todos(), "a", "b", "c", "d", "e")
	if s.HasNextPage() {
		t.Error("expected no next page after short page")
	}

	// Refresh covers every loaded page in one request.
	calls = nil
	if _, err := s.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(calls) != 1 || calls[0] != [2]int{1, 6} {
		t.Errorf("expected refresh of page 1 limit 6, got %v", calls)
	}
}

func TestLoadNextPage_SkipsDuplicates(t *testing.T) {
	acts := &fakeActions{
		getTodosFn: func(_ context.Context, page, _ int) model.Result[[]model.Todo] {
			if page == 1 {
				return model.OK([]model.Todo{todo("1", "a"), todo("2", "b")})
			}
			return model.OK([]model.Todo{todo("2", "b"), todo("3", "c")})
		},
	}
	s, _ := newSyncer(acts, nil, syncer.WithMode(syncer.ModeInfinite), syncer.WithPageSize(2))
	ctx := context.Background()

	if err := s.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := s.LoadNextPage(ctx); err != nil {
		t.Fatalf("next page: %v", err)
	}
	equalIDs(t, s.Store().Todos(), "1", "2", "3")
}

func TestSetMode_Reloads(t *testing.T) {
	var calls [][2]int
	s, _ := newSyncer(pagedActions(5, &calls), []model.Todo{todo("z", "stale")}, syncer.WithPageSize(2))

	if err := s.SetMode(context.Background(), syncer.ModeInfinite); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Mode() != syncer.ModeInfinite {
		t.Error("expected infinite mode")
	}
	equalIDs(t, s.Store().Todos(), "a", "b")
}

func TestRunRefresh_SkipsWhileHidden(t *testing.T) {
	var mu sync.Mutex
	var fetches int
	acts := &fakeActions{
		getTodosFn: func(context.Context, int, int) model.Result[[]model.Todo] {
			mu.Lock()
			fetches++
			mu.Unlock()
			return model.OK([]model.Todo{})
		},
	}
	s, _ := newSyncer(acts, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	s.RunRefresh(ctx, 5*time.Millisecond, syncer.VisibilityFunc(func() bool { return false }))

	mu.Lock()
	defer mu.Unlock()
	if fetches != 0 {
		t.Errorf("expected no fetches while hidden, got %d", fetches)
	}
}

func TestRunRefresh_PollsWhileVisible(t *testing.T) {
	done := make(chan struct{})
	var once sync.Once
	acts := &fakeActions{
		getTodosFn: func(context.Context, int, int) model.Result[[]model.Todo] {
			once.Do(func() { close(done) })
			return model.OK([]model.Todo{})
		},
	}
	s, _ := newSyncer(acts, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.RunRefresh(ctx, time.Millisecond, syncer.AlwaysVisible)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected a background refresh")
	}
}

func TestSetNotifier_Nil(t *testing.T) {
	acts := &fakeActions{
		deleteFn: func(context.Context, string) model.Result[string] {
			return model.Fail[string]("boom")
		},
	}
	s, _ := newSyncer(acts, []model.Todo{todo("1", "a")})
	s.SetNotifier(nil)

	if err := s.Delete(context.Background(), "1"); err == nil {
		t.Fatal("expected error")
	}
	equalIDs(t, s.Store().Todos(), "1")
}

func TestRefresh_KeepsInFlightCreate(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	acts := &fakeActions{
		getTodosFn: func(context.Context, int, int) model.Result[[]model.Todo] {
			return model.OK([]model.Todo{todo("1", "a")})
		},
		createFn: func(_ context.Context, input model.TodoInput) model.Result[model.Todo] {
			close(entered)
			<-release
			return model.OK(model.Todo{ID: "1000", Title: input.Title, UserID: input.UserID, CreatedAt: clock, UpdatedAt: clock})
		},
	}
	s, _ := newSyncer(acts, []model.Todo{todo("1", "a")})

	done := make(chan error, 1)
	go func() {
		_, err := s.Create(context.Background(), model.TodoInput{Title: "new", UserID: "1"})
		done <- err
	}()
	<-entered

	changed, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Error("expected refresh to leave the store alone while a create is pending")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	equalIDs(t, s.Store().Todos(), "1000", "1")
}

func TestRefresh_SkipsWhenMutationStartsDuringFetch(t *testing.T) {
	var s *syncer.Syncer
	acts := &fakeActions{
		getTodosFn: func(ctx context.Context, _, _ int) model.Result[[]model.Todo] {
			if _, err := s.Toggle(ctx, "1"); err != nil {
				t.Errorf("unexpected toggle error: %v", err)
			}
			return model.OK([]model.Todo{todo("1", "a")})
		},
		updateFn: func(_ context.Context, id string, p model.TodoPatch) model.Result[model.Todo] {
			return model.OK(p.Apply(model.Todo{ID: id}))
		},
	}
	s, _ = newSyncer(acts, []model.Todo{todo("1", "a")})

	changed, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Error("expected refresh to be skipped")
	}
	if got := s.Store().Todos(); len(got) != 1 || !got[0].Completed {
		t.Errorf("expected toggled todo to survive, got %+v", got)
	}
}
