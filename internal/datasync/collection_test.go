package datasync

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskflow/internal/logger"
	"taskflow/internal/model"
)

type fakeTasks struct {
	ListFunc   func(ctx context.Context) ([]model.Task, error)
	CreateFunc func(ctx context.Context, in model.TaskInput) (model.Task, error)
	UpdateFunc func(ctx context.Context, id uint, p model.TaskPatch) (model.Task, error)
	DeleteFunc func(ctx context.Context, id uint) error
}

func (f *fakeTasks) List(ctx context.Context) ([]model.Task, error) { return f.ListFunc(ctx) }
func (f *fakeTasks) Create(ctx context.Context, in model.TaskInput) (model.Task, error) {
	return f.CreateFunc(ctx, in)
}
func (f *fakeTasks) Update(ctx context.Context, id uint, p model.TaskPatch) (model.Task, error) {
	return f.UpdateFunc(ctx, id, p)
}
func (f *fakeTasks) Delete(ctx context.Context, id uint) error { return f.DeleteFunc(ctx, id) }

type fakeCategories struct {
	ListFunc   func(ctx context.Context) ([]model.Category, error)
	CreateFunc func(ctx context.Context, in model.CategoryInput) (model.Category, error)
	UpdateFunc func(ctx context.Context, id uint, p model.CategoryPatch) (model.Category, error)
	DeleteFunc func(ctx context.Context, id uint) error
}

func (f *fakeCategories) List(ctx context.Context) ([]model.Category, error) { return f.ListFunc(ctx) }
func (f *fakeCategories) Create(ctx context.Context, in model.CategoryInput) (model.Category, error) {
	return f.CreateFunc(ctx, in)
}
func (f *fakeCategories) Update(ctx context.Context, id uint, p model.CategoryPatch) (model.Category, error) {
	return f.UpdateFunc(ctx, id, p)
}
func (f *fakeCategories) Delete(ctx context.Context, id uint) error { return f.DeleteFunc(ctx, id) }

var errBoom = errors.New("boom")

func taskList(ids ...uint) []model.Task {
	out := make([]model.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Task{ID: id, Title: "task", CategoryID: 1})
	}
	return out
}

func ids(tasks []model.Task) []uint {
	out := make([]uint, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func equalIDs(a []uint, b ...uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func int64p(v int64) *int64 { return &v }

func TestRefreshLoadsItems(t *testing.T) {
	res := &fakeTasks{ListFunc: func(context.Context) ([]model.Task, error) { return taskList(1, 2), nil }}
	c := NewTasks(res, logger.Discard())

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := ids(c.Items()); !equalIDs(got, 1, 2) {
		t.Fatalf("items = %v", got)
	}
	if c.IsLoading() {
		t.Fatal("still loading after refresh")
	}
	if c.Err() != "" {
		t.Fatalf("err = %q", c.Err())
	}
}

func TestRefreshIsIdempotent(t *testing.T) {
	calls := 0
	res := &fakeTasks{ListFunc: func(context.Context) ([]model.Task, error) {
		calls++
		return taskList(3, 1, 2), nil
	}}
	c := NewTasks(res, logger.Discard())

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("first Refresh: %v", err)
	}
	first := ids(c.Items())
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("second Refresh: %v", err)
	}
	if second := ids(c.Items()); !equalIDs(second, first...) || !equalIDs(second, 3, 1, 2) {
		t.Fatalf("refresh changed items: %v then %v", first, second)
	}
	if calls != 2 {
		t.Fatalf("List called %d times", calls)
	}
}

func TestRefreshFailureKeepsItems(t *testing.T) {
	fail := false
	res := &fakeTasks{ListFunc: func(context.Context) ([]model.Task, error) {
		if fail {
			return nil, errBoom
		}
		return taskList(1), nil
	}}
	c := NewTasks(res, logger.Discard())
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	fail = true
	if err := c.Refresh(context.Background()); !errors.Is(err, errBoom) {
		t.Fatalf("Refresh err = %v", err)
	}
	if c.Err() != "Failed to load tasks" {
		t.Fatalf("err = %q", c.Err())
	}
	if got := ids(c.Items()); !equalIDs(got, 1) {
		t.Fatalf("items = %v", got)
	}
	if c.IsLoading() {
		t.Fatal("loading not cleared after failure")
	}

	fail = false
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if c.Err() != "" {
		t.Fatalf("successful refresh did not clear err: %q", c.Err())
	}
}

func TestIsLoadingDuringRefresh(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	res := &fakeTasks{ListFunc: func(context.Context) ([]model.Task, error) {
		close(started)
		<-release
		return taskList(1), nil
	}}
	c := NewTasks(res, logger.Discard())

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	<-started
	if !c.IsLoading() {
		t.Fatal("IsLoading = false while list is pending")
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if c.IsLoading() {
		t.Fatal("IsLoading = true after refresh settled")
	}
}

func TestMutationsDoNotSetLoading(t *testing.T) {
	var sawLoading bool
	var c *Tasks
	res := &fakeTasks{CreateFunc: func(context.Context, model.TaskInput) (model.Task, error) {
		sawLoading = c.IsLoading()
		return model.Task{ID: 1}, nil
	}}
	c = NewTasks(res, logger.Discard())
	if _, err := c.Create(context.Background(), model.TaskInput{Title: "x", CategoryID: 1}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sawLoading {
		t.Fatal("create flipped IsLoading")
	}
}

func TestCreateAppends(t *testing.T) {
	res := &fakeTasks{
		ListFunc: func(context.Context) ([]model.Task, error) { return taskList(2, 1), nil },
		CreateFunc: func(_ context.Context, in model.TaskInput) (model.Task, error) {
			return model.Task{ID: 3, Title: in.Title, CategoryID: in.CategoryID}, nil
		},
	}
	c := NewTasks(res, logger.Discard())
	_ = c.Refresh(context.Background())

	task, err := c.Create(context.Background(), model.TaskInput{Title: "Buy milk", CategoryID: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.ID != 3 || task.Title != "Buy milk" {
		t.Fatalf("created = %+v", task)
	}
	if got := ids(c.Items()); !equalIDs(got, 2, 1, 3) {
		t.Fatalf("items = %v", got)
	}
}

func TestCreateFailure(t *testing.T) {
	res := &fakeTasks{
		ListFunc:   func(context.Context) ([]model.Task, error) { return taskList(1), nil },
		CreateFunc: func(context.Context, model.TaskInput) (model.Task, error) { return model.Task{}, errBoom },
	}
	c := NewTasks(res, logger.Discard())
	_ = c.Refresh(context.Background())

	if _, err := c.Create(context.Background(), model.TaskInput{}); !errors.Is(err, errBoom) {
		t.Fatalf("Create err = %v", err)
	}
	if c.Err() != "Failed to create task" {
		t.Fatalf("err = %q", c.Err())
	}
	if got := ids(c.Items()); !equalIDs(got, 1) {
		t.Fatalf("items = %v", got)
	}
}

func TestUpdateReplacesInPlace(t *testing.T) {
	cat := &model.Category{ID: 1, Name: "Work"}
	res := &fakeTasks{
		ListFunc: func(context.Context) ([]model.Task, error) {
			list := taskList(1, 2, 3)
			list[1].Category = cat
			return list, nil
		},
		UpdateFunc: func(_ context.Context, id uint, p model.TaskPatch) (model.Task, error) {
			return model.Task{ID: id, Title: *p.Title, CategoryID: 1}, nil
		},
	}
	c := NewTasks(res, logger.Discard())
	_ = c.Refresh(context.Background())

	title := "renamed"
	if _, err := c.Update(context.Background(), 2, model.TaskPatch{Title: &title}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	items := c.Items()
	if got := ids(items); !equalIDs(got, 1, 2, 3) {
		t.Fatalf("order changed: %v", got)
	}
	if items[1].Title != "renamed" {
		t.Fatalf("title = %q", items[1].Title)
	}
	if items[1].Category == nil || items[1].Category.Name != "Work" {
		t.Fatalf("category lost on merge: %+v", items[1].Category)
	}
	if items[0].Title != "task" || items[2].Title != "task" {
		t.Fatal("other items touched")
	}
}

func TestUpdateFailureLeavesItems(t *testing.T) {
	res := &fakeTasks{
		ListFunc: func(context.Context) ([]model.Task, error) { return taskList(1), nil },
		UpdateFunc: func(context.Context, uint, model.TaskPatch) (model.Task, error) {
			return model.Task{}, errBoom
		},
	}
	c := NewTasks(res, logger.Discard())
	_ = c.Refresh(context.Background())

	title := "x"
	if _, err := c.Update(context.Background(), 1, model.TaskPatch{Title: &title}); err == nil {
		t.Fatal("expected error")
	}
	if c.Err() != "Failed to update task" {
		t.Fatalf("err = %q", c.Err())
	}
	if c.Items()[0].Title != "task" {
		t.Fatal("item changed after failed update")
	}
}

func TestToggleComplete(t *testing.T) {
	var sent *bool
	res := &fakeTasks{
		ListFunc: func(context.Context) ([]model.Task, error) { return taskList(1), nil },
		UpdateFunc: func(_ context.Context, id uint, p model.TaskPatch) (model.Task, error) {
			sent = p.Completed
			return model.Task{ID: id, Title: "task", CategoryID: 1, Completed: *p.Completed}, nil
		},
	}
	c := NewTasks(res, logger.Discard())
	_ = c.Refresh(context.Background())

	task, _ := c.Get(1)
	updated, err := c.ToggleComplete(context.Background(), task)
	if err != nil {
		t.Fatalf("ToggleComplete: %v", err)
	}
	if sent == nil || !*sent || !updated.Completed {
		t.Fatalf("sent = %v, updated = %+v", sent, updated)
	}
	if got, _ := c.Get(1); !got.Completed {
		t.Fatal("cache not updated")
	}

	// A stale copy toggles from its own value.
	if _, err := c.ToggleComplete(context.Background(), task); err != nil {
		t.Fatalf("ToggleComplete: %v", err)
	}
	if !*sent {
		t.Fatal("stale toggle should send completed=true again")
	}
}

func TestDeleteRemoves(t *testing.T) {
	deleteErr := error(nil)
	res := &fakeTasks{
		ListFunc:   func(context.Context) ([]model.Task, error) { return taskList(1, 2, 3), nil },
		DeleteFunc: func(context.Context, uint) error { return deleteErr },
	}
	c := NewTasks(res, logger.Discard())
	_ = c.Refresh(context.Background())

	if err := c.Delete(context.Background(), 2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := ids(c.Items()); !equalIDs(got, 1, 3) {
		t.Fatalf("items = %v", got)
	}

	deleteErr = errBoom
	if err := c.Delete(context.Background(), 3); err == nil {
		t.Fatal("expected error")
	}
	if c.Err() != "Failed to delete task" {
		t.Fatalf("err = %q", c.Err())
	}
	if got := ids(c.Items()); !equalIDs(got, 1, 3) {
		t.Fatalf("items = %v", got)
	}
}

func TestMountRefreshesOnce(t *testing.T) {
	calls := 0
	res := &fakeTasks{ListFunc: func(context.Context) ([]model.Task, error) {
		calls++
		return taskList(1), nil
	}}
	c := NewTasks(res, logger.Discard())
	for i := 0; i < 3; i++ {
		if err := c.Mount(context.Background()); err != nil {
			t.Fatalf("Mount: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("list called %d times", calls)
	}
}

func TestCloseDiscardsPendingRefresh(t *testing.T) {
	started := make(chan struct{})
	res := &fakeTasks{ListFunc: func(ctx context.Context) ([]model.Task, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	c := NewTasks(res, logger.Discard())

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	<-started
	c.Close()

	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Fatalf("Refresh err = %v, want ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("refresh not cancelled by Close")
	}
	if c.Err() != "" {
		t.Fatalf("closed collection recorded err %q", c.Err())
	}
	if _, err := c.Create(context.Background(), model.TaskInput{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Create after Close = %v", err)
	}
}

func TestOnChange(t *testing.T) {
	res := &fakeTasks{ListFunc: func(context.Context) ([]model.Task, error) { return taskList(1), nil }}
	c := NewTasks(res, logger.Discard())
	n := 0
	stop := c.OnChange(func() { n++ })
	_ = c.Refresh(context.Background())
	if n == 0 {
		t.Fatal("listener not called")
	}
	stop()
	before := n
	_ = c.Refresh(context.Background())
	if n != before {
		t.Fatal("listener called after unregister")
	}
}

func TestCategoriesKeepTaskCount(t *testing.T) {
	res := &fakeCategories{
		ListFunc: func(context.Context) ([]model.Category, error) {
			return []model.Category{{ID: 1, Name: "Work", TaskCount: int64p(4)}}, nil
		},
		CreateFunc: func(_ context.Context, in model.CategoryInput) (model.Category, error) {
			return model.Category{ID: 2, Name: in.Name, Color: in.Color}, nil
		},
		UpdateFunc: func(_ context.Context, id uint, p model.CategoryPatch) (model.Category, error) {
			return model.Category{ID: id, Name: *p.Name}, nil
		},
	}
	c := NewCategories(res, logger.Discard())
	_ = c.Refresh(context.Background())

	name := "Office"
	updated, err := c.Update(context.Background(), 1, model.CategoryPatch{Name: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Office" || updated.Count() != 4 {
		t.Fatalf("updated = %+v count %d", updated, updated.Count())
	}

	created, err := c.Create(context.Background(), model.CategoryInput{Name: "Home", Color: model.CategoryColors[0]})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.TaskCount == nil || *created.TaskCount != 0 {
		t.Fatalf("created taskCount = %v", created.TaskCount)
	}
	if len(c.Items()) != 2 {
		t.Fatalf("items = %+v", c.Items())
	}
}
