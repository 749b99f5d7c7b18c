package repository_test

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"taskflow/internal/model"
	"taskflow/internal/repository"
	"taskflow/internal/testutil"
)

func TestCategoryListIncludesTaskCounts(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	work := testutil.SeedCategory(t, db, "Work", testutil.Green)
	home := testutil.SeedCategory(t, db, "Home", testutil.Blue)
	testutil.SeedTask(t, db, "Write report", work.ID, false)
	testutil.SeedTask(t, db, "Review PR", work.ID, true)

	categories, err := repository.NewCategoryRepository(db).List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].ID != work.ID || categories[1].ID != home.ID {
		t.Fatalf("expected id order, got %d,%d", categories[0].ID, categories[1].ID)
	}
	if categories[0].Count() != 2 {
		t.Errorf("Work count = %d, want 2", categories[0].Count())
	}
	if categories[1].TaskCount == nil || *categories[1].TaskCount != 0 {
		t.Errorf("Home count should be a present zero, got %v", categories[1].TaskCount)
	}
}

func TestCategoryDuplicateNameIsTranslated(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewCategoryRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &model.Category{Name: "Work", Color: testutil.Green}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := repo.Create(ctx, &model.Category{Name: "Work", Color: testutil.Blue})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected ErrDuplicatedKey, got %v", err)
	}
}

func TestCategoryDeleteCascadesToTasks(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	work := testutil.SeedCategory(t, db, "Work", testutil.Green)
	testutil.SeedTask(t, db, "Write report", work.ID, false)

	deleted, err := repository.NewCategoryRepository(db).Delete(ctx, work.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete = %v, %v", deleted, err)
	}

	n, err := repository.NewTaskRepository(db).Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected tasks to be cascaded, %d left", n)
	}
}

func TestTaskCreatePreloadsCategory(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	work := testutil.SeedCategory(t, db, "Work", testutil.Green)

	task := model.Task{Title: "Buy milk", CategoryID: work.ID}
	if err := repository.NewTaskRepository(db).Create(ctx, &task); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("expected id to be assigned")
	}
	if task.Category == nil || task.Category.Name != "Work" {
		t.Fatalf("expected embedded category, got %+v", task.Category)
	}
	if task.Completed {
		t.Error("new task should not be completed")
	}
}

func TestTaskUpdateAndRecent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewTaskRepository(db)
	ctx := context.Background()
	work := testutil.SeedCategory(t, db, "Work", testutil.Green)

	var last model.Task
	for _, title := range []string{"a", "b", "c", "d", "e", "f"} {
		last = testutil.SeedTask(t, db, title, work.ID, false)
	}

	if err := repo.Update(ctx, &last, map[string]interface{}{"completed": true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !last.Completed || last.Category == nil {
		t.Fatalf("expected reloaded completed task, got %+v", last)
	}

	done, err := repo.CountCompleted(ctx)
	if err != nil || done != 1 {
		t.Fatalf("CountCompleted = %d, %v", done, err)
	}

	recent, err := repo.Recent(ctx, model.RecentTasksLimit)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 5 {
		t.Fatalf("expected 5 recent tasks, got %d", len(recent))
	}
	if recent[0].Title != "f" || recent[4].Title != "b" {
		t.Errorf("unexpected order: first=%s last=%s", recent[0].Title, recent[4].Title)
	}
}

func TestTaskDeleteMissing(t *testing.T) {
	db := testutil.NewDB(t)

	deleted, err := repository.NewTaskRepository(db).Delete(context.Background(), 42)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted {
		t.Fatal("expected nothing to be deleted")
	}
}

func TestSubscriberUpsertAndRemove(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewSubscriberRepository(db)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, 100, "Ann", "ann")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	second, err := repo.Upsert(ctx, 100, "Anna", "anna")
	if err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same subscriber, got %d and %d", first.ID, second.ID)
	}

	subs, err := repo.ListAll(ctx)
	if err != nil || len(subs) != 1 || subs[0].Username != "anna" {
		t.Fatalf("ListAll = %+v, %v", subs, err)
	}

	removed, err := repo.Remove(ctx, 100)
	if err != nil || !removed {
		t.Fatalf("Remove = %v, %v", removed, err)
	}
	removed, _ = repo.Remove(ctx, 100)
	if removed {
		t.Fatal("second remove should report nothing removed")
	}
}
