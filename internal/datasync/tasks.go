package datasync

import (
	"context"
	"log/slog"

	"taskflow/internal/model"
)

type TaskResource = Resource[model.Task, model.TaskInput, model.TaskPatch]

// Tasks is the task collection plus the completion toggle.
type Tasks struct {
	*Collection[model.Task, model.TaskInput, model.TaskPatch]
}

func NewTasks(res TaskResource, log *slog.Logger) *Tasks {
	return &Tasks{New(res, Options[model.Task]{
		Singular: "task",
		Plural:   "tasks",
		ID:       func(t model.Task) uint { return t.ID },
		Merge:    mergeTask,
		Logger:   log,
	})}
}

// ToggleComplete flips the completion flag of task on the server. The cached
// copy is used as the current state, so a stale task toggles from that value.
func (t *Tasks) ToggleComplete(ctx context.Context, task model.Task) (model.Task, error) {
	completed := !task.Completed
	return t.Update(ctx, task.ID, model.TaskPatch{Completed: &completed})
}

// mergeTask keeps the cached category when the response carries none.
func mergeTask(prev, next model.Task) model.Task {
	if next.Category == nil && next.CategoryID == prev.CategoryID {
		next.Category = prev.Category
	}
	return next
}
