package model

// TaskCounter mirrors the `_count` object of the stats payload.
type TaskCounter struct {
	Tasks int64 `json:"tasks"`
}

type CategoryTasks struct {
	Name  string      `json:"name"`
	Color string      `json:"color"`
	Count TaskCounter `json:"_count"`
}

// Stats is the dashboard aggregate served by GET /api/stats.
type Stats struct {
	TotalTasks      int64           `json:"totalTasks"`
	CompletedTasks  int64           `json:"completedTasks"`
	TotalCategories int64           `json:"totalCategories"`
	TasksByCategory []CategoryTasks `json:"tasksByCategory"`
	RecentTasks     []Task          `json:"recentTasks"`
}

// CompletionRate is the share of completed tasks as a rounded percentage.
// Zero when there are no tasks.
func (s Stats) CompletionRate() int64 {
	if s.TotalTasks <= 0 {
		return 0
	}
	return (s.CompletedTasks*100 + s.TotalTasks/2) / s.TotalTasks
}

// RecentTasksLimit is how many tasks the stats endpoint returns, newest first.
const RecentTasksLimit = 5
