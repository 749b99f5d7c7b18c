package model

import "time"

// Colors a category may be rendered with.
var CategoryColors = []string{
	"bg-blue-100 text-blue-800",
	"bg-green-100 text-green-800",
	"bg-purple-100 text-purple-800",
	"bg-red-100 text-red-800",
	"bg-yellow-100 text-yellow-800",
}

// Category groups tasks by area (work, personal, shopping, etc.).
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Color     string    `gorm:"not null" json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// TaskCount is computed on read and is absent from create/update responses.
	TaskCount *int64 `gorm:"-" json:"taskCount,omitempty"`
}

// CategoryInput is the body of POST /api/categories.
type CategoryInput struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color" binding:"required"`
}

// CategoryPatch is the body of PUT /api/categories/:id. Nil fields are left alone.
type CategoryPatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

func ValidColor(color string) bool {
	for _, c := range CategoryColors {
		if c == color {
			return true
		}
	}
	return false
}

// Count returns TaskCount or zero.
func (c Category) Count() int64 {
	if c.TaskCount == nil {
		return 0
	}
	return *c.TaskCount
}
