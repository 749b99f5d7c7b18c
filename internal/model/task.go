package model

import "time"

// Task represents a single to-do item. Category is loaded on read.
type Task struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `gorm:"not null;default:false" json:"completed"`
	CategoryID  uint      `gorm:"not null;index" json:"categoryId"`
	Category    *Category `gorm:"constraint:OnDelete:CASCADE" json:"category,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TaskInput is the body of POST /api/tasks.
type TaskInput struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description,omitempty"`
	CategoryID  uint    `json:"categoryId" binding:"required"`
}

// TaskPatch is the body of PUT /api/tasks/:id. Nil fields are left alone.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	CategoryID  *uint   `json:"categoryId,omitempty"`
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil && p.CategoryID == nil
}

// DescriptionText returns the description or an empty string.
func (t Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}
