package models

import "time"

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Completed   bool      `json:"completed" gorm:"not null;default:false"`
	OwnerID     string    `json:"owner" gorm:"type:varchar(36);index;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
