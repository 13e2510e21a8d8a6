package model

import (
	"time"
)

// TaskHistory is an immutable audit record of one status transition.
// Exactly one entry is written per successful transition; entries are
// never updated and are removed only as a cascade of task deletion.
// Readers interpret a task's entries newest-first by timestamp.
type TaskHistory struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	TaskID      uint      `json:"task_id" gorm:"index;not null"`
	OldStatusID uint      `json:"old_status_id" gorm:"not null"`
	NewStatusID uint      `json:"new_status_id" gorm:"not null"`
	ChangedByID uint      `json:"changed_by_id" gorm:"not null"`
	Timestamp   time.Time `json:"timestamp" gorm:"index;not null"`
}
