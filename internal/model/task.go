package model

import (
	"time"
)

// Task is the unit of work. Created with the tenant's initial status;
// the status reference is mutated only through the transition executor,
// which also stamps StartedAt/FinishedAt and appends the audit trail.
type Task struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	Title         string     `json:"title" gorm:"type:varchar(255);not null"`
	TenantID      uint       `json:"tenant_id" gorm:"index;not null"`
	Solicitor     string     `json:"solicitor" gorm:"type:varchar(150)"`
	ResponsibleID uint       `json:"responsible_id" gorm:"index;not null"`
	SectorID      uint       `json:"sector_id" gorm:"index;not null"`
	CriticalityID uint       `json:"criticality_id" gorm:"not null"`
	EntryMethodID uint       `json:"entry_method_id"`
	TaskTypeID    uint       `json:"task_type_id"`
	TagID         *uint      `json:"tag_id,omitempty"`
	Deadline      time.Time  `json:"deadline" gorm:"type:date;not null"`
	StatusID      uint       `json:"status_id" gorm:"index;not null"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	Observations  string     `json:"observations" gorm:"type:text"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
