package model

import (
	"time"
)

// Status is one step of a tenant's task workflow. Order is 1-based and
// defines the status role (1 = open, 2 = in execution, 3 = paused); any
// status with IsFinal set is terminal regardless of its order.
type Status struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TenantID  uint      `json:"tenant_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Order     int       `json:"order" gorm:"column:sort_order;not null"`
	IsFinal   bool      `json:"is_final" gorm:"default:false"`
	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
