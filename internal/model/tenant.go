package model

import (
	"time"
)

// Tenant represents a company: the isolation boundary that scopes every
// other record in the system
type Tenant struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"type:varchar(100);uniqueIndex"`
	PrimaryColor string    `json:"primary_color,omitempty" gorm:"type:varchar(20)"`
	Active       bool      `json:"active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
