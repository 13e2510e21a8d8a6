package model

import (
	"time"
)

// Catalog records are the pick-list entities tasks reference. Like users
// they carry the dual tenant form: a legacy scalar reference plus an
// optional multi-tenant set for catalogs shared across companies.

// Sector is an organizational area tasks are filed under
type Sector struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Active    bool      `json:"active" gorm:"default:true"`
	TenantID  uint      `json:"tenant_id" gorm:"index;not null"`
	TenantIDs IDArray   `json:"tenant_ids,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveTenants returns the tenant set the sector is visible to
func (s *Sector) EffectiveTenants() []uint {
	return effectiveTenants(s.TenantID, s.TenantIDs)
}

// Criticality ranks task urgency. Level orders criticalities from least
// to most urgent; SLADays optionally suggests a default deadline offset.
type Criticality struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Level     int       `json:"level" gorm:"not null"`
	SLADays   *int      `json:"sla_days,omitempty"`
	Active    bool      `json:"active" gorm:"default:true"`
	TenantID  uint      `json:"tenant_id" gorm:"index;not null"`
	TenantIDs IDArray   `json:"tenant_ids,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveTenants returns the tenant set the criticality is visible to
func (c *Criticality) EffectiveTenants() []uint {
	return effectiveTenants(c.TenantID, c.TenantIDs)
}

// EntryMethod records how a demand arrived (e-mail, phone, ...)
type EntryMethod struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Active    bool      `json:"active" gorm:"default:true"`
	TenantID  uint      `json:"tenant_id" gorm:"index;not null"`
	TenantIDs IDArray   `json:"tenant_ids,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveTenants returns the tenant set the entry method is visible to
func (e *EntryMethod) EffectiveTenants() []uint {
	return effectiveTenants(e.TenantID, e.TenantIDs)
}

// TaskType categorizes the kind of work requested
type TaskType struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	Description string    `json:"description" gorm:"type:text"`
	Active      bool      `json:"active" gorm:"default:true"`
	TenantID    uint      `json:"tenant_id" gorm:"index;not null"`
	TenantIDs   IDArray   `json:"tenant_ids,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EffectiveTenants returns the tenant set the task type is visible to
func (t *TaskType) EffectiveTenants() []uint {
	return effectiveTenants(t.TenantID, t.TenantIDs)
}

// Tag is an optional free label attachable to a task
type Tag struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Color     string    `json:"color,omitempty" gorm:"type:varchar(20)"`
	Active    bool      `json:"active" gorm:"default:true"`
	TenantID  uint      `json:"tenant_id" gorm:"index;not null"`
	TenantIDs IDArray   `json:"tenant_ids,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveTenants returns the tenant set the tag is visible to
func (t *Tag) EffectiveTenants() []uint {
	return effectiveTenants(t.TenantID, t.TenantIDs)
}
