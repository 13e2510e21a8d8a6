package model

import (
	"time"
)

// Visibility scopes restrict which tasks a user may see within their
// tenant set.
const (
	VisibilityAll    = "ALL"
	VisibilityOwn    = "OWN"
	VisibilitySector = "SECTOR"
)

// User represents the user model stored in the database.
// TenantID is the legacy single-tenant reference; TenantIDs is the newer
// multi-tenant membership set. When TenantIDs is populated it takes
// precedence.
type User struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Name             string    `json:"name" gorm:"type:varchar(100)"`
	Email            string    `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Password         string    `json:"-" gorm:"type:varchar(255)"`
	Active           bool      `json:"active" gorm:"default:true"`
	TenantID         uint      `json:"tenant_id" gorm:"index;not null"`
	TenantIDs        IDArray   `json:"tenant_ids,omitempty"`
	VisibilityScope  string    `json:"visibility_scope" gorm:"type:varchar(10);default:'ALL'"`
	VisibleSectorIDs IDArray   `json:"visible_sector_ids,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// EffectiveTenants returns the tenant set the user belongs to. A user
// always resolves to at least one tenant.
func (u *User) EffectiveTenants() []uint {
	return effectiveTenants(u.TenantID, u.TenantIDs)
}
