// Package scope resolves which tenants a user may query and narrows task
// sets to what the user is authorized to see. Both operations are pure;
// cross-tenant leakage is prevented by building every record query through
// the scopes here rather than by filtering sensitive data after the fact.
package scope

import (
	"gorm.io/gorm"

	"github.com/Lousuarez/LourenTask/internal/model"
)

// Tenants resolves the ordered, non-empty tenant set whose records the
// user may query. The multi-tenant membership set wins when populated;
// otherwise the legacy scalar reference is treated as a one-element set.
func Tenants(user *model.User) []uint {
	return user.EffectiveTenants()
}

// TenantScoped restricts a query on single-tenant records (tasks,
// statuses) to the resolved tenant set.
func TenantScoped(tenantIDs []uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id IN ?", tenantIDs)
	}
}

// TenantShared restricts a query on dual-form records (catalogs, users) to
// the resolved tenant set: the scalar reference must be in the set, or the
// record's multi-tenant set must overlap it.
func TenantShared(tenantIDs []uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id IN ? OR tenant_ids && ?", tenantIDs, model.IDArray(tenantIDs))
	}
}

// Allowed reports whether the given tenant is inside the resolved set
func Allowed(tenantIDs []uint, tenantID uint) bool {
	for _, id := range tenantIDs {
		if id == tenantID {
			return true
		}
	}
	return false
}
