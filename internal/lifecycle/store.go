package lifecycle

import (
	"context"

	"github.com/Lousuarez/LourenTask/internal/model"
)

// Store is the narrow record-store surface the executor needs. The task
// update and the history append must commit or fail together: a history
// entry for a task update that did not commit (or the reverse) is an
// audit-trail inconsistency.
type Store interface {
	Task(ctx context.Context, id uint) (*model.Task, error)
	Status(ctx context.Context, id uint) (*model.Status, error)
	TenantStatuses(ctx context.Context, tenantID uint) ([]model.Status, error)
	ApplyTransition(ctx context.Context, task *model.Task, entry *model.TaskHistory) error
}
