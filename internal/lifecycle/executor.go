// Package lifecycle applies status transitions: it stamps the lifecycle
// timestamps and appends the immutable audit record, atomically from the
// caller's perspective.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Lousuarez/LourenTask/internal/model"
	"github.com/Lousuarez/LourenTask/internal/workflow"
)

var (
	// ErrCrossTenantStatus rejects a target status owned by a different
	// tenant than the task.
	ErrCrossTenantStatus = errors.New("target status belongs to a different tenant")

	// ErrTransitionNotOffered rejects a target outside the actions offered
	// from the task's current status, unless a manual override is allowed.
	ErrTransitionNotOffered = errors.New("transition is not offered from the current status")
)

// Options tunes a single transition call
type Options struct {
	// AllowManual permits any same-tenant target, not just the offered
	// quick actions (the explicit status picker in the edit dialog).
	AllowManual bool
}

// Executor coordinates a status change against the record store
type Executor struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

// NewExecutor returns an executor writing through the given store
func NewExecutor(store Store, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{store: store, log: log, now: time.Now}
}

// Transition moves the task to the target status. On success the task's
// status reference points at the target, StartedAt is stamped on first
// entry into the running role (re-entry never resets it), FinishedAt is
// stamped on reaching the terminal role and cleared when the task leaves
// it, and exactly one history entry records the change. Store failures
// are returned with their original cause and commit nothing; the caller
// decides whether to retry.
func (e *Executor) Transition(ctx context.Context, taskID, targetStatusID, actorID uint, opts Options) (*model.Task, error) {
	task, err := e.store.Task(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("load task %d: %w", taskID, err)
	}

	target, err := e.store.Status(ctx, targetStatusID)
	if err != nil {
		return nil, fmt.Errorf("load status %d: %w", targetStatusID, err)
	}
	if target.TenantID != task.TenantID {
		e.log.Warn("cross-tenant transition rejected",
			zap.Uint("task_id", task.ID),
			zap.Uint("task_tenant_id", task.TenantID),
			zap.Uint("status_tenant_id", target.TenantID))
		return nil, ErrCrossTenantStatus
	}

	statuses, err := e.store.TenantStatuses(ctx, task.TenantID)
	if err != nil {
		return nil, fmt.Errorf("load tenant %d statuses: %w", task.TenantID, err)
	}
	wf := workflow.New(statuses)
	for _, warning := range wf.Warnings() {
		e.log.Warn("workflow configuration", zap.Uint("tenant_id", task.TenantID), zap.String("detail", warning))
	}
	if !opts.AllowManual && !wf.Offers(*task, target.ID) {
		return nil, ErrTransitionNotOffered
	}

	now := e.now()
	oldStatusID := task.StatusID
	task.StatusID = target.ID

	if workflow.RoleOf(*target) == workflow.RoleTerminal {
		task.FinishedAt = &now
	} else {
		// Leaving the terminal role re-enters active SLA evaluation
		task.FinishedAt = nil
	}
	if workflow.RoleOf(*target) == workflow.RoleRunning && task.StartedAt == nil {
		task.StartedAt = &now
	}

	entry := &model.TaskHistory{
		TaskID:      task.ID,
		OldStatusID: oldStatusID,
		NewStatusID: target.ID,
		ChangedByID: actorID,
		Timestamp:   now,
	}

	if err := e.store.ApplyTransition(ctx, task, entry); err != nil {
		return nil, fmt.Errorf("transition not committed: %w", err)
	}

	e.log.Info("task transitioned",
		zap.Uint("task_id", task.ID),
		zap.Uint("old_status_id", oldStatusID),
		zap.Uint("new_status_id", target.ID),
		zap.Uint("actor_id", actorID))

	return task, nil
}

// WithClock overrides the executor's time source. Test hook.
func (e *Executor) WithClock(now func() time.Time) *Executor {
	e.now = now
	return e
}
