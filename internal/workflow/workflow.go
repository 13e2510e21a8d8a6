// Package workflow classifies a tenant's statuses into roles and answers
// which transitions are offered from a task's current status. Roles are
// computed from the (order, isFinal) pair at read time and never
// persisted, so a tenant renaming or reordering statuses needs no data
// migration.
package workflow

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Lousuarez/LourenTask/internal/model"
)

// Role is the functional meaning of a status within a tenant's workflow
type Role int

const (
	RoleUnclassified Role = iota
	RoleInitial
	RoleRunning
	RolePaused
	RoleTerminal
)

// String returns the role name
func (r Role) String() string {
	switch r {
	case RoleInitial:
		return "initial"
	case RoleRunning:
		return "running"
	case RolePaused:
		return "paused"
	case RoleTerminal:
		return "terminal"
	default:
		return "unclassified"
	}
}

// Configuration errors: a tenant whose workflow lacks an anchor role
// cannot seed new tasks or offer transitions. These are surfaced to the
// operator, never papered over with an arbitrary default status.
var (
	ErrNoInitialStatus  = errors.New("tenant workflow has no initial status (order 1)")
	ErrNoTerminalStatus = errors.New("tenant workflow has no terminal status")
)

// RoleOf derives the role of a single status. The terminal flag wins over
// any order value.
func RoleOf(s model.Status) Role {
	if s.IsFinal {
		return RoleTerminal
	}
	switch s.Order {
	case 1:
		return RoleInitial
	case 2:
		return RoleRunning
	case 3:
		return RolePaused
	default:
		return RoleUnclassified
	}
}

// Action is one quick transition offered from a task's current status
type Action struct {
	Name           string `json:"name"`
	TargetStatusID uint   `json:"target_status_id"`
	TargetRole     string `json:"target_role"`
}

// Workflow holds one tenant's active statuses indexed by role
type Workflow struct {
	statuses []model.Status
	byID     map[uint]model.Status
	byRole   map[Role]model.Status
	warnings []string
}

// New builds a workflow from a tenant's statuses. Inactive statuses are
// ignored. When more than one status competes for the same role the
// lowest ID wins deterministically and a configuration warning is
// recorded; tenant setup should guarantee uniqueness.
func New(statuses []model.Status) *Workflow {
	w := &Workflow{
		byID:   make(map[uint]model.Status),
		byRole: make(map[Role]model.Status),
	}

	active := make([]model.Status, 0, len(statuses))
	for _, s := range statuses {
		if s.Active {
			active = append(active, s)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].Order != active[j].Order {
			return active[i].Order < active[j].Order
		}
		return active[i].ID < active[j].ID
	})
	w.statuses = active

	for _, s := range active {
		w.byID[s.ID] = s
		role := RoleOf(s)
		if role == RoleUnclassified {
			continue
		}
		if existing, ok := w.byRole[role]; ok {
			// Two terminal statuses can arrive in order-sorted sequence
			// with the lower ID second; the lowest ID still wins.
			winner := existing
			if s.ID < existing.ID {
				winner = s
				w.byRole[role] = s
			}
			w.warnings = append(w.warnings, fmt.Sprintf(
				"ambiguous %s status: %q (id=%d) and %q (id=%d) compete; picking id=%d",
				role, existing.Name, existing.ID, s.Name, s.ID, winner.ID))
			continue
		}
		w.byRole[role] = s
	}

	return w
}

// Statuses returns the active statuses ordered by their workflow order
func (w *Workflow) Statuses() []model.Status {
	return w.statuses
}

// Warnings returns configuration warnings recorded while building the
// workflow, such as an ambiguous initial status.
func (w *Workflow) Warnings() []string {
	return w.warnings
}

// Validate reports the configuration errors that make a workflow unusable
// as a transition anchor.
func (w *Workflow) Validate() error {
	if _, ok := w.byRole[RoleInitial]; !ok {
		return ErrNoInitialStatus
	}
	if _, ok := w.byRole[RoleTerminal]; !ok {
		return ErrNoTerminalStatus
	}
	return nil
}

// Initial returns the status that seeds new tasks
func (w *Workflow) Initial() (model.Status, error) {
	s, ok := w.byRole[RoleInitial]
	if !ok {
		return model.Status{}, ErrNoInitialStatus
	}
	return s, nil
}

// Terminal returns the tenant's terminal status
func (w *Workflow) Terminal() (model.Status, error) {
	s, ok := w.byRole[RoleTerminal]
	if !ok {
		return model.Status{}, ErrNoTerminalStatus
	}
	return s, nil
}

// ByRole returns the status holding the given role, if any
func (w *Workflow) ByRole(role Role) (model.Status, bool) {
	s, ok := w.byRole[role]
	return s, ok
}

// RoleOfID resolves a status reference to its role. Unknown references
// (a status of another tenant, or an inactive one) are unclassified.
func (w *Workflow) RoleOfID(statusID uint) Role {
	s, ok := w.byID[statusID]
	if !ok {
		return RoleUnclassified
	}
	return RoleOf(s)
}

// AvailableActions derives the quick transitions offered from the task's
// current status. Every offered action first checks the corresponding
// role exists in the tenant's active status set.
func (w *Workflow) AvailableActions(task model.Task) []Action {
	var actions []Action

	offer := func(name string, role Role) {
		if s, ok := w.byRole[role]; ok {
			actions = append(actions, Action{
				Name:           name,
				TargetStatusID: s.ID,
				TargetRole:     role.String(),
			})
		}
	}

	switch w.RoleOfID(task.StatusID) {
	case RoleInitial:
		offer("start", RoleRunning)
	case RoleRunning:
		offer("pause", RolePaused)
		offer("finish", RoleTerminal)
	case RolePaused:
		offer("resume", RoleRunning)
		offer("finish", RoleTerminal)
	case RoleTerminal:
		offer("reopen", RoleInitial)
	}

	return actions
}

// Offers reports whether a transition to the target status is among the
// actions offered from the task's current status.
func (w *Workflow) Offers(task model.Task, targetStatusID uint) bool {
	for _, a := range w.AvailableActions(task) {
		if a.TargetStatusID == targetStatusID {
			return true
		}
	}
	return false
}
