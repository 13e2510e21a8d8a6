package scope

import (
	"github.com/Lousuarez/LourenTask/internal/model"
)

// FilterVisible narrows an already tenant-scoped task list to the subset
// the user may see. It must run before any count is shown to the user and
// before the dashboard aggregation, so totals never leak cross-scope data.
//
//   - ALL: identity.
//   - OWN: only tasks assigned to the user.
//   - SECTOR: tasks in one of the user's permitted sectors, plus the
//     user's own assignments regardless of sector.
func FilterVisible(user *model.User, tasks []model.Task) []model.Task {
	switch user.VisibilityScope {
	case model.VisibilityOwn:
		out := make([]model.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.ResponsibleID == user.ID {
				out = append(out, t)
			}
		}
		return out
	case model.VisibilitySector:
		out := make([]model.Task, 0, len(tasks))
		for _, t := range tasks {
			if user.VisibleSectorIDs.Contains(t.SectorID) || t.ResponsibleID == user.ID {
				out = append(out, t)
			}
		}
		return out
	default:
		return tasks
	}
}
