package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Lousuarez/LourenTask/internal/lifecycle"
	"github.com/Lousuarez/LourenTask/internal/model"
	"github.com/Lousuarez/LourenTask/internal/workflow"
	"github.com/Lousuarez/LourenTask/pkg/database"
	"github.com/Lousuarez/LourenTask/pkg/logger"
	"github.com/Lousuarez/LourenTask/prometheus"
)

// TransitionTask moves a task to a new status through the executor. The
// task update and its audit entry commit together or not at all; failures
// carry the original cause back to the caller and are never retried here.
func TransitionTask(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTaskOperation("transition")

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	task, httpErr := scopedTask(c, user)
	if httpErr != nil {
		return httpErr
	}

	var req struct {
		TargetStatusID uint `json:"target_status_id"`
		Manual         bool `json:"manual,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.TargetStatusID == 0 {
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "target_status_id is required"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	updated, err := executor.Transition(c.Request().Context(), task.ID, req.TargetStatusID, user.ID, lifecycle.Options{
		AllowManual: req.Manual,
	})
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrCrossTenantStatus):
			prometheus.RecordTenantError(task.TenantID, "cross_tenant_status")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "target status belongs to a different tenant"})
		case errors.Is(err, lifecycle.ErrTransitionNotOffered):
			prometheus.RecordError("transition_not_offered")
			return c.JSON(http.StatusConflict, echo.Map{"error": "transition is not offered from the current status"})
		default:
			log.Error("Transition failed", zap.Uint("task_id", task.ID), zap.Error(err))
			prometheus.RecordError("transition_failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transition failed", "cause": err.Error()})
		}
	}

	wf, wfErr := tenantWorkflow(c, updated.TenantID)
	if wfErr != nil {
		return wfErr
	}
	prometheus.RecordTransition(wf.RoleOfID(updated.StatusID).String())

	return c.JSON(http.StatusOK, echo.Map{
		"message": "task transitioned successfully",
		"task":    updated,
		"sla":     classifier.Classify(*updated, wf, time.Now()),
		"actions": wf.AvailableActions(*updated),
	})
}

// GetTaskActions lists the quick transitions offered from the task's
// current status.
func GetTaskActions(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	task, httpErr := scopedTask(c, user)
	if httpErr != nil {
		return httpErr
	}

	wf, err := tenantWorkflow(c, task.TenantID)
	if err != nil {
		return err
	}

	actions := wf.AvailableActions(*task)
	if actions == nil {
		actions = []workflow.Action{}
	}
	return c.JSON(http.StatusOK, echo.Map{"actions": actions})
}

// GetTaskHistory returns the task's audit trail, newest entry first
func GetTaskHistory(c echo.Context) error {
	log := logger.FromContext(c)

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	task, httpErr := scopedTask(c, user)
	if httpErr != nil {
		return httpErr
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var history []model.TaskHistory
	result := database.GetDB().
		Where("task_id = ?", task.ID).
		Order("timestamp DESC").
		Find(&history)
	if result.Error != nil {
		log.Error("Failed to load task history", zap.Uint("task_id", task.ID), zap.Error(result.Error))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load task history"})
	}

	return c.JSON(http.StatusOK, echo.Map{"history": history})
}
