package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Lousuarez/LourenTask/internal/model"
	"github.com/Lousuarez/LourenTask/internal/scope"
	"github.com/Lousuarez/LourenTask/pkg/database"
	"github.com/Lousuarez/LourenTask/pkg/logger"
	"github.com/Lousuarez/LourenTask/prometheus"
)

// CreateStatus adds a workflow step to the active tenant
func CreateStatus(c echo.Context) error {
	log := logger.FromContext(c)

	user, err := currentUser(c)
	if err != nil {
		return err
	}
	tenantID, ok := activeTenant(c)
	if !ok {
		prometheus.RecordError("missing_tenant_context")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant context required"})
	}
	if !scope.Allowed(scope.Tenants(user), tenantID) {
		prometheus.RecordTenantError(tenantID, "scope_violation")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	var req struct {
		Name    string `json:"name"`
		Order   int    `json:"order"`
		IsFinal bool   `json:"is_final"`
	}
	if err := c.Bind(&req); err != nil {
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" || req.Order < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and a positive order are required"})
	}

	status := model.Status{
		TenantID: tenantID,
		Name:     req.Name,
		Order:    req.Order,
		IsFinal:  req.IsFinal,
		Active:   true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&status); result.Error != nil {
		log.Error("Failed to create status", zap.Error(result.Error))
		prometheus.RecordError("status_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "status creation failed"})
	}

	// Surface workflow anchor problems to the operator right away
	wf, wfErr := tenantWorkflow(c, tenantID)
	if wfErr != nil {
		return wfErr
	}
	var warnings []string
	if err := wf.Validate(); err != nil {
		warnings = append(warnings, err.Error())
	}
	warnings = append(warnings, wf.Warnings()...)

	log.Info("Status created", zap.Uint("id", status.ID), zap.Uint("tenant_id", tenantID))
	return c.JSON(http.StatusCreated, echo.Map{"status": status, "warnings": warnings})
}

// ListStatuses returns the scoped statuses ordered by workflow order
func ListStatuses(c echo.Context) error {
	log := logger.FromContext(c)

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var statuses []model.Status
	result := database.GetDB().
		Scopes(scope.TenantScoped(scope.Tenants(user))).
		Order("sort_order ASC").
		Find(&statuses)
	if result.Error != nil {
		log.Error("Failed to retrieve statuses", zap.Error(result.Error))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve statuses"})
	}

	return c.JSON(http.StatusOK, echo.Map{"statuses": statuses})
}

// UpdateStatus edits a workflow step
func UpdateStatus(c echo.Context) error {
	log := logger.FromContext(c)

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status ID"})
	}

	var status model.Status
	result := database.GetDB().Scopes(scope.TenantScoped(scope.Tenants(user))).First(&status, id)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "status not found"})
	}

	var req struct {
		Name    *string `json:"name,omitempty"`
		Order   *int    `json:"order,omitempty"`
		IsFinal *bool   `json:"is_final,omitempty"`
		Active  *bool   `json:"active,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Order != nil {
		if *req.Order < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "order must be positive"})
		}
		updates["sort_order"] = *req.Order
	}
	if req.IsFinal != nil {
		updates["is_final"] = *req.IsFinal
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if len(updates) > 0 {
		if result := database.GetDB().Model(&status).Updates(updates); result.Error != nil {
			log.Error("Failed to update status", zap.Uint64("id", id), zap.Error(result.Error))
			prometheus.RecordError("status_update_failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "status update failed"})
		}
	}

	wf, wfErr := tenantWorkflow(c, status.TenantID)
	if wfErr != nil {
		return wfErr
	}
	var warnings []string
	if err := wf.Validate(); err != nil {
		warnings = append(warnings, err.Error())
		prometheus.RecordTenantError(status.TenantID, "workflow_misconfigured")
	}
	warnings = append(warnings, wf.Warnings()...)

	return c.JSON(http.StatusOK, echo.Map{"status": status, "warnings": warnings})
}
