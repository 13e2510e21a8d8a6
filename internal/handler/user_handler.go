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

// GetProfile returns the authenticated user record
func GetProfile(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ListUsers returns the users visible in assignment pickers: everyone in
// the caller's resolved tenant set.
func ListUsers(c echo.Context) error {
	log := logger.FromContext(c)

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var users []model.User
	result := database.GetDB().
		Scopes(scope.TenantShared(scope.Tenants(user))).
		Where("active = ?", true).
		Find(&users)
	if result.Error != nil {
		log.Error("Failed to retrieve users", zap.Error(result.Error))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve users"})
	}

	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// UpdateUser edits another user's visibility configuration and activity
// flag. Limited to users inside the caller's tenant scope.
func UpdateUser(c echo.Context) error {
	log := logger.FromContext(c)

	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	var target model.User
	result := database.GetDB().
		Scopes(scope.TenantShared(scope.Tenants(caller))).
		First(&target, id)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	var req struct {
		Name             *string        `json:"name,omitempty"`
		Active           *bool          `json:"active,omitempty"`
		VisibilityScope  *string        `json:"visibility_scope,omitempty"`
		VisibleSectorIDs *model.IDArray `json:"visible_sector_ids,omitempty"`
		TenantIDs        *model.IDArray `json:"tenant_ids,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if req.VisibilityScope != nil {
		switch *req.VisibilityScope {
		case model.VisibilityAll, model.VisibilityOwn, model.VisibilitySector:
			updates["visibility_scope"] = *req.VisibilityScope
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid visibility scope"})
		}
	}
	if req.VisibleSectorIDs != nil {
		updates["visible_sector_ids"] = *req.VisibleSectorIDs
	}
	if req.TenantIDs != nil {
		updates["tenant_ids"] = *req.TenantIDs
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"user": target})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Model(&target).Updates(updates); result.Error != nil {
		log.Error("Failed to update user", zap.Uint64("id", id), zap.Error(result.Error))
		prometheus.RecordError("user_update_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user update failed"})
	}

	log.Info("User updated", zap.Uint("id", target.ID), zap.Uint("updated_by", caller.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "user updated successfully", "user": target})
}
