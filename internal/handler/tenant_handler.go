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
	"github.com/Lousuarez/LourenTask/pkg/jwtutil"
	"github.com/Lousuarez/LourenTask/pkg/logger"
	"github.com/Lousuarez/LourenTask/prometheus"
)

// CreateTenant registers a new company
func CreateTenant(c echo.Context) error {
	log := logger.FromContext(c)

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req struct {
		Name         string `json:"name"`
		PrimaryColor string `json:"primary_color,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	tenant := model.Tenant{
		Name:         req.Name,
		PrimaryColor: req.PrimaryColor,
		Active:       true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&tenant); result.Error != nil {
		log.Error("Failed to create tenant", zap.Error(result.Error))
		prometheus.RecordError("tenant_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant creation failed"})
	}

	// Creator joins the new tenant's membership set
	memberships := user.TenantIDs
	if len(memberships) == 0 {
		memberships = model.IDArray{user.TenantID}
	}
	memberships = append(memberships, tenant.ID)
	if result := database.GetDB().Model(user).Update("tenant_ids", memberships); result.Error != nil {
		log.Error("Failed to update user tenant membership", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant membership update failed"})
	}

	log.Info("Tenant created", zap.Uint("id", tenant.ID), zap.String("name", tenant.Name))
	return c.JSON(http.StatusCreated, echo.Map{"message": "tenant created successfully", "tenant": tenant})
}

// ListTenants returns the tenants the caller belongs to
func ListTenants(c echo.Context) error {
	log := logger.FromContext(c)

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var tenants []model.Tenant
	result := database.GetDB().Where("id IN ?", scope.Tenants(user)).Find(&tenants)
	if result.Error != nil {
		log.Error("Failed to retrieve tenants", zap.Error(result.Error))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve tenants"})
	}

	return c.JSON(http.StatusOK, echo.Map{"tenants": tenants})
}

// GetTenant retrieves one tenant within the caller's scope
func GetTenant(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}
	if !scope.Allowed(scope.Tenants(user), uint(id)) {
		prometheus.RecordTenantError(uint(id), "scope_violation")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	var tenant model.Tenant
	if result := database.GetDB().First(&tenant, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	return c.JSON(http.StatusOK, tenant)
}

// SwitchTenant re-issues the session token with a different active tenant
func SwitchTenant(c echo.Context) error {
	log := logger.FromContext(c)

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req struct {
		TenantID uint `json:"tenant_id"`
	}
	if err := c.Bind(&req); err != nil || req.TenantID == 0 {
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id is required"})
	}

	if !scope.Allowed(scope.Tenants(user), req.TenantID) {
		log.Warn("Tenant switch denied",
			zap.Uint("user_id", user.ID),
			zap.Uint("tenant_id", req.TenantID))
		prometheus.RecordTenantError(req.TenantID, "scope_violation")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied to the specified tenant"})
	}

	var tenantName string
	var tenant model.Tenant
	if result := database.GetDB().Select("name").First(&tenant, req.TenantID); result.Error == nil {
		tenantName = tenant.Name
	}

	token, err := jwtutil.GenerateTokenWithTenant(user.Email, user.ID, &req.TenantID, tenantName)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("Tenant switched", zap.Uint("user_id", user.ID), zap.Uint("tenant_id", req.TenantID))
	return c.JSON(http.StatusOK, echo.Map{"token": token, "tenant_id": req.TenantID})
}
