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

// Catalog handlers cover the pick-list entities tasks reference. Listing
// always goes through the shared-tenant scope so catalogs shared across
// companies show up for every member tenant.

type catalogRequest struct {
	Name      string        `json:"name"`
	TenantIDs model.IDArray `json:"tenant_ids,omitempty"`
}

// catalogContext resolves the caller and active tenant for catalog writes
func catalogContext(c echo.Context) (*model.User, uint, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, 0, err
	}
	tenantID, ok := activeTenant(c)
	if !ok {
		prometheus.RecordError("missing_tenant_context")
		return nil, 0, echo.NewHTTPError(http.StatusBadRequest, "tenant context required")
	}
	if !scope.Allowed(scope.Tenants(user), tenantID) {
		prometheus.RecordTenantError(tenantID, "scope_violation")
		return nil, 0, echo.NewHTTPError(http.StatusForbidden, "access denied")
	}
	return user, tenantID, nil
}

// CreateSector adds a sector to the active tenant
func CreateSector(c echo.Context) error {
	log := logger.FromContext(c)

	_, tenantID, err := catalogContext(c)
	if err != nil {
		return err
	}

	var req catalogRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	sector := model.Sector{Name: req.Name, Active: true, TenantID: tenantID, TenantIDs: req.TenantIDs}
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&sector); result.Error != nil {
		log.Error("Failed to create sector", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sector creation failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"sector": sector})
}

// ListSectors returns the scoped sectors
func ListSectors(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var sectors []model.Sector
	result := database.GetDB().Scopes(scope.TenantShared(scope.Tenants(user))).Find(&sectors)
	if result.Error != nil {
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve sectors"})
	}
	return c.JSON(http.StatusOK, echo.Map{"sectors": sectors})
}

// CreateCriticality adds a criticality level to the active tenant
func CreateCriticality(c echo.Context) error {
	log := logger.FromContext(c)

	_, tenantID, err := catalogContext(c)
	if err != nil {
		return err
	}

	var req struct {
		Name      string        `json:"name"`
		Level     int           `json:"level"`
		SLADays   *int          `json:"sla_days,omitempty"`
		TenantIDs model.IDArray `json:"tenant_ids,omitempty"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" || req.Level < 1 {
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and a positive level are required"})
	}

	crit := model.Criticality{
		Name:      req.Name,
		Level:     req.Level,
		SLADays:   req.SLADays,
		Active:    true,
		TenantID:  tenantID,
		TenantIDs: req.TenantIDs,
	}
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&crit); result.Error != nil {
		log.Error("Failed to create criticality", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "criticality creation failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"criticality": crit})
}

// ListCriticalities returns the scoped criticalities ordered by level
func ListCriticalities(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var crits []model.Criticality
	result := database.GetDB().
		Scopes(scope.TenantShared(scope.Tenants(user))).
		Order("level ASC").
		Find(&crits)
	if result.Error != nil {
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve criticalities"})
	}
	return c.JSON(http.StatusOK, echo.Map{"criticalities": crits})
}

// CreateEntryMethod adds an entry method to the active tenant
func CreateEntryMethod(c echo.Context) error {
	log := logger.FromContext(c)

	_, tenantID, err := catalogContext(c)
	if err != nil {
		return err
	}

	var req catalogRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	method := model.EntryMethod{Name: req.Name, Active: true, TenantID: tenantID, TenantIDs: req.TenantIDs}
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&method); result.Error != nil {
		log.Error("Failed to create entry method", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "entry method creation failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"entry_method": method})
}

// ListEntryMethods returns the scoped entry methods
func ListEntryMethods(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var methods []model.EntryMethod
	result := database.GetDB().Scopes(scope.TenantShared(scope.Tenants(user))).Find(&methods)
	if result.Error != nil {
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve entry methods"})
	}
	return c.JSON(http.StatusOK, echo.Map{"entry_methods": methods})
}

// CreateTaskType adds a task type to the active tenant
func CreateTaskType(c echo.Context) error {
	log := logger.FromContext(c)

	_, tenantID, err := catalogContext(c)
	if err != nil {
		return err
	}

	var req struct {
		Name        string        `json:"name"`
		Description string        `json:"description"`
		TenantIDs   model.IDArray `json:"tenant_ids,omitempty"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	taskType := model.TaskType{
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
		TenantID:    tenantID,
		TenantIDs:   req.TenantIDs,
	}
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&taskType); result.Error != nil {
		log.Error("Failed to create task type", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "task type creation failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"task_type": taskType})
}

// ListTaskTypes returns the scoped task types
func ListTaskTypes(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var types []model.TaskType
	result := database.GetDB().Scopes(scope.TenantShared(scope.Tenants(user))).Find(&types)
	if result.Error != nil {
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve task types"})
	}
	return c.JSON(http.StatusOK, echo.Map{"task_types": types})
}

// CreateTag adds a tag to the active tenant
func CreateTag(c echo.Context) error {
	log := logger.FromContext(c)

	_, tenantID, err := catalogContext(c)
	if err != nil {
		return err
	}

	var req struct {
		Name      string        `json:"name"`
		Color     string        `json:"color,omitempty"`
		TenantIDs model.IDArray `json:"tenant_ids,omitempty"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	tag := model.Tag{Name: req.Name, Color: req.Color, Active: true, TenantID: tenantID, TenantIDs: req.TenantIDs}
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&tag); result.Error != nil {
		log.Error("Failed to create tag", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tag creation failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"tag": tag})
}

// ListTags returns the scoped tags
func ListTags(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var tags []model.Tag
	result := database.GetDB().Scopes(scope.TenantShared(scope.Tenants(user))).Find(&tags)
	if result.Error != nil {
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve tags"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tags": tags})
}

// DeactivateCatalogEntry flips the active flag off for a catalog record.
// Catalog entries referenced by tasks are never hard-deleted.
func DeactivateCatalogEntry(c echo.Context) error {
	log := logger.FromContext(c)

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ID"})
	}

	entities := map[string]interface{}{
		"sectors":       &model.Sector{},
		"criticalities": &model.Criticality{},
		"entry-methods": &model.EntryMethod{},
		"task-types":    &model.TaskType{},
		"tags":          &model.Tag{},
	}
	entity, ok := entities[c.Param("entity")]
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown catalog"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result := database.GetDB().
		Model(entity).
		Scopes(scope.TenantShared(scope.Tenants(user))).
		Where("id = ?", id).
		Update("active", false)
	if result.Error != nil {
		log.Error("Failed to deactivate catalog entry", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivation failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "record not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "record deactivated"})
}
