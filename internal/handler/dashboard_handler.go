package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Lousuarez/LourenTask/internal/dashboard"
	"github.com/Lousuarez/LourenTask/internal/model"
	"github.com/Lousuarez/LourenTask/internal/scope"
	"github.com/Lousuarez/LourenTask/pkg/database"
	"github.com/Lousuarez/LourenTask/pkg/logger"
	"github.com/Lousuarez/LourenTask/prometheus"
)

// GetDashboard computes the metrics snapshot for the caller's active
// tenant. The task list is tenant-scoped and visibility-filtered before
// aggregation, and the snapshot is recomputed on every request; nothing
// is cached across a scope change.
func GetDashboard(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.DashboardCounter.Inc()

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
	tenants := []uint{tenantID}

	defer prometheus.TrackDBOperation("query")(time.Now())
	db := database.GetDB()

	var tasks []model.Task
	if result := db.Scopes(scope.TenantScoped(tenants)).Find(&tasks); result.Error != nil {
		log.Error("Failed to load tasks", zap.Error(result.Error))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard data"})
	}

	wf, wfErr := tenantWorkflow(c, tenantID)
	if wfErr != nil {
		return wfErr
	}

	var sectors []model.Sector
	var criticalities []model.Criticality
	var types []model.TaskType
	var users []model.User
	if result := db.Scopes(scope.TenantShared(tenants)).Find(&sectors); result.Error != nil {
		log.Error("Failed to load sectors", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard data"})
	}
	if result := db.Scopes(scope.TenantShared(tenants)).Find(&criticalities); result.Error != nil {
		log.Error("Failed to load criticalities", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard data"})
	}
	if result := db.Scopes(scope.TenantShared(tenants)).Find(&types); result.Error != nil {
		log.Error("Failed to load task types", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard data"})
	}
	if result := db.Scopes(scope.TenantShared(tenants)).Find(&users); result.Error != nil {
		log.Error("Failed to load users", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard data"})
	}

	// Visibility narrows before anything is counted
	tasks = scope.FilterVisible(user, tasks)

	snapshot := dashboard.Aggregate(dashboard.Input{
		Tasks:         tasks,
		Workflow:      wf,
		Sectors:       sectors,
		Criticalities: criticalities,
		Types:         types,
		Users:         users,
		Classifier:    classifier,
		Now:           time.Now(),
		TrendDays:     trendDays,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"metrics":    snapshot,
		"efficiency": snapshot.Efficiency(),
	})
}
