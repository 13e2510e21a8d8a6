package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Lousuarez/LourenTask/internal/model"
	"github.com/Lousuarez/LourenTask/internal/scope"
	"github.com/Lousuarez/LourenTask/internal/sla"
	"github.com/Lousuarez/LourenTask/internal/workflow"
	"github.com/Lousuarez/LourenTask/pkg/database"
	"github.com/Lousuarez/LourenTask/pkg/logger"
	"github.com/Lousuarez/LourenTask/prometheus"
)

const taskPageSize = 10

const dateLayout = "2006-01-02"

// CreateTask registers a new demand seeded with the tenant's initial status
func CreateTask(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTaskOperation("create")

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
		Title         string `json:"title"`
		ResponsibleID uint   `json:"responsible_id"`
		Deadline      string `json:"deadline"`
		CriticalityID uint   `json:"criticality_id"`
		SectorID      uint   `json:"sector_id"`
		EntryMethodID uint   `json:"entry_method_id"`
		TaskTypeID    uint   `json:"task_type_id"`
		TagID         *uint  `json:"tag_id,omitempty"`
		Solicitor     string `json:"solicitor"`
		Observations  string `json:"observations"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse task creation request", zap.Error(err))
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Title == "" || req.ResponsibleID == 0 || req.Deadline == "" || req.CriticalityID == 0 || req.SectorID == 0 {
		prometheus.RecordError("incomplete_task")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, responsible_id, deadline, criticality_id and sector_id are required"})
	}

	deadline, err := time.Parse(dateLayout, req.Deadline)
	if err != nil {
		prometheus.RecordError("invalid_deadline")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "deadline must be YYYY-MM-DD"})
	}

	// Seed from the tenant's workflow. A tenant without an initial status is
	// a setup bug surfaced to the operator, never defaulted around.
	wf, err := tenantWorkflow(c, tenantID)
	if err != nil {
		return err
	}
	initial, err := wf.Initial()
	if err != nil {
		log.Error("Tenant workflow has no initial status", zap.Uint("tenant_id", tenantID))
		prometheus.RecordTenantError(tenantID, "workflow_misconfigured")
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "tenant has no workflow configured"})
	}

	task := model.Task{
		Title:         req.Title,
		TenantID:      tenantID,
		ResponsibleID: req.ResponsibleID,
		Deadline:      deadline,
		CriticalityID: req.CriticalityID,
		SectorID:      req.SectorID,
		EntryMethodID: req.EntryMethodID,
		TaskTypeID:    req.TaskTypeID,
		TagID:         req.TagID,
		Solicitor:     req.Solicitor,
		Observations:  req.Observations,
		StatusID:      initial.ID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&task); result.Error != nil {
		log.Error("Failed to create task", zap.Error(result.Error))
		prometheus.RecordError("task_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "task creation failed"})
	}

	log.Info("Task created",
		zap.Uint("id", task.ID),
		zap.Uint("tenant_id", task.TenantID),
		zap.Uint("status_id", task.StatusID))

	return c.JSON(http.StatusCreated, echo.Map{"message": "task created successfully", "task": task})
}

// ListTasks returns the tenant-scoped, visibility-filtered task list with
// optional status/SLA filters, search and pagination.
func ListTasks(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTaskOperation("list")

	user, err := currentUser(c)
	if err != nil {
		return err
	}
	tenants := scope.Tenants(user)

	query := database.GetDB().
		Scopes(scope.TenantScoped(tenants)).
		Order("created_at DESC")

	if search := c.QueryParam("q"); search != "" {
		like := "%" + search + "%"
		query = query.Where("title ILIKE ? OR solicitor ILIKE ?", like, like)
	}

	statusFilter := c.QueryParam("status")
	if statusFilter != "" && statusFilter != "all" && !isSLAFilter(statusFilter) {
		statusID, err := strconv.ParseUint(statusFilter, 10, 32)
		if err != nil {
			prometheus.RecordError("invalid_request")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status filter"})
		}
		query = query.Where("status_id = ?", statusID)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var tasks []model.Task
	if result := query.Find(&tasks); result.Error != nil {
		log.Error("Failed to retrieve tasks", zap.Error(result.Error))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve tasks"})
	}

	// Visibility narrows before anything is counted or paginated
	tasks = scope.FilterVisible(user, tasks)

	if isSLAFilter(statusFilter) {
		workflows, err := tenantWorkflows(c, tenants)
		if err != nil {
			return err
		}
		tasks = filterBySLA(tasks, workflows, statusFilter)
	}

	total := len(tasks)
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	start := (page - 1) * taskPageSize
	if start > total {
		start = total
	}
	end := start + taskPageSize
	if end > total {
		end = total
	}

	return c.JSON(http.StatusOK, echo.Map{
		"tasks": tasks[start:end],
		"total": total,
		"page":  page,
	})
}

// GetTask retrieves one task within the caller's scope
func GetTask(c echo.Context) error {
	prometheus.RecordTaskOperation("get")

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

	return c.JSON(http.StatusOK, echo.Map{
		"task":    task,
		"sla":     classifier.Classify(*task, wf, time.Now()),
		"actions": wf.AvailableActions(*task),
	})
}

// UpdateTask edits task fields. The status reference is deliberately not
// editable here; it only changes through the transition endpoint.
func UpdateTask(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTaskOperation("update")

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	task, httpErr := scopedTask(c, user)
	if httpErr != nil {
		return httpErr
	}

	var req struct {
		Title         *string `json:"title,omitempty"`
		ResponsibleID *uint   `json:"responsible_id,omitempty"`
		Deadline      *string `json:"deadline,omitempty"`
		CriticalityID *uint   `json:"criticality_id,omitempty"`
		SectorID      *uint   `json:"sector_id,omitempty"`
		EntryMethodID *uint   `json:"entry_method_id,omitempty"`
		TaskTypeID    *uint   `json:"task_type_id,omitempty"`
		TagID         *uint   `json:"tag_id,omitempty"`
		Solicitor     *string `json:"solicitor,omitempty"`
		Observations  *string `json:"observations,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.ResponsibleID != nil {
		updates["responsible_id"] = *req.ResponsibleID
	}
	if req.Deadline != nil {
		deadline, err := time.Parse(dateLayout, *req.Deadline)
		if err != nil {
			prometheus.RecordError("invalid_deadline")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "deadline must be YYYY-MM-DD"})
		}
		updates["deadline"] = deadline
	}
	if req.CriticalityID != nil {
		updates["criticality_id"] = *req.CriticalityID
	}
	if req.SectorID != nil {
		updates["sector_id"] = *req.SectorID
	}
	if req.EntryMethodID != nil {
		updates["entry_method_id"] = *req.EntryMethodID
	}
	if req.TaskTypeID != nil {
		updates["task_type_id"] = *req.TaskTypeID
	}
	if req.TagID != nil {
		updates["tag_id"] = *req.TagID
	}
	if req.Solicitor != nil {
		updates["solicitor"] = *req.Solicitor
	}
	if req.Observations != nil {
		updates["observations"] = *req.Observations
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"task": task})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Model(task).Updates(updates); result.Error != nil {
		log.Error("Failed to update task", zap.Uint("id", task.ID), zap.Error(result.Error))
		prometheus.RecordError("task_update_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "task update failed"})
	}

	log.Info("Task updated", zap.Uint("id", task.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "task updated successfully", "task": task})
}

// DeleteTask permanently removes a task and its audit trail. This is the
// destructive operator action; the history goes first so the task row
// never loses its foreign-key anchor mid-delete.
func DeleteTask(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTaskOperation("delete")

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	task, httpErr := scopedTask(c, user)
	if httpErr != nil {
		return httpErr
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&model.TaskHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Task{}, task.ID).Error
	})
	if err != nil {
		log.Error("Failed to delete task", zap.Uint("id", task.ID), zap.Error(err))
		prometheus.RecordError("task_deletion_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "task deletion failed"})
	}

	log.Info("Task deleted with history", zap.Uint("id", task.ID), zap.Uint("deleted_by", user.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "task deleted successfully"})
}

// scopedTask loads the task in the path parameter and refuses anything
// outside the caller's tenant and visibility scope.
func scopedTask(c echo.Context, user *model.User) (*model.Task, error) {
	log := logger.FromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		prometheus.RecordError("invalid_request")
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid task ID")
	}

	tenants := scope.Tenants(user)

	var task model.Task
	result := database.GetDB().Scopes(scope.TenantScoped(tenants)).First(&task, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "task not found")
		}
		log.Error("Failed to load task", zap.Uint64("id", id), zap.Error(result.Error))
		prometheus.RecordError("db_error")
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to load task")
	}

	if visible := scope.FilterVisible(user, []model.Task{task}); len(visible) == 0 {
		log.Warn("Visibility scope violation",
			zap.Uint("user_id", user.ID),
			zap.Uint("task_id", task.ID))
		prometheus.RecordTenantError(task.TenantID, "scope_violation")
		return nil, echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	return &task, nil
}

func isSLAFilter(filter string) bool {
	switch filter {
	case "overdue", "today", "concluded", "on_time", "late":
		return true
	}
	return false
}

// filterBySLA keeps tasks matching the dashboard-card filters, using the
// classifier so list counts and dashboard counts can never diverge.
func filterBySLA(tasks []model.Task, workflows map[uint]*workflow.Workflow, filter string) []model.Task {
	now := time.Now()
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		wf, ok := workflows[t.TenantID]
		if !ok {
			continue
		}
		state := classifier.Classify(t, wf, now)
		switch filter {
		case "overdue":
			if state == sla.Overdue {
				out = append(out, t)
			}
		case "today":
			if state == sla.DueToday {
				out = append(out, t)
			}
		case "concluded":
			if state.Concluded() {
				out = append(out, t)
			}
		case "on_time":
			if state == sla.CompletedOnTime {
				out = append(out, t)
			}
		case "late":
			if state == sla.CompletedLate {
				out = append(out, t)
			}
		}
	}
	return out
}

// tenantWorkflow builds one tenant's workflow from its statuses
func tenantWorkflow(c echo.Context, tenantID uint) (*workflow.Workflow, error) {
	log := logger.FromContext(c)

	var statuses []model.Status
	result := database.GetDB().
		Where("tenant_id = ?", tenantID).
		Order("sort_order ASC").
		Find(&statuses)
	if result.Error != nil {
		log.Error("Failed to load statuses", zap.Uint("tenant_id", tenantID), zap.Error(result.Error))
		prometheus.RecordError("db_error")
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to load workflow")
	}

	wf := workflow.New(statuses)
	for _, warning := range wf.Warnings() {
		log.Warn("Workflow configuration", zap.Uint("tenant_id", tenantID), zap.String("detail", warning))
	}
	return wf, nil
}

// tenantWorkflows builds workflows for every tenant in the resolved scope
func tenantWorkflows(c echo.Context, tenantIDs []uint) (map[uint]*workflow.Workflow, error) {
	log := logger.FromContext(c)

	var statuses []model.Status
	result := database.GetDB().
		Scopes(scope.TenantScoped(tenantIDs)).
		Order("sort_order ASC").
		Find(&statuses)
	if result.Error != nil {
		log.Error("Failed to load statuses", zap.Error(result.Error))
		prometheus.RecordError("db_error")
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to load workflow")
	}

	byTenant := make(map[uint][]model.Status)
	for _, s := range statuses {
		byTenant[s.TenantID] = append(byTenant[s.TenantID], s)
	}

	workflows := make(map[uint]*workflow.Workflow, len(byTenant))
	for id, list := range byTenant {
		workflows[id] = workflow.New(list)
	}
	return workflows, nil
}
