package lifecycle

import (
	"context"

	"gorm.io/gorm"

	"github.com/Lousuarez/LourenTask/internal/model"
)

// GormStore backs the executor with the service database. The task update
// and the history insert share one transaction, which is the atomic
// multi-record write the executor relies on.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps the given database handle
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Task loads a task by ID
func (s *GormStore) Task(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := s.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Status loads a status by ID
func (s *GormStore) Status(ctx context.Context, id uint) (*model.Status, error) {
	var status model.Status
	if err := s.db.WithContext(ctx).First(&status, id).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

// TenantStatuses loads a tenant's statuses ordered by workflow order
func (s *GormStore) TenantStatuses(ctx context.Context, tenantID uint) ([]model.Status, error) {
	var statuses []model.Status
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("sort_order ASC").
		Find(&statuses).Error
	if err != nil {
		return nil, err
	}
	return statuses, nil
}

// ApplyTransition commits the task update and the history append together
func (s *GormStore) ApplyTransition(ctx context.Context, task *model.Task, entry *model.TaskHistory) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status_id":   task.StatusID,
			"started_at":  task.StartedAt,
			"finished_at": task.FinishedAt,
		}
		if err := tx.Model(&model.Task{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}
