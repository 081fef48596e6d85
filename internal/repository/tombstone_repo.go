package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ppratick/studySyncAI/internal/model"
)

// TombstoneRepository 删除墓碑数据访问接口
type TombstoneRepository interface {
	Exists(ctx context.Context, assignmentID string) (bool, error)
	List(ctx context.Context) ([]model.DeletedAssignment, error)
}

type tombstoneRepo struct {
	db *gorm.DB
}

// NewTombstoneRepo 创建 TombstoneRepository 实例
func NewTombstoneRepo(db *gorm.DB) TombstoneRepository {
	return &tombstoneRepo{db: db}
}

func (r *tombstoneRepo) Exists(ctx context.Context, assignmentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.DeletedAssignment{}).
		Where("assignment_id = ?", assignmentID).
		Count(&count).Error
	return count > 0, err
}

func (r *tombstoneRepo) List(ctx context.Context) ([]model.DeletedAssignment, error) {
	var list []model.DeletedAssignment
	err := r.db.WithContext(ctx).Order("deleted_at DESC").Find(&list).Error
	return list, err
}
