package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ppratick/studySyncAI/internal/model"
)

// SettingRepository 标量设置数据访问接口
type SettingRepository interface {
	// Get 读取设置值，键不存在时返回空串而非错误
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type settingRepo struct {
	db *gorm.DB
}

// NewSettingRepo 创建 SettingRepository 实例
func NewSettingRepo(db *gorm.DB) SettingRepository {
	return &settingRepo{db: db}
}

func (r *settingRepo) Get(ctx context.Context, key string) (string, error) {
	var s model.Setting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.Value, nil
}

func (r *settingRepo) Set(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Setting
		err := tx.Where("key = ?", key).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&model.Setting{Key: key, Value: value}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&existing).Update("value", value).Error
	})
}
