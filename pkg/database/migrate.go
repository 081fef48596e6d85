package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/ppratick/studySyncAI/internal/model"
)

// Migrate 执行全部表结构迁移
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Assignment{},
		&model.DeletedAssignment{},
		&model.CourseMapping{},
		&model.Setting{},
		&model.AIInsight{},
	); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	return nil
}
