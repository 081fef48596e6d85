package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ppratick/studySyncAI/internal/model"
)

// InsightRepository 洞察缓存数据访问接口
type InsightRepository interface {
	// Save 覆盖式保存：全表只保留最新一条
	Save(ctx context.Context, insight *model.AIInsight) error
	GetLatest(ctx context.Context) (*model.AIInsight, error)
}

type insightRepo struct {
	db *gorm.DB
}

// NewInsightRepo 创建 InsightRepository 实例
func NewInsightRepo(db *gorm.DB) InsightRepository {
	return &insightRepo{db: db}
}

func (r *insightRepo) Save(ctx context.Context, insight *model.AIInsight) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.AIInsight{}).Error; err != nil {
			return err
		}
		return tx.Create(insight).Error
	})
}

func (r *insightRepo) GetLatest(ctx context.Context) (*model.AIInsight, error) {
	var insight model.AIInsight
	err := r.db.WithContext(ctx).Order("generated_at DESC").First(&insight).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInsightNotFound
	}
	if err != nil {
		return nil, err
	}
	return &insight, nil
}
