package store

import (
	"context"
	"errors"
	"fmt"

	"ai-pulse/internal/model"
	"gorm.io/gorm"
)

// ReplaceTrendSummary 删除该时间窗口的旧记录并写入新记录, 同一事务内完成
func (s *Store) ReplaceTrendSummary(ctx context.Context, summary *model.TrendSummary) error {
	summary.GeneratedAt = summary.GeneratedAt.UTC()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("timeframe = ?", summary.Timeframe).Delete(&model.TrendSummary{}).Error; err != nil {
			return fmt.Errorf("delete summaries %s: %w", summary.Timeframe, err)
		}
		if err := tx.Create(summary).Error; err != nil {
			return fmt.Errorf("insert summary %s: %w", summary.Timeframe, err)
		}
		return nil
	})
}

// LatestTrendSummary 该时间窗口最新的一条总结
func (s *Store) LatestTrendSummary(ctx context.Context, timeframe string) (*model.TrendSummary, error) {
	var summary model.TrendSummary
	err := s.db.WithContext(ctx).
		Where("timeframe = ?", timeframe).
		Order("generated_at DESC").
		First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query summary %s: %w", timeframe, err)
	}
	return &summary, nil
}

// CountTrendSummaries 某个时间窗口的记录数
func (s *Store) CountTrendSummaries(ctx context.Context, timeframe string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.TrendSummary{}).Where("timeframe = ?", timeframe).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count summaries %s: %w", timeframe, err)
	}
	return n, nil
}
