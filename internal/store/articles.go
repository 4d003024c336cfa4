package store

import (
	"context"
	"fmt"
	"time"

	"ai-pulse/internal/model"
	"gorm.io/gorm/clause"
)

// InsertArticle 按url插入, 已存在时忽略; inserted表示是否真的写入了新行
func (s *Store) InsertArticle(ctx context.Context, article *model.Article) (bool, error) {
	article.PublishedAt = article.PublishedAt.UTC()

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "url"}},
			DoNothing: true,
		}).
		Create(article)
	if result.Error != nil {
		return false, fmt.Errorf("insert article %s: %w", article.URL, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// PendingSummaries 待生成摘要的文章, 优先源排在最前, 其余按发布时间倒序
func (s *Store) PendingSummaries(ctx context.Context, prioritySource string, limit int) ([]model.Article, error) {
	var articles []model.Article
	err := s.db.WithContext(ctx).
		Where("summary IS NULL OR summary = ''").
		Clauses(clause.OrderBy{
			Expression: clause.Expr{
				SQL:                "CASE WHEN source_name = ? THEN 0 ELSE 1 END, published_at DESC",
				Vars:               []interface{}{prioritySource},
				WithoutParentheses: true,
			},
		}).
		Limit(limit).
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("query pending summaries: %w", err)
	}
	return articles, nil
}

// SetSummary 立即写入单篇文章的摘要
func (s *Store) SetSummary(ctx context.Context, id uint, summary string) error {
	result := s.db.WithContext(ctx).
		Model(&model.Article{}).
		Where("id = ?", id).
		Update("summary", summary)
	if result.Error != nil {
		return fmt.Errorf("update summary %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update summary %d: %w", id, ErrNotFound)
	}
	return nil
}

// ArticlesSince 发布时间晚于cutoff的文章, 最新的在前
func (s *Store) ArticlesSince(ctx context.Context, cutoff time.Time) ([]model.Article, error) {
	var articles []model.Article
	err := s.db.WithContext(ctx).
		Where("published_at > ?", cutoff.UTC()).
		Order("published_at DESC").
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("query articles since %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return articles, nil
}

// ListArticles 分页版本, page从1开始
func (s *Store) ListArticles(ctx context.Context, cutoff time.Time, page, limit int) ([]model.Article, error) {
	if page < 1 {
		page = 1
	}

	var articles []model.Article
	err := s.db.WithContext(ctx).
		Where("published_at > ?", cutoff.UTC()).
		Order("published_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// AllArticles 全部文章, 用于静态导出
func (s *Store) AllArticles(ctx context.Context) ([]model.Article, error) {
	var articles []model.Article
	if err := s.db.WithContext(ctx).Order("published_at DESC").Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("query all articles: %w", err)
	}
	return articles, nil
}

// SourceCount 每个源的文章数
type SourceCount struct {
	SourceName string `json:"source_name"`
	Count      int64  `json:"count"`
}

// Stats 文章统计
type Stats struct {
	TotalArticles   int64         `json:"total_articles"`
	PendingArticles int64         `json:"pending_articles"`
	BySource        []SourceCount `json:"by_source"`
}

// Stats 统计文章数量
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&model.Article{}).Count(&stats.TotalArticles).Error; err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	if err := db.Model(&model.Article{}).
		Where("summary IS NULL OR summary = ''").
		Count(&stats.PendingArticles).Error; err != nil {
		return nil, fmt.Errorf("count pending: %w", err)
	}
	if err := db.Model(&model.Article{}).
		Select("source_name, count(*) AS count").
		Group("source_name").
		Order("source_name").
		Scan(&stats.BySource).Error; err != nil {
		return nil, fmt.Errorf("count by source: %w", err)
	}
	return stats, nil
}
