package model

import "time"

// SourceTypeBlog 目前所有源都是博客
const SourceTypeBlog = "blog"

type Article struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	URL         string    `gorm:"size:1000;uniqueIndex;not null" json:"url"`
	Title       string    `gorm:"size:500;not null" json:"title"`
	Content     string    `gorm:"type:text" json:"content"`
	PublishedAt time.Time `gorm:"not null;index:idx_articles_published" json:"published_at"`
	SourceType  string    `gorm:"size:50" json:"source_type"`
	SourceName  string    `gorm:"size:255" json:"source_name"`
	Summary     *string   `gorm:"type:text" json:"summary"` // nil 表示待生成摘要
	CreatedAt   time.Time `json:"created_at"`
}

func (Article) TableName() string {
	return "articles"
}

// NeedsSummary 摘要为空时需要重新生成
func (a *Article) NeedsSummary() bool {
	return a.Summary == nil || *a.Summary == ""
}
