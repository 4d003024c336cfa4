package model

import "time"

// TrendSummary 某个时间窗口的趋势总结, 每个窗口只保留最新一条
type TrendSummary struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Timeframe    string    `gorm:"size:10;not null;index:idx_summaries_timeframe,priority:1" json:"timeframe"`
	SummaryText  string    `gorm:"type:text;not null" json:"summary_text"`
	ArticleCount int       `json:"article_count"`
	GeneratedAt  time.Time `gorm:"not null;index:idx_summaries_timeframe,priority:2" json:"generated_at"`
}

func (TrendSummary) TableName() string {
	return "summaries"
}

// TrendDocument 模型按JSON模式返回的趋势结构
type TrendDocument struct {
	Trends []Trend `json:"trends"`
}

type Trend struct {
	Name       string `json:"name"`
	Summary    string `json:"summary"`
	ArticleIDs []uint `json:"article_ids"`
}
