package model

import "time"

// ArticleView 对外输出的文章结构, API和静态导出共用
type ArticleView struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Source    string    `json:"source"`
	Published time.Time `json:"published"`
	Type      string    `json:"type"`
	Summary   *string   `json:"summary"`
}

func (a *Article) View() ArticleView {
	return ArticleView{
		ID:        a.ID,
		Title:     a.Title,
		URL:       a.URL,
		Source:    a.SourceName,
		Published: a.PublishedAt,
		Type:      a.SourceType,
		Summary:   a.Summary,
	}
}

// Views 批量转换
func Views(articles []Article) []ArticleView {
	out := make([]ArticleView, 0, len(articles))
	for i := range articles {
		out = append(out, articles[i].View())
	}
	return out
}

// SummaryView 趋势总结对外结构, summary是模型原文(通常为JSON字符串)
type SummaryView struct {
	Timeframe    string    `json:"timeframe,omitempty"`
	Summary      string    `json:"summary"`
	ArticleCount int       `json:"article_count"`
	GeneratedAt  time.Time `json:"generated_at"`
}

func (s *TrendSummary) View() SummaryView {
	return SummaryView{
		Timeframe:    s.Timeframe,
		Summary:      s.SummaryText,
		ArticleCount: s.ArticleCount,
		GeneratedAt:  s.GeneratedAt,
	}
}
