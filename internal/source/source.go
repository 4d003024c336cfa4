// Package source turns external blogs into candidate articles.
package source

import (
	"context"

	"ai-pulse/internal/model"
)

// Adapter 从单个源产出候选文章
type Adapter interface {
	Name() string
	Kind() string
	// Fetch 返回错误表示整个源不可用; 单条内容的问题记录在Batch.Skipped里
	Fetch(ctx context.Context) (Batch, error)
}

// Batch 一次抓取的结果
type Batch struct {
	Candidates []model.Article
	Skipped    []Skip
}

// Skip 被跳过的条目及原因
type Skip struct {
	Ref    string `json:"ref"`
	Reason string `json:"reason"`
}

// 跳过原因
const (
	ReasonMissingLink  = "missing_link"
	ReasonMissingTitle = "missing_title"
	ReasonExcludedPath = "excluded_path"
	ReasonPlaceholder  = "placeholder_title"
	ReasonInvalidLink  = "invalid_link"
)

func (b *Batch) skip(ref, reason string) {
	b.Skipped = append(b.Skipped, Skip{Ref: ref, Reason: reason})
}
