// Package dates resolves a best-effort publication time from whatever a source provides.
package dates

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Normalizer 总是返回一个具体时间, 取不到时回落到当前时间
type Normalizer struct {
	now func() time.Time
}

// New 使用系统时钟
func New() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewWithClock 测试用, 注入时钟
func NewWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// Input 各适配器能提供的日期信息
type Input struct {
	Published *time.Time
	Updated   *time.Time
	Text      []string // 依次尝试的原始日期字符串
}

// Resolve 优先级: published > updated > 文本宽松解析 > 当前时间
func (n *Normalizer) Resolve(in Input) time.Time {
	if in.Published != nil && !in.Published.IsZero() {
		return in.Published.UTC()
	}
	if in.Updated != nil && !in.Updated.IsZero() {
		return in.Updated.UTC()
	}
	for _, text := range in.Text {
		if t, ok := Parse(text); ok {
			return t
		}
	}
	return n.Now()
}

// ParseOr 解析单个字符串, 失败时回落到当前时间
func (n *Normalizer) ParseOr(text string) time.Time {
	if t, ok := Parse(text); ok {
		return t
	}
	return n.Now()
}

// Now 当前时间(UTC)
func (n *Normalizer) Now() time.Time {
	return n.now().UTC()
}

// Parse 宽松解析, 没有时区信息时按UTC处理
func Parse(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
