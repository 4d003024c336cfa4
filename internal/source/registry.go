package source

import (
	"fmt"
	"log/slog"

	"ai-pulse/config"
	"ai-pulse/internal/dates"
)

// Deps 适配器共享的依赖
type Deps struct {
	Fetcher *Fetcher
	Dates   *dates.Normalizer
	Logger  *slog.Logger
}

// Factory 根据配置创建适配器
type Factory func(cfg config.SourceConfig, deps Deps) (Adapter, error)

// Registry kind -> Factory
type Registry struct {
	factories map[string]Factory
}

// NewRegistry 预置feed和html两种适配器
func NewRegistry() *Registry {
	r := &Registry{factories: map[string]Factory{}}
	r.Register(config.KindFeed, func(cfg config.SourceConfig, deps Deps) (Adapter, error) {
		return NewFeedAdapter(cfg, deps), nil
	})
	r.Register(config.KindHTML, func(cfg config.SourceConfig, deps Deps) (Adapter, error) {
		return NewHTMLAdapter(cfg, deps), nil
	})
	return r
}

// Register 新增或替换某种kind的实现
func (r *Registry) Register(kind string, factory Factory) {
	r.factories[kind] = factory
}

// Build 创建单个适配器
func (r *Registry) Build(cfg config.SourceConfig, deps Deps) (Adapter, error) {
	factory, ok := r.factories[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("source %s: adapter kind %q is not registered", cfg.Name, cfg.Kind)
	}
	return factory(cfg, deps.withDefaults())
}

// BuildAll 按配置顺序创建全部适配器
func (r *Registry) BuildAll(cfgs []config.SourceConfig, deps Deps) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(cfgs))
	for _, cfg := range cfgs {
		a, err := r.Build(cfg, deps)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}

func (d Deps) withDefaults() Deps {
	if d.Fetcher == nil {
		d.Fetcher = NewFetcher(config.FetchConfig{})
	}
	if d.Dates == nil {
		d.Dates = dates.New()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}
