package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 数据源类型
const (
	KindFeed = "feed"
	KindHTML = "html"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
	Fetch      FetchConfig      `yaml:"fetch"`
	LLM        LLMConfig        `yaml:"llm"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Cron       CronConfig       `yaml:"cron"`
	Export     ExportConfig     `yaml:"export"`
	Sources    []SourceConfig   `yaml:"sources"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// FetchConfig 抓取源站时使用的HTTP参数
type FetchConfig struct {
	UserAgent       string        `yaml:"user_agent"`
	Timeout         time.Duration `yaml:"timeout"`
	MinHostInterval time.Duration `yaml:"min_host_interval"` // 同一host两次请求的最小间隔, 0为不限速
}

// LLMConfig OpenAI兼容接口(含Ollama的/v1)
type LLMConfig struct {
	ApiURL        string        `yaml:"api_url"`
	ApiKey        string        `yaml:"api_key"`
	Model         string        `yaml:"model"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxRetries    int           `yaml:"max_retries"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	Prompts       PromptConfig  `yaml:"prompts"`
}

type PromptConfig struct {
	ArticleSummary string `yaml:"article_summary"`
	Trends         string `yaml:"trends"`
}

type SummarizerConfig struct {
	PrioritySource    string `yaml:"priority_source"`
	BatchSize         int    `yaml:"batch_size"`
	ContentLimit      int    `yaml:"content_limit"`
	TrendArticleLimit int    `yaml:"trend_article_limit"`
}

type CronConfig struct {
	Ingest    string `yaml:"ingest"`
	Summarize string `yaml:"summarize"`
	Trends    string `yaml:"trends"`
	TrendDays []int  `yaml:"trend_days"`
}

type ExportConfig struct {
	Path string   `yaml:"path"`
	S3   S3Config `yaml:"s3"`
}

// S3Config 为空bucket时不上传
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Key          string `yaml:"key"`
	Region       string `yaml:"region"`
	Profile      string `yaml:"profile"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// SourceConfig 单个内容源
type SourceConfig struct {
	Name     string            `yaml:"name"`
	Endpoint string            `yaml:"endpoint"`
	Kind     string            `yaml:"kind"`
	Options  map[string]string `yaml:"options"`
}

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const defaultArticlePrompt = "Summarize this news in exactly one concise sentence. Do not use 'Here is a summary' or similar intro. Just the sentence."

const defaultTrendsPrompt = `Analyze the following AI news articles (IDs are in brackets).
Group them into 2-3 major trends.

Return ONLY a valid JSON object with this structure:
{
    "trends": [
        {
            "name": "Short Headline",
            "summary": "Concise summary of the trend.",
            "article_ids": [1, 2]
        }
    ]
}`

// Default 默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Mode: "release",
		},
		Database: DatabaseConfig{
			Path: "data/ai-pulse.db",
		},
		Log: LogConfig{Level: "info"},
		Fetch: FetchConfig{
			UserAgent:       browserUserAgent,
			Timeout:         10 * time.Second,
			MinHostInterval: 500 * time.Millisecond,
		},
		LLM: LLMConfig{
			ApiURL:        "http://localhost:11434/v1",
			Model:         "qwen2.5:0.5b-instruct",
			Timeout:       2 * time.Minute,
			MaxRetries:    3,
			RetryInterval: 2 * time.Second,
			Prompts: PromptConfig{
				ArticleSummary: defaultArticlePrompt,
				Trends:         defaultTrendsPrompt,
			},
		},
		Summarizer: SummarizerConfig{
			PrioritySource:    "Anthropic",
			BatchSize:         50,
			ContentLimit:      1000,
			TrendArticleLimit: 50,
		},
		Cron: CronConfig{
			Ingest:    "0 * * * *",  // 每小时
			Summarize: "15 * * * *", // 抓取后15分钟
			Trends:    "30 6 * * *", // 每天一次
			TrendDays: []int{30, 365},
		},
		Export: ExportConfig{
			Path: "frontend/public/data.json",
			S3:   S3Config{Key: "data.json"},
		},
		Sources: DefaultSources(),
	}
}

// DefaultSources 内置的AI公司博客
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{Name: "OpenAI", Endpoint: "https://openai.com/blog/rss.xml", Kind: KindFeed},
		{Name: "Anthropic", Endpoint: "https://raw.githubusercontent.com/Olshansk/rss-feeds/main/feeds/feed_anthropic.xml", Kind: KindFeed},
		{Name: "Google DeepMind", Endpoint: "https://deepmind.google/blog/rss.xml", Kind: KindFeed},
		{Name: "Meta AI", Endpoint: "https://engineering.fb.com/feed/", Kind: KindFeed},
		{Name: "Anthropic", Endpoint: "https://www.anthropic.com/news", Kind: KindHTML},
	}
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	// .env 不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn(".env file not loaded", "error", err)
	}

	cfg := Default()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config %s: %w", configPath, err)
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", configPath, err)
			}
		} else {
			slog.Info("config file not found, using defaults", "path", configPath)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// 环境变量覆盖配置
func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		c.Database.Path = dbPath
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if v := os.Getenv("LLM_API_URL"); v != "" {
		c.LLM.ApiURL = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.ApiKey = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("EXPORT_PATH"); v != "" {
		c.Export.Path = v
	}
	if v := os.Getenv("EXPORT_S3_BUCKET"); v != "" {
		c.Export.S3.Bucket = v
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	var errs []error
	for i, src := range c.Sources {
		if strings.TrimSpace(src.Name) == "" {
			errs = append(errs, fmt.Errorf("sources[%d]: name is required", i))
		}
		if strings.TrimSpace(src.Endpoint) == "" {
			errs = append(errs, fmt.Errorf("sources[%d]: endpoint is required", i))
		}
		if src.Kind != KindFeed && src.Kind != KindHTML {
			errs = append(errs, fmt.Errorf("sources[%d]: unknown kind %q", i, src.Kind))
		}
	}
	if c.Summarizer.BatchSize <= 0 {
		errs = append(errs, errors.New("summarizer.batch_size must be positive"))
	}
	if c.Summarizer.ContentLimit <= 0 {
		errs = append(errs, errors.New("summarizer.content_limit must be positive"))
	}
	if c.Summarizer.TrendArticleLimit <= 0 {
		errs = append(errs, errors.New("summarizer.trend_article_limit must be positive"))
	}
	for _, d := range c.Cron.TrendDays {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("cron.trend_days: invalid value %d", d))
		}
	}
	return errors.Join(errs...)
}

// GetServerAddress 获取服务器监听地址
func (c *Config) GetServerAddress() string {
	// 如果端口是纯数字,加上冒号前缀
	if _, err := strconv.Atoi(c.Server.Port); err == nil {
		return ":" + c.Server.Port
	}
	return c.Server.Port
}
