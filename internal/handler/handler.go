package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ai-pulse/config"
	"ai-pulse/internal/model"
	"ai-pulse/internal/service"
	"ai-pulse/internal/store"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 分页参数
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Handler struct {
	store  *store.Store
	status *service.StatusService
	logger *slog.Logger
}

func NewHandler(st *store.Store, status *service.StatusService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: st, status: status, logger: logger.With("component", "api")}
}

// NewRouter 创建gin引擎并注册全部路由
func NewRouter(h *Handler, mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger(), cors.New(corsConfig()))
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/summaries/:timeframe", h.GetSummary)
	r.GET("/articles/:timeframe", h.ListArticles)
	r.GET("/status", h.GetStatus)
	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// ===== Summary相关 =====

// GetSummary 某个时间窗口最新的趋势总结
func (h *Handler) GetSummary(c *gin.Context) {
	timeframe := c.Param("timeframe")
	if _, ok := config.TimeframeDays(timeframe); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid timeframe", "timeframe": timeframe})
		return
	}

	summary, err := h.store.LatestTrendSummary(c.Request.Context(), timeframe)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No summary found", "timeframe": timeframe})
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary.View())
}

// ===== Article相关 =====

// ListArticles 时间窗口内的文章, 最新的在前
func (h *Handler) ListArticles(c *gin.Context) {
	days, ok := config.TimeframeDays(c.Param("timeframe"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid timeframe"})
		return
	}

	page := clamp(queryInt(c, "page", 1), 1, 1<<20)
	limit := clamp(queryInt(c, "limit", defaultPageSize), 1, maxPageSize)

	cutoff := time.Now().AddDate(0, 0, -days)
	articles, err := h.store.ListArticles(c.Request.Context(), cutoff, page, limit)
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Views(articles))
}

// ===== Status相关 =====

func (h *Handler) GetStatus(c *gin.Context) {
	status, err := h.status.GetSystemStatus(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) serverError(c *gin.Context, err error) {
	h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).String(),
		)
	}
}

// corsConfig 允许任意来源, 前端单独部署
func corsConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:    []string{"*"},
		MaxAge:          12 * time.Hour,
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
