package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/todokit/backend/internal/infrastructure/config"
)

// Pinger 存储可用性检查
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler 根路径与健康检查
type SystemHandler struct {
	store   Pinger
	version string
}

// NewSystemHandler 创建系统处理器，store 通常是待办应用服务
func NewSystemHandler(store Pinger, cfg *config.Config) *SystemHandler {
	return &SystemHandler{store: store, version: cfg.App.Version}
}

// Root API 入口信息
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to Todo API",
		"version": h.version,
		"docs":    "/swagger/index.html",
	})
}

// Health 健康检查，存储不可用时返回 503
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
			"error":    err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}
