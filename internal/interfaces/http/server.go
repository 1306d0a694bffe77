package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/todokit/backend/internal/infrastructure/config"
	"github.com/todokit/backend/internal/infrastructure/log"
	"github.com/todokit/backend/internal/infrastructure/metrics"
	"github.com/todokit/backend/internal/interfaces/http/handler"
	"github.com/todokit/backend/internal/interfaces/http/middleware"
	"github.com/todokit/backend/internal/interfaces/mcp"

	_ "github.com/todokit/backend/docs" // Swagger docs
)

// HTTPServer HTTP 服务器
type HTTPServer struct {
	router *gin.Engine
	cfg    config.ServerConfig
	mu     sync.Mutex
	server *http.Server
	logger *slog.Logger
}

// NewServer 创建 HTTP 服务器并注册路由
func NewServer(
	cfg *config.Config,
	todoHandler *handler.TodoHandler,
	streamHandler *handler.StreamHandler,
	systemHandler *handler.SystemHandler,
	mcpServer *mcp.MCPServer,
	m *metrics.Metrics,
) *HTTPServer {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(),
		middleware.Metrics(m),
		cors.New(cors.Config{
			AllowOrigins:  cfg.CORS.AllowOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
			ExposeHeaders: []string{"Content-Length", "Content-Type", middleware.HeaderRequestID},
			MaxAge:        12 * time.Hour,
		}),
	)

	router.GET("/", systemHandler.Root)
	router.GET("/health", systemHandler.Health)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	// 注册路由
	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	api.Use(middleware.EnsureUTF8Body())
	{
		todos := api.Group("/todos")
		{
			todos.POST("", todoHandler.Create)
			todos.GET("", todoHandler.List)
			todos.DELETE("/completed/all", todoHandler.DeleteCompleted)
			todos.GET("/:id", todoHandler.Get)
			todos.PUT("/:id", todoHandler.Update)
			todos.PATCH("/:id", todoHandler.Update)
			todos.PATCH("/:id/toggle", todoHandler.Toggle)
			todos.DELETE("/:id", todoHandler.Delete)
		}

		// 待办变更实时推送
		api.GET("/ws", streamHandler.Connect)
	}

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// MCP SSE 端点
	if mcpServer != nil {
		router.Any("/mcp/sse", gin.WrapH(mcpServer.GetHandler()))
	}

	return &HTTPServer{
		router: router,
		cfg:    cfg.Server,
		logger: log.NewModuleLogger("http", "server"),
	}
}

// Handler 返回路由（测试使用）
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Serve 在已占用的 listener 上提供服务，正常关闭时返回 nil
func (s *HTTPServer) Serve(listener net.Listener) error {
	server := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
	s.mu.Lock()
	s.server = server
	s.mu.Unlock()

	s.logger.Info("HTTP server starting",
		"addr", listener.Addr().String(),
	)

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Start 监听配置端口并提供服务
func (s *HTTPServer) Start() error {
	listener, err := net.Listen("tcp", s.cfg.HTTPPort)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Shutdown 优雅关闭
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()

	if server != nil {
		return server.Shutdown(ctx)
	}
	return nil
}

// Stop 按配置的超时停止服务器
func (s *HTTPServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}
