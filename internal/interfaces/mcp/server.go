package mcp

import (
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	appTodo "github.com/todokit/backend/internal/application/todo"
	"github.com/todokit/backend/internal/infrastructure/config"
	"github.com/todokit/backend/internal/infrastructure/log"
)

// MCPServer MCP 服务器，向 AI 助手暴露待办与计算器工具
type MCPServer struct {
	server  *mcp.Server
	handler http.Handler
	todos   *appTodo.Service
	logger  *slog.Logger
}

// NewServer 创建 MCP 服务器
func NewServer(todos *appTodo.Service, cfg *config.Config) *MCPServer {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "todokit",
			Version: cfg.App.Version,
		},
		nil, // 使用默认能力
	)

	s := &MCPServer{
		server: server,
		todos:  todos,
		logger: log.NewModuleLogger("mcp", "server"),
	}
	s.registerTodoTools()
	s.registerCalculatorTools()

	s.handler = mcp.NewSSEHandler(
		func(r *http.Request) *mcp.Server {
			// 所有会话共享同一个服务器实例
			return server
		},
		nil,
	)
	return s
}

// GetHandler 获取 HTTP Handler（挂载到 /mcp/sse）
func (s *MCPServer) GetHandler() http.Handler {
	return s.handler
}

// Server 底层 MCP 服务器
func (s *MCPServer) Server() *mcp.Server {
	return s.server
}
