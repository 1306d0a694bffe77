package interfaces

import (
	"github.com/google/wire"
	"github.com/todokit/backend/internal/interfaces/http"
	"github.com/todokit/backend/internal/interfaces/mcp"
)

// 对外暴露的两个入口：REST/WebSocket 与 MCP（挂在同一个 HTTP 监听上）
type (
	HTTPServer = http.HTTPServer
	MCPServer  = mcp.MCPServer
)

// ProviderSet 接口层
var ProviderSet = wire.NewSet(
	http.ProviderSet,
	mcp.ProviderSet,
)
