package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	appTodo "github.com/todokit/backend/internal/application/todo"
	"github.com/todokit/backend/internal/domain/events"
	"github.com/todokit/backend/internal/infrastructure/log"
	"github.com/todokit/backend/internal/infrastructure/websocket"
)

// StreamMessage 推送给 WebSocket 客户端的待办变更
type StreamMessage struct {
	Type      string           `json:"type"`
	Todo      *appTodo.TodoDTO `json:"todo,omitempty"`
	ID        int64            `json:"id,omitempty"`
	Count     int64            `json:"count,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// StreamHandler 待办变更实时推送
type StreamHandler struct {
	hub         *websocket.Hub
	unsubscribe func()
	logger      *slog.Logger
}

// NewStreamHandler 订阅待办事件并转发到 Hub
func NewStreamHandler(hub *websocket.Hub, bus events.EventBus) (*StreamHandler, func()) {
	h := &StreamHandler{
		hub:    hub,
		logger: log.NewModuleLogger("http", "stream_handler"),
	}
	h.unsubscribe = bus.SubscribeMultiple(events.TodoEventTypes, h)
	return h, h.unsubscribe
}

// HandleEvent 实现 events.Handler
func (h *StreamHandler) HandleEvent(event events.Event) error {
	e, ok := event.(*events.TodoEvent)
	if !ok {
		return nil
	}
	return h.hub.Broadcast(StreamMessage{
		Type:      string(e.EventType),
		Todo:      appTodo.ToDTO(e.Todo),
		ID:        e.ID,
		Count:     e.Count,
		Timestamp: e.EventTime,
	})
}

// Connect 升级为 WebSocket 连接
// @Summary 订阅待办变更（WebSocket）
// @Tags 待办
// @Success 101
// @Router /ws [get]
func (h *StreamHandler) Connect(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request)
}

// 编译时检查接口实现
var _ events.Handler = (*StreamHandler)(nil)
