package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appTodo "github.com/todokit/backend/internal/application/todo"
	"github.com/todokit/backend/internal/infrastructure/eventbus"
	"github.com/todokit/backend/internal/infrastructure/storage"
	"github.com/todokit/backend/internal/infrastructure/websocket"
)

func TestStreamHandler_BroadcastsMutations(t *testing.T) {
	bus := eventbus.NewEventBus()
	defer bus.Close()
	hub := websocket.NewHub()
	hub.Start()
	defer hub.Stop()

	stream, unsubscribe := NewStreamHandler(hub, bus)
	defer unsubscribe()
	todos := NewTodoHandler(appTodo.NewService(storage.NewMemoryTodoRepository(), bus))

	router := gin.New()
	api := router.Group("/api/v1")
	api.GET("/ws", stream.Connect)
	registerTodoRoutes(api, todos)

	srv := httptest.NewServer(router)
	defer srv.Close()

	conn, _, err := gorilla.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	created := createTodo(t, router, map[string]any{"title": "Live"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg StreamMessage
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "todo.created", msg.Type)
	assert.Equal(t, created.ID, msg.ID)
	require.NotNil(t, msg.Todo)
	assert.Equal(t, "Live", msg.Todo.Title)
	assert.False(t, msg.Timestamp.IsZero())
}
