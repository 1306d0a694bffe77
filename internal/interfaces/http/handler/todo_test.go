package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appTodo "github.com/todokit/backend/internal/application/todo"
	"github.com/todokit/backend/internal/infrastructure/eventbus"
	"github.com/todokit/backend/internal/infrastructure/storage"
	"github.com/todokit/backend/internal/interfaces/http/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Detail  string          `json:"detail"`
}

// setupTodoRouter 创建测试路由（内存存储）
func setupTodoRouter(t *testing.T) *gin.Engine {
	t.Helper()
	bus := eventbus.NewEventBus()
	t.Cleanup(bus.Close)

	h := NewTodoHandler(appTodo.NewService(storage.NewMemoryTodoRepository(), bus))
	router := gin.New()
	api := router.Group("/api/v1")
	registerTodoRoutes(api, h)
	return router
}

func registerTodoRoutes(api *gin.RouterGroup, h *TodoHandler) {
	todos := api.Group("/todos")
	todos.POST("", h.Create)
	todos.GET("", h.List)
	todos.DELETE("/completed/all", h.DeleteCompleted)
	todos.GET("/:id", h.Get)
	todos.PUT("/:id", h.Update)
	todos.PATCH("/:id", h.Update)
	todos.PATCH("/:id/toggle", h.Toggle)
	todos.DELETE("/:id", h.Delete)
}

func do(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func decodeTodo(t *testing.T, env envelope) appTodo.TodoDTO {
	t.Helper()
	var dto appTodo.TodoDTO
	require.NoError(t, json.Unmarshal(env.Data, &dto))
	return dto
}

func decodeList(t *testing.T, env envelope) appTodo.ListDTO {
	t.Helper()
	var dto appTodo.ListDTO
	require.NoError(t, json.Unmarshal(env.Data, &dto))
	return dto
}

func createTodo(t *testing.T, router *gin.Engine, body map[string]any) appTodo.TodoDTO {
	t.Helper()
	w, env := do(t, router, http.MethodPost, "/api/v1/todos", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeTodo(t, env)
}

func TestTodoHandler_Create(t *testing.T) {
	router := setupTodoRouter(t)

	w, env := do(t, router, http.MethodPost, "/api/v1/todos", map[string]any{
		"title":       "Test Todo",
		"description": "This is a test todo",
		"priority":    "high",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, response.CodeOK, env.Code)

	dto := decodeTodo(t, env)
	assert.Positive(t, dto.ID)
	assert.Equal(t, "Test Todo", dto.Title)
	require.NotNil(t, dto.Description)
	assert.Equal(t, "This is a test todo", *dto.Description)
	assert.Equal(t, "high", dto.Priority)
	assert.False(t, dto.Completed)
	assert.False(t, dto.CreatedAt.IsZero())
	assert.Nil(t, dto.UpdatedAt)

	// updated_at 以 null 输出
	assert.Contains(t, string(env.Data), `"updated_at":null`)
}

func TestTodoHandler_CreateDefaultsPriority(t *testing.T) {
	router := setupTodoRouter(t)

	dto := createTodo(t, router, map[string]any{"title": "Minimal"})
	assert.Equal(t, "medium", dto.Priority)
	assert.Nil(t, dto.Description)
}

func TestTodoHandler_CreateValidation(t *testing.T) {
	router := setupTodoRouter(t)

	tests := []struct {
		name   string
		body   any
		detail string
	}{
		{"缺少标题", map[string]any{"description": "no title"}, "title"},
		{"空标题", map[string]any{"title": ""}, "title"},
		{"标题过长", map[string]any{"title": strings.Repeat("x", 201)}, "title"},
		{"非法优先级", map[string]any{"title": "x", "priority": "urgent"}, "priority"},
		{"大写优先级", map[string]any{"title": "x", "priority": "HIGH"}, "priority"},
		{"非法 JSON", `{"title":`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, router, http.MethodPost, "/api/v1/todos", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Equal(t, response.CodeInvalidParam, env.Code)
			assert.Contains(t, env.Detail, tt.detail)
		})
	}

	_, env := do(t, router, http.MethodGet, "/api/v1/todos", nil)
	assert.Equal(t, 0, decodeList(t, env).Total, "rejected creates must not be stored")
}

func TestTodoHandler_TitleLengthCountsCharacters(t *testing.T) {
	router := setupTodoRouter(t)

	dto := createTodo(t, router, map[string]any{"title": strings.Repeat("字", 200)})
	assert.Equal(t, 200, len([]rune(dto.Title)))
}

func TestTodoHandler_GetNotFound(t *testing.T) {
	router := setupTodoRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/todos/999"},
		{http.MethodPut, "/api/v1/todos/999"},
		{http.MethodPatch, "/api/v1/todos/999/toggle"},
		{http.MethodDelete, "/api/v1/todos/999"},
	} {
		var body any
		if tc.method == http.MethodPut {
			body = map[string]any{"title": "x"}
		}
		w, env := do(t, router, tc.method, tc.path, body)
		assert.Equal(t, http.StatusNotFound, w.Code, tc.method+" "+tc.path)
		assert.Equal(t, response.CodeTodoNotFound, env.Code)
		assert.Equal(t, "Todo not found", env.Message)
	}
}

func TestTodoHandler_InvalidID(t *testing.T) {
	router := setupTodoRouter(t)

	w, env := do(t, router, http.MethodGet, "/api/v1/todos/abc", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, response.CodeInvalidParam, env.Code)
	assert.Contains(t, env.Detail, "abc")
}

func TestTodoHandler_Get(t *testing.T) {
	router := setupTodoRouter(t)
	created := createTodo(t, router, map[string]any{"title": "Fetch me"})

	w, env := do(t, router, http.MethodGet, fmt.Sprintf("/api/v1/todos/%d", created.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	got := decodeTodo(t, env)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Fetch me", got.Title)
}

func TestTodoHandler_UpdatePartial(t *testing.T) {
	router := setupTodoRouter(t)
	created := createTodo(t, router, map[string]any{"title": "Original", "description": "keep", "priority": "low"})
	path := fmt.Sprintf("/api/v1/todos/%d", created.ID)

	w, env := do(t, router, http.MethodPut, path, map[string]any{"title": "Updated Todo", "completed": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decodeTodo(t, env)
	assert.Equal(t, "Updated Todo", got.Title)
	assert.True(t, got.Completed)
	require.NotNil(t, got.Description)
	assert.Equal(t, "keep", *got.Description)
	assert.Equal(t, "low", got.Priority)
	require.NotNil(t, got.UpdatedAt)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	// PATCH 为 PUT 的别名
	w, env = do(t, router, http.MethodPatch, path, map[string]any{"priority": "high"})
	require.Equal(t, http.StatusOK, w.Code)
	got = decodeTodo(t, env)
	assert.Equal(t, "high", got.Priority)
	assert.Equal(t, "Updated Todo", got.Title)

	w, env = do(t, router, http.MethodPut, path, map[string]any{"title": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Detail, "title")

	w, _ = do(t, router, http.MethodPut, path, map[string]any{"priority": "critical"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestTodoHandler_Toggle(t *testing.T) {
	router := setupTodoRouter(t)
	created := createTodo(t, router, map[string]any{"title": "Toggle"})
	path := fmt.Sprintf("/api/v1/todos/%d/toggle", created.ID)

	w, env := do(t, router, http.MethodPatch, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeTodo(t, env).Completed)

	_, env = do(t, router, http.MethodPatch, path, nil)
	assert.False(t, decodeTodo(t, env).Completed)
}

func TestTodoHandler_Delete(t *testing.T) {
	router := setupTodoRouter(t)
	created := createTodo(t, router, map[string]any{"title": "Delete me"})
	path := fmt.Sprintf("/api/v1/todos/%d", created.ID)

	w, env := do(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Todo deleted successfully", env.Message)

	w, _ = do(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTodoHandler_DeleteCompleted(t *testing.T) {
	router := setupTodoRouter(t)
	done := createTodo(t, router, map[string]any{"title": "Finish report"})
	createTodo(t, router, map[string]any{"title": "Keep me"})

	w, _ := do(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/todos/%d/toggle", done.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := do(t, router, http.MethodDelete, "/api/v1/todos/completed/all", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Deleted 1 completed todo(s)", env.Message)
	assert.JSONEq(t, `{"deleted":1}`, string(env.Data))

	_, env = do(t, router, http.MethodDelete, "/api/v1/todos/completed/all", nil)
	assert.Equal(t, "Deleted 0 completed todo(s)", env.Message)

	w, _ = do(t, router, http.MethodGet, fmt.Sprintf("/api/v1/todos/%d", done.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTodoHandler_List(t *testing.T) {
	router := setupTodoRouter(t)
	createTodo(t, router, map[string]any{"title": "First Todo", "description": "First test todo", "priority": "high"})
	second := createTodo(t, router, map[string]any{"title": "Second Todo", "description": "Second test todo", "priority": "medium"})
	createTodo(t, router, map[string]any{"title": "Third Todo", "description": "Third test todo", "priority": "low"})

	w, _ := do(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/todos/%d/toggle", second.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	titles := func(list appTodo.ListDTO) []string {
		out := make([]string, 0, len(list.Items))
		for _, item := range list.Items {
			out = append(out, item.Title)
		}
		return out
	}

	tests := []struct {
		name  string
		query string
		total int
		want  []string
	}{
		{"默认按创建时间降序", "", 3, []string{"Third Todo", "Second Todo", "First Todo"}},
		{"搜索", "?search=First", 1, []string{"First Todo"}},
		{"搜索不区分大小写", "?search=SECOND%20TEST", 1, []string{"Second Todo"}},
		{"标题升序", "?sort_by=title&sort_order=asc", 3, []string{"First Todo", "Second Todo", "Third Todo"}},
		{"优先级降序", "?sort_by=priority", 3, []string{"First Todo", "Second Todo", "Third Todo"}},
		{"按完成状态过滤", "?completed=false&sort_order=asc", 2, []string{"First Todo", "Third Todo"}},
		{"按优先级过滤", "?priority=low", 1, []string{"Third Todo"}},
		{"分页", "?sort_order=asc&skip=1&limit=1", 3, []string{"Second Todo"}},
		{"跳过超过总数", "?skip=10", 3, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, router, http.MethodGet, "/api/v1/todos"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			list := decodeList(t, env)
			assert.Equal(t, tt.total, list.Total)
			assert.Equal(t, tt.want, titles(list))
		})
	}
}

func TestTodoHandler_ListEmptyItemsIsArray(t *testing.T) {
	router := setupTodoRouter(t)

	_, env := do(t, router, http.MethodGet, "/api/v1/todos", nil)
	assert.JSONEq(t, `{"total":0,"items":[]}`, string(env.Data))
}

func TestTodoHandler_ListValidation(t *testing.T) {
	router := setupTodoRouter(t)

	for _, query := range []string{
		"?limit=0",
		"?limit=1001",
		"?skip=-1",
		"?sort_by=due_date",
		"?sort_order=up",
		"?priority=urgent",
		"?completed=maybe",
	} {
		w, env := do(t, router, http.MethodGet, "/api/v1/todos"+query, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, query)
		assert.Equal(t, response.CodeInvalidParam, env.Code, query)
	}
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "sort_order", toSnake("SortOrder"))
	assert.Equal(t, "title", toSnake("Title"))
}
