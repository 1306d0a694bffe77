package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	appTodo "github.com/todokit/backend/internal/application/todo"
	"github.com/todokit/backend/internal/domain/todo"
	"github.com/todokit/backend/internal/infrastructure/log"
	"github.com/todokit/backend/internal/interfaces/http/response"
)

// TodoHandler 待办事项处理器
type TodoHandler struct {
	service *appTodo.Service
	logger  *slog.Logger
}

// NewTodoHandler 创建待办事项处理器
func NewTodoHandler(service *appTodo.Service) *TodoHandler {
	return &TodoHandler{
		service: service,
		logger:  log.NewModuleLogger("http", "todo_handler"),
	}
}

// CreateTodoRequest 创建待办请求
type CreateTodoRequest struct {
	Title       string  `json:"title" binding:"required,min=1,max=200" example:"Buy milk"`
	Description *string `json:"description" example:"2 liters"`
	// Priority 缺省为 medium
	Priority string `json:"priority" binding:"omitempty,priority" enums:"low,medium,high"`
}

// UpdateTodoRequest 更新待办请求，缺省字段保持不变
type UpdateTodoRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Priority    *string `json:"priority" binding:"omitempty,priority" enums:"low,medium,high"`
	Completed   *bool   `json:"completed"`
}

// ListTodosQuery 列表查询参数
type ListTodosQuery struct {
	Skip      int     `form:"skip,default=0" binding:"min=0"`
	Limit     int     `form:"limit,default=100" binding:"min=1,max=1000"`
	Completed *bool   `form:"completed"`
	Priority  *string `form:"priority" binding:"omitempty,priority"`
	Search    *string `form:"search"`
	SortBy    string  `form:"sort_by,default=created_at" binding:"oneof=created_at updated_at title priority"`
	SortOrder string  `form:"sort_order,default=desc" binding:"oneof=asc desc"`
}

// DeleteCompletedResult 批量删除结果
type DeleteCompletedResult struct {
	Deleted int64 `json:"deleted"`
}

func (q ListTodosQuery) toDomain() todo.Query {
	out := todo.Query{
		Completed: q.Completed,
		Search:    q.Search,
		SortBy:    todo.SortField(q.SortBy),
		SortOrder: todo.SortOrder(q.SortOrder),
		Skip:      q.Skip,
		Limit:     q.Limit,
	}
	if q.Priority != nil {
		p := todo.Priority(*q.Priority)
		out.Priority = &p
	}
	return out
}

func (r UpdateTodoRequest) toPatch() todo.Patch {
	patch := todo.Patch{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
	}
	if r.Priority != nil {
		p := todo.Priority(*r.Priority)
		patch.Priority = &p
	}
	return patch
}

// Create 创建待办
// @Summary 创建待办
// @Tags 待办
// @Accept json
// @Produce json
// @Param body body CreateTodoRequest true "待办内容"
// @Success 201 {object} response.Response{data=appTodo.TodoDTO}
// @Failure 422 {object} response.ErrorResponse
// @Router /todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParam(c, err)
		return
	}

	item, err := h.service.Create(c.Request.Context(), appTodo.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    todo.Priority(req.Priority),
	})
	if err != nil {
		h.handleError(c, err, response.CodeTodoCreateFailed, "Failed to create todo")
		return
	}

	response.Created(c, appTodo.ToDTO(item))
}

// List 获取待办列表
// @Summary 获取待办列表（过滤、搜索、排序、分页）
// @Tags 待办
// @Produce json
// @Param skip query int false "跳过条数" default(0)
// @Param limit query int false "返回条数上限" default(100)
// @Param completed query bool false "按完成状态过滤"
// @Param priority query string false "按优先级过滤" Enums(low, medium, high)
// @Param search query string false "在标题和描述中搜索（不区分大小写）"
// @Param sort_by query string false "排序字段" Enums(created_at, updated_at, title, priority) default(created_at)
// @Param sort_order query string false "排序方向" Enums(asc, desc) default(desc)
// @Success 200 {object} response.Response{data=appTodo.ListDTO}
// @Failure 422 {object} response.ErrorResponse
// @Router /todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	var q ListTodosQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalidParam(c, err)
		return
	}

	res, err := h.service.List(c.Request.Context(), q.toDomain())
	if err != nil {
		h.handleError(c, err, response.CodeTodoListFailed, "Failed to list todos")
		return
	}

	response.Success(c, appTodo.ToListDTO(res))
}

// Get 获取单个待办
// @Summary 获取单个待办
// @Tags 待办
// @Produce json
// @Param id path int true "待办ID"
// @Success 200 {object} response.Response{data=appTodo.TodoDTO}
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /todos/{id} [get]
func (h *TodoHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, response.CodeTodoQueryFailed, "Failed to get todo")
		return
	}

	response.Success(c, appTodo.ToDTO(item))
}

// Update 部分更新待办
// @Summary 更新待办（只修改提供的字段）
// @Tags 待办
// @Accept json
// @Produce json
// @Param id path int true "待办ID"
// @Param body body UpdateTodoRequest true "更新内容"
// @Success 200 {object} response.Response{data=appTodo.TodoDTO}
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /todos/{id} [put]
// @Router /todos/{id} [patch]
func (h *TodoHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParam(c, err)
		return
	}

	item, err := h.service.Update(c.Request.Context(), id, req.toPatch())
	if err != nil {
		h.handleError(c, err, response.CodeTodoUpdateFailed, "Failed to update todo")
		return
	}

	response.Success(c, appTodo.ToDTO(item))
}

// Toggle 切换完成状态
// @Summary 切换完成状态
// @Tags 待办
// @Produce json
// @Param id path int true "待办ID"
// @Success 200 {object} response.Response{data=appTodo.TodoDTO}
// @Failure 404 {object} response.ErrorResponse
// @Router /todos/{id}/toggle [patch]
func (h *TodoHandler) Toggle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := h.service.Toggle(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, response.CodeTodoUpdateFailed, "Failed to toggle todo")
		return
	}

	response.Success(c, appTodo.ToDTO(item))
}

// Delete 删除待办
// @Summary 删除待办
// @Tags 待办
// @Produce json
// @Param id path int true "待办ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err, response.CodeTodoDeleteFailed, "Failed to delete todo")
		return
	}

	response.SuccessWithMessage(c, "Todo deleted successfully", nil)
}

// DeleteCompleted 删除所有已完成的待办
// @Summary 删除所有已完成的待办
// @Tags 待办
// @Produce json
// @Success 200 {object} response.Response{data=DeleteCompletedResult}
// @Router /todos/completed/all [delete]
func (h *TodoHandler) DeleteCompleted(c *gin.Context) {
	count, err := h.service.DeleteCompleted(c.Request.Context())
	if err != nil {
		h.handleError(c, err, response.CodeTodoClearFailed, "Failed to delete completed todos")
		return
	}

	response.SuccessWithMessage(c,
		fmt.Sprintf("Deleted %d completed todo(s)", count),
		DeleteCompletedResult{Deleted: count},
	)
}

// handleError 把应用层错误映射为 HTTP 响应
func (h *TodoHandler) handleError(c *gin.Context, err error, failCode int, failMsg string) {
	switch {
	case errors.Is(err, todo.ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeTodoNotFound, "Todo not found")
	case errors.Is(err, todo.ErrInvalidTitle),
		errors.Is(err, todo.ErrInvalidPriority),
		errors.Is(err, todo.ErrInvalidQuery):
		response.ErrorWithDetail(c, http.StatusUnprocessableEntity, response.CodeInvalidParam, "Validation failed", err.Error())
	default:
		log.FromContext(c.Request.Context(), h.logger).Error(failMsg, "error", err)
		response.Error(c, http.StatusInternalServerError, failCode, failMsg)
	}
}

// parseID 解析路径中的待办 ID，失败时已写入 422 响应
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithDetail(c, http.StatusUnprocessableEntity, response.CodeInvalidParam,
			"Validation failed", fmt.Sprintf("invalid todo id %q", c.Param("id")))
		return 0, false
	}
	c.Request = c.Request.WithContext(log.WithTodoID(c.Request.Context(), id))
	return id, true
}
