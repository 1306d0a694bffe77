package todo

import (
	"time"

	"github.com/todokit/backend/internal/domain/todo"
)

// CreateInput 创建待办的输入
type CreateInput struct {
	Title       string
	Description *string
	// Priority 为空时使用 medium
	Priority todo.Priority
}

// ListResult 列表查询结果
type ListResult struct {
	// Total 分页前的匹配总数
	Total int
	Items []*todo.Todo
}

// copy 合并查询的结果被多个调用方共享，各自拿到独立副本
func (r *ListResult) copy() *ListResult {
	out := &ListResult{Total: r.Total, Items: make([]*todo.Todo, 0, len(r.Items))}
	for _, item := range r.Items {
		out.Items = append(out.Items, item.Clone())
	}
	return out
}

// TodoDTO 待办的对外表示（HTTP、WebSocket、MCP 共用）
type TodoDTO struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Priority    string     `json:"priority"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// ListDTO 列表响应
type ListDTO struct {
	Total int        `json:"total"`
	Items []*TodoDTO `json:"items"`
}

// ToDTO 转换为对外表示，nil 返回 nil
func ToDTO(item *todo.Todo) *TodoDTO {
	if item == nil {
		return nil
	}
	c := item.Clone()
	return &TodoDTO{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Priority:    string(c.Priority),
		Completed:   c.Completed,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToListDTO 转换列表结果，items 永远不是 null
func ToListDTO(res *ListResult) *ListDTO {
	out := &ListDTO{Items: make([]*TodoDTO, 0, len(res.Items))}
	out.Total = res.Total
	for _, item := range res.Items {
		out.Items = append(out.Items, ToDTO(item))
	}
	return out
}
