package events

import (
	"time"

	"github.com/todokit/backend/internal/domain/todo"
)

// TodoEvent 待办变更事件
// 每次成功的变更操作之后发布
type TodoEvent struct {
	// EventType 事件类型（created/updated/toggled/deleted/cleared）
	EventType EventType
	// Todo 变更后的待办，删除与批量删除时为 nil
	Todo *todo.Todo
	// ID 被操作的待办 ID，批量删除时为 0
	ID int64
	// Count 批量删除的数量
	Count int64
	// EventTime 事件发生时间
	EventTime time.Time
}

// Type 实现 Event 接口
func (e *TodoEvent) Type() EventType {
	return e.EventType
}

// Timestamp 实现 Event 接口
func (e *TodoEvent) Timestamp() time.Time {
	return e.EventTime
}
