package todo

import (
	"time"
	"unicode/utf8"
)

// MaxTitleLength 标题最大长度（按字符计）
const MaxTitleLength = 200

// Priority 优先级
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities 所有合法优先级，按 rank 升序
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid 是否为合法优先级
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank 排序权重：low < medium < high
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	}
	return -1
}

// ParsePriority 解析优先级，空字符串返回默认值 medium，区分大小写
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityMedium, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// Todo 待办事项实体
type Todo struct {
	ID          int64      // 存储分配，不可变
	Title       string     // 1-200 字符
	Description *string    // 可选描述
	Priority    Priority   // low / medium / high
	Completed   bool       // 是否完成
	CreatedAt   time.Time  // 创建时间
	UpdatedAt   *time.Time // 最近一次修改时间（可选）
}

// Toggle 切换完成状态
func (t *Todo) Toggle() {
	t.Completed = !t.Completed
}

// Touch 刷新修改时间，保证不早于创建时间
func (t *Todo) Touch(now time.Time) {
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	t.UpdatedAt = &now
}

// Clone 深拷贝，存储层返回副本，避免调用方持有内部引用
func (t *Todo) Clone() *Todo {
	if t == nil {
		return nil
	}
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.UpdatedAt != nil {
		u := *t.UpdatedAt
		c.UpdatedAt = &u
	}
	return &c
}

// Validate 校验实体不变量
func (t *Todo) Validate() error {
	if err := ValidateTitle(t.Title); err != nil {
		return err
	}
	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

// ValidateTitle 校验标题：非空且不超过 MaxTitleLength 个字符
func ValidateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n == 0 || n > MaxTitleLength {
		return ErrInvalidTitle
	}
	return nil
}

// Patch 部分更新，nil 字段表示不修改
type Patch struct {
	Title       *string
	Description *string
	Priority    *Priority
	Completed   *bool
}

// IsEmpty 是否没有任何字段
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil && p.Completed == nil
}

// Validate 校验已提供的字段
func (p Patch) Validate() error {
	if p.Title != nil {
		if err := ValidateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

// ApplyTo 逐字段应用到实体
func (p Patch) ApplyTo(t *Todo) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		d := *p.Description
		t.Description = &d
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
