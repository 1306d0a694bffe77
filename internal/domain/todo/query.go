package todo

import (
	"sort"
	"strings"
)

// 分页限制
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// SortField 排序字段
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
	SortByTitle     SortField = "title"
	SortByPriority  SortField = "priority"
)

// Valid 是否为支持的排序字段
func (f SortField) Valid() bool {
	switch f {
	case SortByCreatedAt, SortByUpdatedAt, SortByTitle, SortByPriority:
		return true
	}
	return false
}

// SortOrder 排序方向
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Valid 是否为支持的排序方向
func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// Query 集合查询：过滤 + 搜索 + 排序 + 分页
type Query struct {
	Completed *bool
	Priority  *Priority
	Search    *string
	SortBy    SortField
	SortOrder SortOrder
	Skip      int
	Limit     int
}

// DefaultQuery 返回默认查询（created_at 降序，前 100 条）
func DefaultQuery() Query {
	return Query{
		SortBy:    SortByCreatedAt,
		SortOrder: SortDesc,
		Limit:     DefaultLimit,
	}
}

// Normalize 补齐零值字段为默认值
func (q Query) Normalize() Query {
	if q.SortBy == "" {
		q.SortBy = SortByCreatedAt
	}
	if q.SortOrder == "" {
		q.SortOrder = SortDesc
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	return q
}

// Validate 校验查询参数
func (q Query) Validate() error {
	if q.Skip < 0 || q.Limit < 1 || q.Limit > MaxLimit {
		return ErrInvalidQuery
	}
	if !q.SortBy.Valid() || !q.SortOrder.Valid() {
		return ErrInvalidQuery
	}
	if q.Priority != nil && !q.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

// SearchTerm 返回搜索词，未设置时为空
func (q Query) SearchTerm() string {
	if q.Search == nil {
		return ""
	}
	return *q.Search
}

// Matches 判断单条记录是否满足过滤和搜索条件
func (q Query) Matches(t *Todo) bool {
	if q.Completed != nil && t.Completed != *q.Completed {
		return false
	}
	if q.Priority != nil && t.Priority != *q.Priority {
		return false
	}
	term := q.SearchTerm()
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(t.Title), term) {
		return true
	}
	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), term)
}

// Apply 在快照上执行查询，返回当前页与分页前的匹配总数
//
// 输入切片不会被修改。
func Apply(items []*Todo, q Query) ([]*Todo, int) {
	q = q.Normalize()

	matched := make([]*Todo, 0, len(items))
	for _, t := range items {
		if q.Matches(t) {
			matched = append(matched, t)
		}
	}
	total := len(matched)

	less := lessFunc(q.SortBy)
	desc := q.SortOrder == SortDesc
	sort.SliceStable(matched, func(i, j int) bool {
		if desc {
			return less(matched[j], matched[i])
		}
		return less(matched[i], matched[j])
	})

	if q.Skip >= total {
		return []*Todo{}, total
	}
	end := total
	if q.Limit > 0 && q.Skip+q.Limit < end {
		end = q.Skip + q.Limit
	}
	return matched[q.Skip:end], total
}

// lessFunc 返回严格升序比较函数，相等时按 ID 决定
func lessFunc(field SortField) func(a, b *Todo) bool {
	var cmp func(a, b *Todo) int
	switch field {
	case SortByTitle:
		cmp = func(a, b *Todo) int { return strings.Compare(a.Title, b.Title) }
	case SortByPriority:
		cmp = func(a, b *Todo) int { return a.Priority.Rank() - b.Priority.Rank() }
	case SortByUpdatedAt:
		cmp = compareUpdatedAt
	default:
		cmp = func(a, b *Todo) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
	return func(a, b *Todo) bool {
		if c := cmp(a, b); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	}
}

// 未设置 updated_at 的记录排在最前
func compareUpdatedAt(a, b *Todo) int {
	switch {
	case a.UpdatedAt == nil && b.UpdatedAt == nil:
		return 0
	case a.UpdatedAt == nil:
		return -1
	case b.UpdatedAt == nil:
		return 1
	}
	return a.UpdatedAt.Compare(*b.UpdatedAt)
}
