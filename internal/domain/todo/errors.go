package todo

import "errors"

var (
	// ErrNotFound 待办不存在
	ErrNotFound = errors.New("todo not found")
	// ErrInvalidTitle 标题为空或超长
	ErrInvalidTitle = errors.New("title must be between 1 and 200 characters")
	// ErrInvalidPriority 优先级不合法
	ErrInvalidPriority = errors.New("priority must be one of low, medium, high")
	// ErrInvalidQuery 查询参数不合法
	ErrInvalidQuery = errors.New("invalid todo query")
)
