package todo

import "context"

// Repository 待办事项仓储接口
//
// 不存在的 ID 不视为错误：查找返回 nil，删除/替换返回 false。
type Repository interface {
	// Insert 插入新待办，分配 ID 并设置 CreatedAt，返回新 ID
	Insert(ctx context.Context, item *Todo) (int64, error)

	// FindByID 根据 ID 查找待办事项，不存在返回 nil, nil
	FindByID(ctx context.Context, id int64) (*Todo, error)

	// FindAll 获取所有待办事项（按插入顺序）
	FindAll(ctx context.Context) ([]*Todo, error)

	// Replace 整体替换已有待办并刷新 UpdatedAt
	Replace(ctx context.Context, id int64, item *Todo) (bool, error)

	// Delete 删除待办事项
	Delete(ctx context.Context, id int64) (bool, error)

	// DeleteCompleted 删除所有已完成的待办事项，返回删除数量
	DeleteCompleted(ctx context.Context) (int64, error)

	// Query 过滤、搜索、排序、分页，并返回分页前的匹配总数
	Query(ctx context.Context, q Query) ([]*Todo, int, error)

	// Ping 检查存储是否可用
	Ping(ctx context.Context) error
}
