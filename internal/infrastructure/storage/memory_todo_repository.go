package storage

import (
	"context"
	"sync"
	"time"

	"github.com/todokit/backend/internal/domain/todo"
)

// memoryTodoRepository 进程内待办仓储，查询走领域查询引擎
type memoryTodoRepository struct {
	mu     sync.RWMutex
	items  map[int64]*todo.Todo
	order  []int64 // 插入顺序
	nextID int64
	now    func() time.Time
}

// NewMemoryTodoRepository 创建内存仓储实例
func NewMemoryTodoRepository() todo.Repository {
	return &memoryTodoRepository{
		items:  make(map[int64]*todo.Todo),
		nextID: 1,
		now:    storeNow,
	}
}

// Insert 插入待办事项，ID 单调递增且不复用
func (r *memoryTodoRepository) Insert(_ context.Context, item *todo.Todo) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.ID = r.nextID
	item.CreatedAt = r.now()
	item.UpdatedAt = nil
	r.nextID++

	r.items[item.ID] = item.Clone()
	r.order = append(r.order, item.ID)
	return item.ID, nil
}

// FindByID 根据 ID 查找待办事项
func (r *memoryTodoRepository) FindByID(_ context.Context, id int64) (*todo.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.items[id].Clone(), nil
}

// FindAll 获取所有待办事项（按插入顺序）
func (r *memoryTodoRepository) FindAll(_ context.Context) ([]*todo.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot(), nil
}

// Replace 替换待办事项内容，保留 ID 与 created_at
func (r *memoryTodoRepository) Replace(_ context.Context, id int64, item *todo.Todo) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[id]
	if !ok {
		return false, nil
	}

	stored := item.Clone()
	stored.ID = id
	stored.CreatedAt = existing.CreatedAt
	stored.Touch(r.now())
	r.items[id] = stored

	item.ID = id
	item.CreatedAt = stored.CreatedAt
	item.UpdatedAt = stored.Clone().UpdatedAt
	return true, nil
}

// Delete 删除待办事项
func (r *memoryTodoRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	r.compact()
	return true, nil
}

// DeleteCompleted 删除所有已完成的待办事项
func (r *memoryTodoRepository) DeleteCompleted(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for id, item := range r.items {
		if item.Completed {
			delete(r.items, id)
			count++
		}
	}
	if count > 0 {
		r.compact()
	}
	return count, nil
}

// Query 在一致快照上执行查询
func (r *memoryTodoRepository) Query(_ context.Context, q todo.Query) ([]*todo.Todo, int, error) {
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	snapshot := r.snapshot()
	r.mu.RUnlock()

	page, total := todo.Apply(snapshot, q)
	return page, total, nil
}

// Ping 内存存储始终可用
func (r *memoryTodoRepository) Ping(_ context.Context) error {
	return nil
}

// snapshot 按插入顺序复制所有记录，调用方需持有读锁
func (r *memoryTodoRepository) snapshot() []*todo.Todo {
	out := make([]*todo.Todo, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id].Clone())
	}
	return out
}

// compact 从顺序表中移除已删除的 ID，调用方需持有写锁
func (r *memoryTodoRepository) compact() {
	kept := r.order[:0]
	for _, id := range r.order {
		if _, ok := r.items[id]; ok {
			kept = append(kept, id)
		}
	}
	r.order = kept
}

// 编译时检查接口实现
var _ todo.Repository = (*memoryTodoRepository)(nil)
