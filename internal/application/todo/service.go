package todo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/todokit/backend/internal/domain/events"
	"github.com/todokit/backend/internal/domain/todo"
	"github.com/todokit/backend/internal/infrastructure/log"
	"golang.org/x/sync/singleflight"
)

// Service 待办事项应用服务（用例编排）
//
// 变更操作由互斥锁串行化，读操作直接交给仓储。
// generation 在每次成功变更后递增，写入返回后发起的查询不会合并到写入前的查询上。
type Service struct {
	repo       todo.Repository
	bus        events.EventBus
	mu         sync.Mutex
	generation atomic.Uint64
	group      singleflight.Group
	logger *slog.Logger
	now    func() time.Time
}

// NewService 创建应用服务
func NewService(repo todo.Repository, bus events.EventBus) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: log.NewModuleLogger("todo", "service"),
		now:    time.Now,
	}
}

// Create 创建待办
func (s *Service) Create(ctx context.Context, in CreateInput) (*todo.Todo, error) {
	priority := in.Priority
	if priority == "" {
		priority = todo.PriorityMedium
	}

	item := &todo.Todo{
		Title:       in.Title,
		Description: in.Description,
		Priority:    priority,
		Completed:   false,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.Insert(ctx, item); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}

	s.generation.Add(1)
	s.logger.Info("Todo created", append(attrs(ctx), "id", item.ID)...)
	s.publish(&events.TodoEvent{EventType: events.TodoCreated, Todo: item.Clone(), ID: item.ID})
	return item, nil
}

// Get 获取单个待办，不存在返回 todo.ErrNotFound
func (s *Service) Get(ctx context.Context, id int64) (*todo.Todo, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get todo %d: %w", id, err)
	}
	if item == nil {
		return nil, todo.ErrNotFound
	}
	return item, nil
}

// List 过滤、搜索、排序、分页
//
// 同一数据版本上的相同查询合并为一次仓储读取，共享读取不受任一调用方取消的影响。
func (s *Service) List(ctx context.Context, q todo.Query) (*ListResult, error) {
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	readCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(queryKey(s.generation.Load(), q), func() (any, error) {
		items, total, err := s.repo.Query(readCtx, q)
		if err != nil {
			return nil, err
		}
		return &ListResult{Total: total, Items: items}, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("list todos: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("list todos: %w", res.Err)
		}
		if res.Shared {
			s.logger.Debug("List query coalesced", attrs(ctx)...)
		}
		return res.Val.(*ListResult).copy(), nil
	}
}

// Update 部分更新，只修改 patch 中提供的字段
func (s *Service) Update(ctx context.Context, id int64, patch todo.Patch) (*todo.Todo, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.ApplyTo(item)

	if err := s.replace(ctx, id, item); err != nil {
		return nil, err
	}

	s.logger.Info("Todo updated", append(attrs(ctx), "id", id)...)
	s.publish(&events.TodoEvent{EventType: events.TodoUpdated, Todo: item.Clone(), ID: id})
	return item, nil
}

// Toggle 切换完成状态
func (s *Service) Toggle(ctx context.Context, id int64) (*todo.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Toggle()

	if err := s.replace(ctx, id, item); err != nil {
		return nil, err
	}

	s.logger.Info("Todo toggled", append(attrs(ctx), "id", id, "completed", item.Completed)...)
	s.publish(&events.TodoEvent{EventType: events.TodoToggled, Todo: item.Clone(), ID: id})
	return item, nil
}

// Delete 删除待办
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}
	if !ok {
		return todo.ErrNotFound
	}

	s.generation.Add(1)
	s.logger.Info("Todo deleted", append(attrs(ctx), "id", id)...)
	s.publish(&events.TodoEvent{EventType: events.TodoDeleted, ID: id})
	return nil
}

// DeleteCompleted 删除所有已完成的待办，返回删除数量
func (s *Service) DeleteCompleted(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.repo.DeleteCompleted(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete completed todos: %w", err)
	}

	s.logger.Info("Completed todos deleted", append(attrs(ctx), "count", count)...)
	if count > 0 {
		s.generation.Add(1)
		s.publish(&events.TodoEvent{EventType: events.TodoCleared, Count: count})
	}
	return count, nil
}

// Ping 检查存储是否可用
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// replace 写回仓储，记录在读取之后被删除时返回 ErrNotFound
func (s *Service) replace(ctx context.Context, id int64, item *todo.Todo) error {
	ok, err := s.repo.Replace(ctx, id, item)
	if err != nil {
		return fmt.Errorf("update todo %d: %w", id, err)
	}
	if !ok {
		return todo.ErrNotFound
	}
	s.generation.Add(1)
	return nil
}

func (s *Service) publish(event *events.TodoEvent) {
	if s.bus == nil {
		return
	}
	event.EventTime = s.now()
	s.bus.Publish(event)
}

// queryKey singleflight 的键，包含数据版本与查询的所有维度
func queryKey(generation uint64, q todo.Query) string {
	completed, priority, search := "*", "*", ""
	if q.Completed != nil {
		completed = fmt.Sprint(*q.Completed)
	}
	if q.Priority != nil {
		priority = string(*q.Priority)
	}
	if q.Search != nil {
		search = *q.Search
	}
	return fmt.Sprintf("g=%d|c=%s|p=%s|s=%q|by=%s|o=%s|skip=%d|limit=%d",
		generation, completed, priority, search, q.SortBy, q.SortOrder, q.Skip, q.Limit)
}

// attrs 把上下文中的请求字段转换为日志参数
func attrs(ctx context.Context) []any {
	fields := log.LogCtxFromContext(ctx)
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, f)
	}
	return out
}
