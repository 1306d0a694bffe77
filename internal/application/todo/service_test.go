package todo

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todokit/backend/internal/domain/events"
	"github.com/todokit/backend/internal/domain/todo"
	"github.com/todokit/backend/internal/infrastructure/eventbus"
	"github.com/todokit/backend/internal/infrastructure/storage"
)

func newTestService(t *testing.T) (*Service, events.EventBus) {
	t.Helper()
	bus := eventbus.NewEventBus()
	t.Cleanup(bus.Close)
	return NewService(storage.NewMemoryTodoRepository(), bus), bus
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestService_CreateDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, CreateInput{Title: "Buy milk"})
	require.NoError(t, err)
	assert.Positive(t, item.ID)
	assert.Equal(t, todo.PriorityMedium, item.Priority)
	assert.False(t, item.Completed)
	assert.Nil(t, item.Description)
	assert.Nil(t, item.UpdatedAt)

	other, err := svc.Create(ctx, CreateInput{Title: "Walk dog", Priority: todo.PriorityHigh})
	require.NoError(t, err)
	assert.NotEqual(t, item.ID, other.ID)
	assert.Equal(t, todo.PriorityHigh, other.Priority)
}

func TestService_CreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Title: ""})
	assert.ErrorIs(t, err, todo.ErrInvalidTitle)

	_, err = svc.Create(ctx, CreateInput{Title: strings.Repeat("x", 201)})
	assert.ErrorIs(t, err, todo.ErrInvalidTitle)

	// 按字符计数
	_, err = svc.Create(ctx, CreateInput{Title: strings.Repeat("字", 200)})
	assert.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{Title: "x", Priority: "urgent"})
	assert.ErrorIs(t, err, todo.ErrInvalidPriority)

	res, err := svc.List(ctx, todo.DefaultQuery())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total, "rejected creates must not be stored")
}

func TestService_NotFoundOnEmptyStore(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, 999)
	assert.ErrorIs(t, err, todo.ErrNotFound)

	_, err = svc.Update(ctx, 999, todo.Patch{Title: strPtr("x")})
	assert.ErrorIs(t, err, todo.ErrNotFound)

	_, err = svc.Toggle(ctx, 999)
	assert.ErrorIs(t, err, todo.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, 999), todo.ErrNotFound)
}

func TestService_UpdateOnlySuppliedFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, CreateInput{Title: "Original", Description: strPtr("desc"), Priority: todo.PriorityLow})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, item.ID, todo.Patch{Title: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "desc", *updated.Description)
	assert.Equal(t, todo.PriorityLow, updated.Priority)
	assert.False(t, updated.Completed)
	require.NotNil(t, updated.UpdatedAt)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	p := todo.PriorityHigh
	updated, err = svc.Update(ctx, item.ID, todo.Patch{Priority: &p, Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, todo.PriorityHigh, updated.Priority)
	assert.True(t, updated.Completed)

	// 空 patch 只刷新 updated_at
	before := *updated.UpdatedAt
	same, err := svc.Update(ctx, item.ID, todo.Patch{})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", same.Title)
	assert.False(t, same.UpdatedAt.Before(before))

	_, err = svc.Update(ctx, item.ID, todo.Patch{Title: strPtr("")})
	assert.ErrorIs(t, err, todo.ErrInvalidTitle)
	bad := todo.Priority("nope")
	_, err = svc.Update(ctx, item.ID, todo.Patch{Priority: &bad})
	assert.ErrorIs(t, err, todo.ErrInvalidPriority)
}

func TestService_ToggleTwiceRestores(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, CreateInput{Title: "Toggle me"})
	require.NoError(t, err)

	toggled, err := svc.Toggle(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	toggled, err = svc.Toggle(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)
}

func TestService_CreateToggleDeleteCompleted(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, CreateInput{Title: "Finish report"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Title: "Keep me"})
	require.NoError(t, err)

	_, err = svc.Toggle(ctx, item.ID)
	require.NoError(t, err)

	count, err := svc.DeleteCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = svc.DeleteCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	_, err = svc.Get(ctx, item.ID)
	assert.ErrorIs(t, err, todo.ErrNotFound)

	res, err := svc.List(ctx, todo.DefaultQuery())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "Keep me", res.Items[0].Title)
}

func TestService_DeleteTwice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, CreateInput{Title: "Once"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, item.ID))
	assert.ErrorIs(t, svc.Delete(ctx, item.ID), todo.ErrNotFound)
}

func TestService_ListScenario(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, in := range []CreateInput{
		{Title: "First Todo", Priority: todo.PriorityHigh},
		{Title: "Second Todo", Priority: todo.PriorityMedium},
		{Title: "Third Todo", Priority: todo.PriorityLow},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	q := todo.DefaultQuery()
	q.Search = strPtr("First")
	res, err := svc.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "First Todo", res.Items[0].Title)

	q = todo.Query{SortBy: todo.SortByTitle, SortOrder: todo.SortAsc}
	res, err = svc.List(ctx, q)
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "First Todo", res.Items[0].Title)
	assert.Equal(t, "Second Todo", res.Items[1].Title)
	assert.Equal(t, "Third Todo", res.Items[2].Title)

	_, err = svc.List(ctx, todo.Query{Limit: 5000})
	assert.ErrorIs(t, err, todo.ErrInvalidQuery)
}

func TestService_ConcurrentCreatesGetUniqueIDs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item, err := svc.Create(ctx, CreateInput{Title: "parallel"})
			if assert.NoError(t, err) {
				ids <- item.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestService_PublishesEvents(t *testing.T) {
	svc, bus := newTestService(t)
	ctx := context.Background()

	var mu sync.Mutex
	got := make(map[events.EventType]int)
	var cleared atomic.Int64
	bus.SubscribeMultiple(events.TodoEventTypes, events.HandlerFunc(func(event events.Event) error {
		e := event.(*events.TodoEvent)
		mu.Lock()
		got[e.EventType]++
		mu.Unlock()
		if e.EventType == events.TodoCleared {
			cleared.Store(e.Count)
		}
		return nil
	}))

	item, err := svc.Create(ctx, CreateInput{Title: "evented"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, item.ID, todo.Patch{Title: strPtr("evented 2")})
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, item.ID)
	require.NoError(t, err)
	_, err = svc.DeleteCompleted(ctx)
	require.NoError(t, err)
	_, err = svc.DeleteCompleted(ctx) // 没有删除任何记录，不发布事件
	require.NoError(t, err)

	other, err := svc.Create(ctx, CreateInput{Title: "gone"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, other.ID))

	want := map[events.EventType]int{
		events.TodoCreated: 2,
		events.TodoUpdated: 1,
		events.TodoToggled: 1,
		events.TodoCleared: 1,
		events.TodoDeleted: 1,
	}
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for k, v := range want {
			if got[k] != v {
				return false
			}
		}
		return true
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), cleared.Load())
}

func TestQueryKey_DistinguishesQueries(t *testing.T) {
	a := todo.DefaultQuery()
	b := todo.DefaultQuery()
	assert.Equal(t, queryKey(0, a), queryKey(0, b))
	assert.NotEqual(t, queryKey(0, a), queryKey(1, a), "a write starts a new generation")

	b.Completed = boolPtr(false)
	assert.NotEqual(t, queryKey(0, a), queryKey(0, b))

	c := todo.DefaultQuery()
	c.Search = strPtr("")
	assert.Equal(t, queryKey(0, a), queryKey(0, c), "empty search matches everything, same as no search")
}

// heldRepository 第一次 Query 读完快照后停住，直到 release 关闭
type heldRepository struct {
	todo.Repository
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newHeldRepository() *heldRepository {
	return &heldRepository{
		Repository: storage.NewMemoryTodoRepository(),
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
}

func (r *heldRepository) Query(ctx context.Context, q todo.Query) ([]*todo.Todo, int, error) {
	items, total, err := r.Repository.Query(ctx, q)
	first := false
	r.once.Do(func() { first = true })
	if !first {
		return items, total, err
	}
	close(r.entered)
	select {
	case <-r.release:
		return items, total, err
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	}
}

type listOutcome struct {
	res *ListResult
	err error
}

func listAsync(ctx context.Context, svc *Service) <-chan listOutcome {
	out := make(chan listOutcome, 1)
	go func() {
		res, err := svc.List(ctx, todo.DefaultQuery())
		out <- listOutcome{res, err}
	}()
	return out
}

func TestService_ListAfterWriteSeesTheWrite(t *testing.T) {
	repo := newHeldRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	stale := listAsync(ctx, svc)
	<-repo.entered

	_, err := svc.Create(ctx, CreateInput{Title: "written while a list was in flight"})
	require.NoError(t, err)

	fresh := listAsync(ctx, svc)
	select {
	case got := <-fresh:
		require.NoError(t, got.err)
		assert.Equal(t, 1, got.res.Total)
		require.Len(t, got.res.Items, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("list issued after the write waited on the older read")
	}

	close(repo.release)
	got := <-stale
	require.NoError(t, got.err)
	assert.Equal(t, 0, got.res.Total)
}

func TestService_ListSurvivesOtherCallerCancel(t *testing.T) {
	repo := newHeldRepository()
	svc := NewService(repo, nil)
	_, err := svc.Create(context.Background(), CreateInput{Title: "shared"})
	require.NoError(t, err)

	firstCtx, cancel := context.WithCancel(context.Background())
	first := listAsync(firstCtx, svc)
	<-repo.entered

	second := listAsync(context.Background(), svc)
	time.Sleep(20 * time.Millisecond)
	cancel()

	got := <-first
	assert.ErrorIs(t, got.err, context.Canceled)

	close(repo.release)
	got = <-second
	require.NoError(t, got.err)
	assert.Equal(t, 1, got.res.Total)
}

func TestService_ListResultsAreIndependent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, CreateInput{Title: "original"})
	require.NoError(t, err)

	a, err := svc.List(ctx, todo.DefaultQuery())
	require.NoError(t, err)
	a.Items[0].Title = "scribbled"

	b, err := svc.List(ctx, todo.DefaultQuery())
	require.NoError(t, err)
	assert.Equal(t, "original", b.Items[0].Title)
}
