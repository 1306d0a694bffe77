package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/todokit/backend/internal/domain/todo"
)

// todoRow todos 表的行映射，时间戳以毫秒存储
type todoRow struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	Priority    string         `db:"priority"`
	Completed   int            `db:"completed"`
	CreatedAt   int64          `db:"created_at"`
	UpdatedAt   sql.NullInt64  `db:"updated_at"`
}

func (r *todoRow) toDomain() *todo.Todo {
	item := &todo.Todo{
		ID:        r.ID,
		Title:     r.Title,
		Priority:  todo.Priority(r.Priority),
		Completed: r.Completed == 1,
		CreatedAt: time.UnixMilli(r.CreatedAt),
	}
	if r.Description.Valid {
		d := r.Description.String
		item.Description = &d
	}
	if r.UpdatedAt.Valid {
		t := time.UnixMilli(r.UpdatedAt.Int64)
		item.UpdatedAt = &t
	}
	return item
}

const todoColumns = `id, title, description, priority, completed, created_at, updated_at`

// todoRepository 待办事项 SQLite 仓储实现
type todoRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewTodoRepository 创建待办事项仓储实例，表结构由 OpenDB 的迁移保证
func NewTodoRepository(db *sqlx.DB) todo.Repository {
	return &todoRepository{db: db, now: storeNow}
}

// storeNow 毫秒精度的当前时间，与存储精度一致
func storeNow() time.Time {
	return time.UnixMilli(time.Now().UnixMilli())
}

// Insert 插入待办事项
func (r *todoRepository) Insert(ctx context.Context, item *todo.Todo) (int64, error) {
	item.CreatedAt = r.now()
	item.UpdatedAt = nil

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO todos (title, description, priority, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, NULL)`,
		item.Title,
		nullString(item.Description),
		string(item.Priority),
		boolToInt(item.Completed),
		item.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert todo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read todo id: %w", err)
	}
	item.ID = id
	return id, nil
}

// FindByID 根据 ID 查找待办事项
func (r *todoRepository) FindByID(ctx context.Context, id int64) (*todo.Todo, error) {
	var row todoRow
	err := r.db.GetContext(ctx, &row, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query todo: %w", err)
	}
	return row.toDomain(), nil
}

// FindAll 获取所有待办事项（按插入顺序）
func (r *todoRepository) FindAll(ctx context.Context) ([]*todo.Todo, error) {
	var rows []todoRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+todoColumns+` FROM todos ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	return toDomainList(rows), nil
}

// Replace 替换待办事项内容并刷新 updated_at
func (r *todoRepository) Replace(ctx context.Context, id int64, item *todo.Todo) (bool, error) {
	now := r.now()

	// updated_at 不早于 created_at
	result, err := r.db.ExecContext(ctx, `
		UPDATE todos
		SET title = ?, description = ?, priority = ?, completed = ?,
		    updated_at = MAX(?, created_at)
		WHERE id = ?`,
		item.Title,
		nullString(item.Description),
		string(item.Priority),
		boolToInt(item.Completed),
		now.UnixMilli(),
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update todo: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	item.ID = id
	item.Touch(now)
	return true, nil
}

// Delete 删除待办事项
func (r *todoRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete todo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// DeleteCompleted 删除所有已完成的待办事项
func (r *todoRepository) DeleteCompleted(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE completed = 1`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete completed todos: %w", err)
	}
	return result.RowsAffected()
}

// Query 过滤、搜索、排序、分页
func (r *todoRepository) Query(ctx context.Context, q todo.Query) ([]*todo.Todo, int, error) {
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return nil, 0, err
	}

	where, args := buildWhere(q)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM todos`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count todos: %w", err)
	}
	if q.Skip >= total {
		return []*todo.Todo{}, total, nil
	}

	query := `SELECT ` + todoColumns + ` FROM todos` + where + buildOrderBy(q) + ` LIMIT ? OFFSET ?`
	args = append(args, q.Limit, q.Skip)

	var rows []todoRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to query todos: %w", err)
	}
	return toDomainList(rows), total, nil
}

// Ping 检查数据库连接
func (r *todoRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// buildWhere 组合过滤条件（AND）
func buildWhere(q todo.Query) (string, []any) {
	var conditions []string
	var args []any

	if q.Completed != nil {
		conditions = append(conditions, "completed = ?")
		args = append(args, boolToInt(*q.Completed))
	}
	if q.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, string(*q.Priority))
	}
	if term := q.SearchTerm(); term != "" {
		conditions = append(conditions, `(title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`)
		pattern := "%" + escapeLike(term) + "%"
		args = append(args, pattern, pattern)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// buildOrderBy 排序子句，id 作为同方向的次级键
//
// SQLite 升序时 NULL 排在最前，降序时排在最后，与内存实现一致。
func buildOrderBy(q todo.Query) string {
	dir := "DESC"
	if q.SortOrder == todo.SortAsc {
		dir = "ASC"
	}

	var column string
	switch q.SortBy {
	case todo.SortByTitle:
		column = "title"
	case todo.SortByPriority:
		column = "CASE priority WHEN 'low' THEN 0 WHEN 'medium' THEN 1 WHEN 'high' THEN 2 ELSE -1 END"
	case todo.SortByUpdatedAt:
		column = "updated_at"
	default:
		column = "created_at"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", column, dir, dir)
}

// escapeLike 转义 LIKE 通配符，使 % 和 _ 按字面匹配
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func toDomainList(rows []todoRow) []*todo.Todo {
	items := make([]*todo.Todo, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].toDomain())
	}
	return items
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// 编译时检查接口实现
var _ todo.Repository = (*todoRepository)(nil)
