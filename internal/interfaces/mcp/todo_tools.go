package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	appTodo "github.com/todokit/backend/internal/application/todo"
	"github.com/todokit/backend/internal/domain/todo"
)

// TodoOutput 待办工具输出
type TodoOutput struct {
	ID          int64  `json:"id" jsonschema:"待办 ID"`
	Title       string `json:"title" jsonschema:"标题"`
	Description string `json:"description,omitempty" jsonschema:"描述"`
	Priority    string `json:"priority" jsonschema:"优先级：low/medium/high"`
	Completed   bool   `json:"completed" jsonschema:"是否完成"`
	CreatedAt   string `json:"created_at" jsonschema:"创建时间（RFC3339）"`
	UpdatedAt   string `json:"updated_at,omitempty" jsonschema:"最近修改时间（RFC3339）"`
}

// CreateTodoInput 创建待办输入
type CreateTodoInput struct {
	Title       string `json:"title" jsonschema:"标题，1-200 个字符"`
	Description string `json:"description,omitempty" jsonschema:"描述（可选）"`
	Priority    string `json:"priority,omitempty" jsonschema:"优先级：low/medium/high，默认 medium"`
}

// TodoIDInput 单个待办输入
type TodoIDInput struct {
	ID int64 `json:"id" jsonschema:"待办 ID"`
}

// UpdateTodoInput 部分更新输入，缺省字段保持不变
type UpdateTodoInput struct {
	ID          int64   `json:"id" jsonschema:"待办 ID"`
	Title       *string `json:"title,omitempty" jsonschema:"新标题"`
	Description *string `json:"description,omitempty" jsonschema:"新描述"`
	Priority    *string `json:"priority,omitempty" jsonschema:"新优先级：low/medium/high"`
	Completed   *bool   `json:"completed,omitempty" jsonschema:"完成状态"`
}

// ListTodosInput 列表查询输入
type ListTodosInput struct {
	Completed *bool  `json:"completed,omitempty" jsonschema:"按完成状态过滤"`
	Priority  string `json:"priority,omitempty" jsonschema:"按优先级过滤：low/medium/high"`
	Search    string `json:"search,omitempty" jsonschema:"在标题和描述中搜索（不区分大小写）"`
	SortBy    string `json:"sort_by,omitempty" jsonschema:"排序字段：created_at/updated_at/title/priority，默认 created_at"`
	SortOrder string `json:"sort_order,omitempty" jsonschema:"排序方向：asc/desc，默认 desc"`
	Skip      int    `json:"skip,omitempty" jsonschema:"跳过条数，默认 0"`
	Limit     int    `json:"limit,omitempty" jsonschema:"返回条数上限 1-1000，默认 100"`
}

// ListTodosOutput 列表查询输出
type ListTodosOutput struct {
	Total int          `json:"total" jsonschema:"分页前的匹配总数"`
	Items []TodoOutput `json:"items" jsonschema:"当前页的待办"`
}

// DeleteOutput 删除结果
type DeleteOutput struct {
	Deleted int64  `json:"deleted" jsonschema:"删除的数量"`
	Message string `json:"message" jsonschema:"结果描述"`
}

func (s *MCPServer) registerTodoTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "create_todo",
		Description: "Create a todo item. Parameters: title (string, required, 1-200 characters), description (string, optional), priority (string, optional: low|medium|high, defaults to medium). Returns the created todo.",
	}, s.createTodoTool)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "list_todos",
		Description: `List todo items with filtering, search, sorting and pagination.
Parameters:
- completed (bool, optional): filter by completion status
- priority (string, optional): low|medium|high
- search (string, optional): case-insensitive substring of title or description
- sort_by (string, optional): created_at|updated_at|title|priority, defaults to created_at
- sort_order (string, optional): asc|desc, defaults to desc
- skip (int, optional): defaults to 0
- limit (int, optional): 1-1000, defaults to 100

Returns: total match count before pagination and the page of items.`,
	}, s.listTodosTool)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_todo",
		Description: "Get a single todo item. Parameters: id (int, required). Returns the todo or an error if it does not exist.",
	}, s.getTodoTool)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_todo",
		Description: "Partially update a todo item; omitted fields are unchanged. Parameters: id (int, required), title (string, optional), description (string, optional), priority (string, optional: low|medium|high), completed (bool, optional). Returns the updated todo.",
	}, s.updateTodoTool)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "toggle_todo",
		Description: "Flip the completion status of a todo item. Parameters: id (int, required). Returns the updated todo.",
	}, s.toggleTodoTool)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_todo",
		Description: "Delete a todo item. Parameters: id (int, required).",
	}, s.deleteTodoTool)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_completed_todos",
		Description: "Delete all completed todo items. No parameters. Returns the number of deleted items.",
	}, s.deleteCompletedTool)
}

func (s *MCPServer) createTodoTool(ctx context.Context, _ *mcp.CallToolRequest, input CreateTodoInput) (*mcp.CallToolResult, TodoOutput, error) {
	priority, err := todo.ParsePriority(input.Priority)
	if err != nil {
		return nil, TodoOutput{}, toolError(err)
	}
	in := appTodo.CreateInput{
		Title:    input.Title,
		Priority: priority,
	}
	if input.Description != "" {
		in.Description = &input.Description
	}

	item, err := s.todos.Create(ctx, in)
	if err != nil {
		return nil, TodoOutput{}, toolError(err)
	}
	return nil, toOutput(item), nil
}

func (s *MCPServer) listTodosTool(ctx context.Context, _ *mcp.CallToolRequest, input ListTodosInput) (*mcp.CallToolResult, ListTodosOutput, error) {
	q := todo.Query{
		Completed: input.Completed,
		SortBy:    todo.SortField(input.SortBy),
		SortOrder: todo.SortOrder(input.SortOrder),
		Skip:      input.Skip,
		Limit:     input.Limit,
	}
	if input.Priority != "" {
		p, err := todo.ParsePriority(input.Priority)
		if err != nil {
			return nil, ListTodosOutput{}, toolError(err)
		}
		q.Priority = &p
	}
	if input.Search != "" {
		q.Search = &input.Search
	}

	res, err := s.todos.List(ctx, q)
	if err != nil {
		return nil, ListTodosOutput{}, toolError(err)
	}

	out := ListTodosOutput{Total: res.Total, Items: make([]TodoOutput, 0, len(res.Items))}
	for _, item := range res.Items {
		out.Items = append(out.Items, toOutput(item))
	}
	return nil, out, nil
}

func (s *MCPServer) getTodoTool(ctx context.Context, _ *mcp.CallToolRequest, input TodoIDInput) (*mcp.CallToolResult, TodoOutput, error) {
	item, err := s.todos.Get(ctx, input.ID)
	if err != nil {
		return nil, TodoOutput{}, toolError(err)
	}
	return nil, toOutput(item), nil
}

func (s *MCPServer) updateTodoTool(ctx context.Context, _ *mcp.CallToolRequest, input UpdateTodoInput) (*mcp.CallToolResult, TodoOutput, error) {
	patch := todo.Patch{
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
	}
	if input.Priority != nil {
		p := todo.Priority(*input.Priority)
		patch.Priority = &p
	}

	item, err := s.todos.Update(ctx, input.ID, patch)
	if err != nil {
		return nil, TodoOutput{}, toolError(err)
	}
	return nil, toOutput(item), nil
}

func (s *MCPServer) toggleTodoTool(ctx context.Context, _ *mcp.CallToolRequest, input TodoIDInput) (*mcp.CallToolResult, TodoOutput, error) {
	item, err := s.todos.Toggle(ctx, input.ID)
	if err != nil {
		return nil, TodoOutput{}, toolError(err)
	}
	return nil, toOutput(item), nil
}

func (s *MCPServer) deleteTodoTool(ctx context.Context, _ *mcp.CallToolRequest, input TodoIDInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if err := s.todos.Delete(ctx, input.ID); err != nil {
		return nil, DeleteOutput{}, toolError(err)
	}
	return nil, DeleteOutput{Deleted: 1, Message: "Todo deleted successfully"}, nil
}

func (s *MCPServer) deleteCompletedTool(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, DeleteOutput, error) {
	count, err := s.todos.DeleteCompleted(ctx)
	if err != nil {
		return nil, DeleteOutput{}, toolError(err)
	}
	return nil, DeleteOutput{Deleted: count, Message: fmt.Sprintf("Deleted %d completed todo(s)", count)}, nil
}

func toOutput(item *todo.Todo) TodoOutput {
	out := TodoOutput{
		ID:        item.ID,
		Title:     item.Title,
		Priority:  string(item.Priority),
		Completed: item.Completed,
		CreatedAt: item.CreatedAt.Format(time.RFC3339Nano),
	}
	if item.Description != nil {
		out.Description = *item.Description
	}
	if item.UpdatedAt != nil {
		out.UpdatedAt = item.UpdatedAt.Format(time.RFC3339Nano)
	}
	return out
}
