//go:build integration
// +build integration

// APIClient 基于 resty 封装的 HTTP 客户端，直接复用业务结构体
package framework

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	appTodo "github.com/todokit/backend/internal/application/todo"
	"github.com/todokit/backend/internal/interfaces/http/handler"
)

// APIClient 测试用 HTTP 客户端
type APIClient struct {
	client  *resty.Client
	baseURL string
}

// NewAPIClient 创建测试用 HTTP 客户端
func NewAPIClient(baseURL string) *APIClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &APIClient{
		client:  client,
		baseURL: baseURL,
	}
}

// APIResponse 通用 API 响应（与 response.Response 的 JSON 结构一致）
type APIResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Data    T      `json:"data,omitempty"`

	// Status HTTP 状态码
	Status int `json:"-"`
}

// do 执行请求并统一处理成功/错误响应的 JSON 解析
// resty 的 SetResult 仅在 2xx 时解析，SetError 在 4xx/5xx 时解析，两者结构一致
func do[T any](r *resty.Request, result *APIResponse[T]) *resty.Request {
	return r.SetResult(result).SetError(result)
}

func finish[T any](resp *resty.Response, err error, result *APIResponse[T]) (*APIResponse[T], error) {
	if err != nil {
		return nil, err
	}
	result.Status = resp.StatusCode()
	return result, nil
}

// HealthCheck 健康检查
func (c *APIClient) HealthCheck() error {
	resp, err := c.client.R().Get("/health")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("health check failed: status %d", resp.StatusCode())
	}
	return nil
}

// CreateTodo 创建待办事项
func (c *APIClient) CreateTodo(req handler.CreateTodoRequest) (*APIResponse[*appTodo.TodoDTO], error) {
	var result APIResponse[*appTodo.TodoDTO]
	resp, err := do(c.client.R().SetBody(req), &result).Post("/api/v1/todos")
	return finish(resp, err, &result)
}

// ListTodos 查询待办事项，params 为 query 参数
func (c *APIClient) ListTodos(params map[string]string) (*APIResponse[*appTodo.ListDTO], error) {
	var result APIResponse[*appTodo.ListDTO]
	resp, err := do(c.client.R().SetQueryParams(params), &result).Get("/api/v1/todos")
	return finish(resp, err, &result)
}

// GetTodo 获取单个待办事项
func (c *APIClient) GetTodo(id int64) (*APIResponse[*appTodo.TodoDTO], error) {
	var result APIResponse[*appTodo.TodoDTO]
	resp, err := do(c.client.R(), &result).Get(fmt.Sprintf("/api/v1/todos/%d", id))
	return finish(resp, err, &result)
}

// UpdateTodo 部分更新待办事项
func (c *APIClient) UpdateTodo(id int64, req handler.UpdateTodoRequest) (*APIResponse[*appTodo.TodoDTO], error) {
	var result APIResponse[*appTodo.TodoDTO]
	resp, err := do(c.client.R().SetBody(req), &result).Put(fmt.Sprintf("/api/v1/todos/%d", id))
	return finish(resp, err, &result)
}

// ToggleTodo 切换完成状态
func (c *APIClient) ToggleTodo(id int64) (*APIResponse[*appTodo.TodoDTO], error) {
	var result APIResponse[*appTodo.TodoDTO]
	resp, err := do(c.client.R(), &result).Patch(fmt.Sprintf("/api/v1/todos/%d/toggle", id))
	return finish(resp, err, &result)
}

// DeleteTodo 删除待办事项
func (c *APIClient) DeleteTodo(id int64) (*APIResponse[any], error) {
	var result APIResponse[any]
	resp, err := do(c.client.R(), &result).Delete(fmt.Sprintf("/api/v1/todos/%d", id))
	return finish(resp, err, &result)
}

// DeleteCompleted 删除所有已完成的待办事项
func (c *APIClient) DeleteCompleted() (*APIResponse[handler.DeleteCompletedResult], error) {
	var result APIResponse[handler.DeleteCompletedResult]
	resp, err := do(c.client.R(), &result).Delete("/api/v1/todos/completed/all")
	return finish(resp, err, &result)
}

// MustCreateTodos 依次创建多个待办事项，返回创建结果
func (c *APIClient) MustCreateTodos(reqs ...handler.CreateTodoRequest) ([]*appTodo.TodoDTO, error) {
	items := make([]*appTodo.TodoDTO, 0, len(reqs))
	for _, req := range reqs {
		resp, err := c.CreateTodo(req)
		if err != nil {
			return nil, err
		}
		if resp.Status != 201 {
			return nil, fmt.Errorf("create %q failed: status %d, %s", req.Title, resp.Status, resp.Message)
		}
		items = append(items, resp.Data)
	}
	return items, nil
}
