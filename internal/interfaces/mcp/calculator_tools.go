package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/todokit/backend/internal/domain/calculator"
	"github.com/todokit/backend/internal/domain/todo"
)

// CalculateInput 计算工具输入
type CalculateInput struct {
	Expression string `json:"expression" jsonschema:"形如 '2 + 3' 的表达式：数字 运算符 数字，以空格分隔"`
}

// CalculateOutput 计算工具输出
type CalculateOutput struct {
	Expression string `json:"expression" jsonschema:"原始表达式"`
	Result     string `json:"result" jsonschema:"计算结果，整数不带小数部分"`
}

func (s *MCPServer) registerCalculatorTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "calculate",
		Description: "Evaluate a binary arithmetic expression. Parameters: expression (string, required) - 'number operator number' separated by spaces, operators: " + calculator.SupportedOperators + " (^ is an alias of **). Returns the formatted result.",
	}, s.calculateTool)
}

func (s *MCPServer) calculateTool(_ context.Context, _ *mcp.CallToolRequest, input CalculateInput) (*mcp.CallToolResult, CalculateOutput, error) {
	result, err := calculator.Calculate(input.Expression)
	if err != nil {
		return nil, CalculateOutput{}, toolError(err)
	}
	return nil, CalculateOutput{
		Expression: input.Expression,
		Result:     calculator.Format(result),
	}, nil
}

// toolError 把领域错误转换为对调用方友好的消息
func toolError(err error) error {
	switch {
	case errors.Is(err, todo.ErrNotFound):
		return errors.New("Todo not found")
	case errors.Is(err, calculator.ErrDivisionByZero):
		return errors.New("Cannot divide by zero!")
	default:
		return err
	}
}
