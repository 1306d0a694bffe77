// Package calculator 四则运算、幂和取模，以及单行表达式解析
package calculator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Operator 运算符
type Operator string

const (
	OpAdd      Operator = "+"
	OpSubtract Operator = "-"
	OpMultiply Operator = "*"
	OpDivide   Operator = "/"
	OpPower    Operator = "**"
	OpPowerAlt Operator = "^" // ** 的别名
	OpModulo   Operator = "%"
)

// SupportedOperators 面向用户展示的运算符列表
const SupportedOperators = "+, -, *, /, **, %"

// ParseOperator 解析运算符
func ParseOperator(s string) (Operator, error) {
	switch op := Operator(s); op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide, OpPower, OpModulo:
		return op, nil
	case OpPowerAlt:
		return OpPower, nil
	}
	return "", fmt.Errorf("%w '%s'", ErrUnsupportedOperator, s)
}

// Add 加法
func Add(a, b float64) float64 { return a + b }

// Subtract 减法
func Subtract(a, b float64) float64 { return a - b }

// Multiply 乘法
func Multiply(a, b float64) float64 { return a * b }

// Divide 除法，除数为零返回 ErrDivisionByZero
func Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}

// Power 幂运算，0 的负数次幂返回 ErrZeroNegativePower
func Power(a, b float64) (float64, error) {
	if a == 0 && b < 0 {
		return 0, ErrZeroNegativePower
	}
	return math.Pow(a, b), nil
}

// Modulo 取模，结果与除数同号（-7 % 3 == 2）
func Modulo(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r, nil
}

// Evaluate 执行一次运算
func Evaluate(a float64, op Operator, b float64) (float64, error) {
	var (
		r   float64
		err error
	)
	switch op {
	case OpAdd:
		r = Add(a, b)
	case OpSubtract:
		r = Subtract(a, b)
	case OpMultiply:
		r = Multiply(a, b)
	case OpDivide:
		r, err = Divide(a, b)
	case OpPower, OpPowerAlt:
		r, err = Power(a, b)
	case OpModulo:
		r, err = Modulo(a, b)
	default:
		return 0, fmt.Errorf("%w '%s'", ErrUnsupportedOperator, op)
	}
	if err != nil {
		return 0, err
	}

	finite := !math.IsInf(a, 0) && !math.IsInf(b, 0) && !math.IsNaN(a) && !math.IsNaN(b)
	switch {
	case finite && math.IsInf(r, 0):
		return 0, ErrOverflow
	case finite && math.IsNaN(r):
		return 0, ErrNotReal
	}
	return r, nil
}

// Expression 解析后的单行表达式
type Expression struct {
	Left     float64
	Operator Operator
	Right    float64
}

// ParseExpression 解析 "数字 运算符 数字"，字段之间以空白分隔
func ParseExpression(line string) (Expression, error) {
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return Expression{}, ErrInvalidFormat
	}

	left, err := parseNumber(parts[0])
	if err != nil {
		return Expression{}, err
	}
	right, err := parseNumber(parts[2])
	if err != nil {
		return Expression{}, err
	}

	// 数字先于运算符校验
	op, err := ParseOperator(parts[1])
	if err != nil {
		return Expression{}, err
	}
	return Expression{Left: left, Operator: op, Right: right}, nil
}

// Eval 计算表达式
func (e Expression) Eval() (float64, error) {
	return Evaluate(e.Left, e.Operator, e.Right)
}

// Calculate 解析并计算一行输入
func Calculate(line string) (float64, error) {
	expr, err := ParseExpression(line)
	if err != nil {
		return 0, err
	}
	return expr.Eval()
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if errors.Is(err, strconv.ErrRange) {
		// 超出范围时按 ±Inf 或 0 继续计算
		return v, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return v, nil
}

// Format 整数结果不带小数部分，其余使用最短的往返表示
//
// 1e-4 <= |r| < 1e16 时使用定点形式，范围之外使用指数形式（1e-05）。
func Format(r float64) string {
	switch {
	case math.IsNaN(r):
		return "nan"
	case math.IsInf(r, 1):
		return "inf"
	case math.IsInf(r, -1):
		return "-inf"
	case r == 0:
		return "0"
	case r == math.Trunc(r):
		return strconv.FormatFloat(r, 'f', -1, 64)
	}
	if abs := math.Abs(r); abs >= 1e-4 && abs < 1e16 {
		return strconv.FormatFloat(r, 'f', -1, 64)
	}
	return strconv.FormatFloat(r, 'e', -1, 64)
}
