package calculator

import "errors"

var (
	// ErrDivisionByZero 除数（或取模的模数）为零
	ErrDivisionByZero = errors.New("cannot divide by zero")
	// ErrZeroNegativePower 0 的负数次幂
	ErrZeroNegativePower = errors.New("0.0 cannot be raised to a negative power")
	// ErrInvalidFormat 表达式不是 "数字 运算符 数字" 的形式
	ErrInvalidFormat = errors.New("invalid format, expected: number operator number")
	// ErrInvalidNumber 操作数无法解析为数字
	ErrInvalidNumber = errors.New("invalid number")
	// ErrUnsupportedOperator 不支持的运算符
	ErrUnsupportedOperator = errors.New("unsupported operator")
	// ErrOverflow 有限操作数得到了无穷大结果
	ErrOverflow = errors.New("numerical result out of range")
	// ErrNotReal 结果不是实数，例如负数的分数次幂
	ErrNotReal = errors.New("result is not a real number")
)
