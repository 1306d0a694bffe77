package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicOperations(t *testing.T) {
	assert.Equal(t, 5.0, Add(2, 3))
	assert.Equal(t, 0.0, Add(-1, 1))
	assert.Equal(t, -10.0, Add(-5, -5))

	assert.Equal(t, 2.0, Subtract(5, 3))
	assert.Equal(t, -2.0, Subtract(-5, -3))

	assert.Equal(t, 12.0, Multiply(3, 4))
	assert.Equal(t, -6.0, Multiply(-2, 3))
	assert.Equal(t, 0.0, Multiply(0, 100))
}

func TestDivide(t *testing.T) {
	r, err := Divide(10, 2)
	require.NoError(t, err)
	assert.Equal(t, 5.0, r)

	r, err = Divide(-6, 2)
	require.NoError(t, err)
	assert.Equal(t, -3.0, r)

	_, err = Divide(10, 0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestPower(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{2, 3, 8},
		{5, 0, 1},
		{3, 2, 9},
		{-2, 2, 4},
		{4, 0.5, 2},
	}
	for _, tt := range tests {
		r, err := Power(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, r)
	}

	_, err := Power(0, -1)
	assert.ErrorIs(t, err, ErrZeroNegativePower)
	assert.NotErrorIs(t, err, ErrDivisionByZero)

	r, err := Power(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, r)
}

func TestModulo(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{10, 3, 1},
		{15, 4, 3},
		{7, 7, 0},
		{-7, 3, 2},
		{7, -3, -2},
		{-7, -3, -1},
		{5.5, 2, 1.5},
	}
	for _, tt := range tests {
		r, err := Modulo(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, r, "%v %% %v", tt.a, tt.b)
	}

	_, err := Modulo(10, 0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestEvaluate_NonFiniteResults(t *testing.T) {
	_, err := Evaluate(10, OpPower, 400)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Evaluate(math.MaxFloat64, OpMultiply, 2)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Evaluate(-8, OpPower, 1.0/3)
	assert.ErrorIs(t, err, ErrNotReal)

	// 操作数本身为无穷时直接返回
	r, err := Evaluate(math.Inf(1), OpAdd, 1)
	require.NoError(t, err)
	assert.True(t, math.IsInf(r, 1))
}

func TestParseExpression(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Expression
		wantErr error
	}{
		{"add", "2 + 3", Expression{2, OpAdd, 3}, nil},
		{"extra spaces", "  10   /  4 ", Expression{10, OpDivide, 4}, nil},
		{"power alias", "2 ^ 10", Expression{2, OpPower, 10}, nil},
		{"power", "2 ** 10", Expression{2, OpPower, 10}, nil},
		{"decimals", "-1.5 * 2e3", Expression{-1.5, OpMultiply, 2000}, nil},
		{"no spaces", "2+3", Expression{}, ErrInvalidFormat},
		{"too many fields", "1 + 2 + 3", Expression{}, ErrInvalidFormat},
		{"empty", "", Expression{}, ErrInvalidFormat},
		{"bad left", "two + 3", Expression{}, ErrInvalidNumber},
		{"bad right", "2 + three", Expression{}, ErrInvalidNumber},
		{"bad operator", "2 & 3", Expression{}, ErrUnsupportedOperator},
		{"numbers checked first", "x & 3", Expression{}, ErrInvalidNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExpression(tt.line)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculate(t *testing.T) {
	r, err := Calculate("7 % 3")
	require.NoError(t, err)
	assert.Equal(t, 1.0, r)

	_, err = Calculate("1 / 0")
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = Calculate("1 // 2")
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
	assert.Contains(t, err.Error(), "'//'")
}

func TestFormat(t *testing.T) {
	a, b := 0.1, 0.2

	tests := []struct {
		in   float64
		want string
	}{
		{5, "5"},
		{-3, "-3"},
		{math.Copysign(0, -1), "0"},
		{2.5, "2.5"},
		{a + b, "0.30000000000000004"},
		{1.0 / 3, "0.3333333333333333"},
		{1234567.5, "1234567.5"},
		{1000000.5, "1000000.5"},
		{-1234567.25, "-1234567.25"},
		{1e20, "100000000000000000000"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{-0.000015, "-1.5e-05"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "nan"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.in))
	}
}
