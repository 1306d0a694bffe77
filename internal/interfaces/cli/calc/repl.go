// Package calc 计算器命令行交互：行式 REPL 与终端 TUI 共用同一套应答逻辑
package calc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/todokit/backend/internal/domain/calculator"
	"github.com/todokit/backend/internal/infrastructure/log"
)

const (
	WelcomeMessage     = "Welcome to the Calculator!"
	OperatorsMessage   = "Supported operations: " + calculator.SupportedOperators
	QuitHintMessage    = "Type 'quit' to exit"
	Prompt             = "\nEnter calculation (e.g., '2 + 3') or 'quit' to exit: "
	GoodbyeMessage     = "Thank you for using the Calculator. Goodbye!"
	InterruptedMessage = "\nCalculator interrupted. Goodbye!"
)

// Banner 启动时输出的欢迎信息
func Banner() []string {
	return []string{WelcomeMessage, OperatorsMessage, QuitHintMessage}
}

// Respond 处理一行输入，返回应答文本以及是否退出
func Respond(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if strings.EqualFold(line, "quit") {
		return GoodbyeMessage, true
	}

	result, err := calculator.Calculate(line)
	if err != nil {
		return ErrorMessage(line, err), false
	}
	return "Result: " + calculator.Format(result), false
}

// ErrorMessage 将计算错误转换为面向用户的提示
func ErrorMessage(line string, err error) string {
	switch {
	case errors.Is(err, calculator.ErrInvalidFormat):
		return "Invalid format! Please enter calculation in format: number operator number"
	case errors.Is(err, calculator.ErrInvalidNumber):
		return "Invalid numbers! Please enter valid numbers."
	case errors.Is(err, calculator.ErrUnsupportedOperator):
		op := ""
		if fields := strings.Fields(line); len(fields) == 3 {
			op = fields[1]
		}
		return fmt.Sprintf("Unsupported operator '%s'. Supported: %s", op, calculator.SupportedOperators)
	case errors.Is(err, calculator.ErrDivisionByZero):
		return "Error: Cannot divide by zero!"
	}
	return "An unexpected error occurred: " + err.Error()
}

// REPL 行式交互循环
type REPL struct {
	in     io.Reader
	out    io.Writer
	logger *slog.Logger
}

// NewREPL 创建 REPL
func NewREPL(in io.Reader, out io.Writer) *REPL {
	return &REPL{
		in:     in,
		out:    out,
		logger: log.NewModuleLogger("calc", "repl"),
	}
}

// Run 运行交互循环，输入 quit、输入结束或 ctx 取消时返回
func (r *REPL) Run(ctx context.Context) error {
	for _, line := range Banner() {
		if _, err := fmt.Fprintln(r.out, line); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		if _, err := fmt.Fprint(r.out, Prompt); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			// 外部取消（如 Ctrl+C）
			fmt.Fprintln(r.out, InterruptedMessage)
			return nil
		case err := <-readErr:
			// 输入结束
			fmt.Fprintln(r.out)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			return nil
		case line := <-lines:
			reply, quit := Respond(line)
			r.logger.Debug("Calculation handled", "input", line, "reply", reply)
			if _, err := fmt.Fprintln(r.out, reply); err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}
