package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/todokit/backend/internal/domain/calculator"
	"github.com/todokit/backend/internal/interfaces/cli/calc"
)

var (
	plain bool

	rootCmd = &cobra.Command{
		Use:           "calc",
		Short:         "Interactive calculator: number operator number",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runInteractive,
	}

	evalCmd = &cobra.Command{
		Use:   "eval <number> <operator> <number>",
		Short: "Evaluate one calculation and print the result",
		Example: `  calc eval 2 + 3
  calc eval 2 '**' 10`,
		Args: cobra.MinimumNArgs(1),
		RunE: runEval,
	}
)

func init() {
	rootCmd.Flags().BoolVar(&plain, "plain", false, "use the line-based prompt instead of the full-screen UI")
	rootCmd.AddCommand(evalCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// runInteractive 终端下默认使用 TUI，管道输入或 --plain 时使用行式 REPL
func runInteractive(cmd *cobra.Command, _ []string) error {
	fd := os.Stdin.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	if tty && !plain {
		return calc.RunTUI()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return calc.NewREPL(cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
}

func runEval(cmd *cobra.Command, args []string) error {
	line := strings.Join(args, " ")
	result, err := calculator.Calculate(line)
	if err != nil {
		return errors.New(calc.ErrorMessage(line, err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), calculator.Format(result))
	return nil
}
