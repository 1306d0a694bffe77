// @title Todo API
// @version 1.0.0
// @description A simple Todo API with CRUD operations, filtering, search and pagination
// @host localhost:8000
// @BasePath /api/v1
// @schemes http
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/todokit/backend/internal/infrastructure/config"
	applog "github.com/todokit/backend/internal/infrastructure/log"
	"github.com/todokit/backend/internal/infrastructure/singleton"
	"github.com/todokit/backend/internal/wire"
)

var (
	configFile string
	port       string

	rootCmd = &cobra.Command{
		Use:           "todokit",
		Short:         "Todo API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP, WebSocket and MCP server",
		RunE:  runServe,
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE:  runConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default <data dir>/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&port, "port", "p", "", "listen port, overrides server.http_port")
	rootCmd.AddCommand(serveCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig 加载配置并应用命令行覆盖
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.HTTPPort = port
	}
	return cfg, nil
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out, err := config.Dump(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// 初始化日志系统
	applog.Init(applog.NewConfigFromEnv().Override(cfg.Log.Level, cfg.Log.Format))
	defer applog.Close()
	logger := applog.GetLogger()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 单例锁检查：占用端口，已有健康实例时直接退出
	listener, err := singleton.CheckAndLock(cfg.Server.HTTPPort)
	if errors.Is(err, singleton.ErrAlreadyRunning) {
		logger.Info("Another instance is already running, exiting",
			"addr", cfg.Server.HTTPPort,
		)
		return nil
	}
	if err != nil {
		return err
	}

	// Wire 自动生成的初始化函数
	app, cleanup, err := wire.InitializeAll(cfg)
	if err != nil {
		_ = listener.Close()
		logger.Error("Failed to initialize application",
			"error", err,
		)
		return err
	}
	defer cleanup()

	if err := app.Start(listener); err != nil {
		_ = listener.Close()
		logger.Error("Failed to start application",
			"error", err,
		)
		return err
	}

	// 优雅关闭
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down application...")
	case serveErr = <-app.Errors():
	}

	if err := app.Stop(); err != nil {
		logger.Error("Error during application shutdown",
			"error", err,
		)
	}
	logger.Info("Application stopped")
	return serveErr
}
