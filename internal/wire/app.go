package wire

import (
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/todokit/backend/internal/domain/events"
	"github.com/todokit/backend/internal/infrastructure/config"
	"github.com/todokit/backend/internal/infrastructure/discovery"
	applog "github.com/todokit/backend/internal/infrastructure/log"
	"github.com/todokit/backend/internal/infrastructure/metrics"
	"github.com/todokit/backend/internal/infrastructure/watcher"
	"github.com/todokit/backend/internal/infrastructure/websocket"
	"github.com/todokit/backend/internal/interfaces"
)

// App 应用主结构，组合所有服务
type App struct {
	HTTPServer *interfaces.HTTPServer
	MCPServer  *interfaces.MCPServer

	cfg           *config.Config
	discoveryCfg  *config.DiscoveryConfig
	wsHub         *websocket.Hub
	metrics       *metrics.Metrics
	advertiser    *discovery.Advertiser
	configWatcher *watcher.ConfigWatcher // 未使用配置文件时为 nil
	eventBus      events.EventBus
	logger        *slog.Logger

	unsubscribe []func()
	serveErr    chan error
	stopOnce    sync.Once
}

// NewApp 创建应用实例
func NewApp(
	cfg *config.Config,
	httpServer *interfaces.HTTPServer,
	mcpServer *interfaces.MCPServer,
	wsHub *websocket.Hub,
	m *metrics.Metrics,
	advertiser *discovery.Advertiser,
	configWatcher *watcher.ConfigWatcher,
	discoveryCfg *config.DiscoveryConfig,
	eventBus events.EventBus,
) *App {
	return &App{
		HTTPServer:    httpServer,
		MCPServer:     mcpServer,
		cfg:           cfg,
		discoveryCfg:  discoveryCfg,
		wsHub:         wsHub,
		metrics:       m,
		advertiser:    advertiser,
		configWatcher: configWatcher,
		eventBus:      eventBus,
		logger:        applog.NewModuleLogger("app", "main"),
		serveErr:      make(chan error, 1),
	}
}

// Start 启动所有服务，HTTP 服务在 listener 上运行
func (a *App) Start(listener net.Listener) error {
	if listener == nil {
		return errors.New("listener is required")
	}
	a.logger.Info("Starting todokit backend application",
		"version", a.cfg.App.Version,
		"addr", listener.Addr().String(),
	)

	// WebSocket 连接数指标
	if err := a.metrics.RegisterGauge("websocket", "clients", "Number of connected WebSocket clients.", func() float64 {
		return float64(a.wsHub.Count())
	}); err != nil {
		a.logger.Warn("Failed to register websocket gauge", "error", err)
	}

	a.setupEventSubscribers()

	if a.configWatcher != nil {
		if err := a.configWatcher.Start(); err != nil {
			a.logger.Error("Failed to start config watcher",
				"error", err,
			)
		} else {
			a.logger.Info("Config watcher started", "file", a.cfg.File)
		}
	}

	// 启动 HTTP 服务器（goroutine）
	go func() {
		if err := a.HTTPServer.Serve(listener); err != nil {
			a.logger.Error("HTTP server stopped unexpectedly",
				"error", err,
			)
			a.serveErr <- err
		}
	}()

	// 局域网广播，失败不影响主服务
	if a.discoveryCfg != nil && a.discoveryCfg.Enabled {
		a.startDiscovery(listener.Addr().String())
	}

	a.logger.Info("Todokit backend application started successfully")
	return nil
}

// Errors HTTP 服务异常退出时返回错误
func (a *App) Errors() <-chan error {
	return a.serveErr
}

func (a *App) startDiscovery(addr string) {
	port, err := discovery.PortFromAddr(addr)
	if err != nil {
		a.logger.Warn("Skip service discovery", "addr", addr, "error", err)
		return
	}
	info := discovery.BuildServiceInfo(a.discoveryCfg.Instance, a.discoveryCfg.Service, port, a.cfg.App.Version)
	if err := a.advertiser.Start(info); err != nil {
		a.logger.Warn("Failed to start service discovery", "error", err)
	}
}

// setupEventSubscribers 注册事件订阅者
func (a *App) setupEventSubscribers() {
	if a.eventBus == nil {
		return
	}

	// 配置文件变更时热更新日志级别
	unsub := a.eventBus.Subscribe(
		events.ConfigChanged,
		events.HandlerFunc(func(event events.Event) error {
			cfgEvent, ok := event.(*events.ConfigEvent)
			if !ok {
				return nil
			}
			return a.reloadConfig(cfgEvent.FilePath)
		}),
	)
	a.unsubscribe = append(a.unsubscribe, unsub)
}

// reloadConfig 重新加载配置，目前只有日志级别支持热更新
func (a *App) reloadConfig(path string) error {
	next, err := config.Load(path)
	if err != nil {
		a.logger.Warn("Ignoring invalid config change", "file", path, "error", err)
		return err
	}
	if next.Log.Level != "" {
		applog.SetLevel(next.Log.Level)
	}
	a.logger.Info("Config reloaded",
		"file", path,
		"log_level", applog.Level().String(),
	)
	return nil
}

// Stop 停止所有服务，可重复调用
func (a *App) Stop() error {
	var stopErr error
	a.stopOnce.Do(func() {
		a.logger.Info("Stopping todokit backend application")

		for _, unsub := range a.unsubscribe {
			unsub()
		}

		if a.configWatcher != nil {
			a.configWatcher.Stop()
			a.logger.Info("Config watcher stopped")
		}

		a.advertiser.Stop()

		if err := a.HTTPServer.Stop(); err != nil {
			a.logger.Error("Failed to stop HTTP server",
				"error", err,
			)
			stopErr = err
			return
		}

		a.logger.Info("Todokit backend application stopped successfully")
	})
	return stopErr
}
