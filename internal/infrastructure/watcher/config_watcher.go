// Package watcher 提供配置文件监听功能
package watcher

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/todokit/backend/internal/domain/events"
	"github.com/todokit/backend/internal/infrastructure/log"
)

// DefaultDebounceDelay 默认防抖延迟
const DefaultDebounceDelay = 500 * time.Millisecond

// WatchConfig ConfigWatcher 配置
type WatchConfig struct {
	// FilePath 被监听的配置文件
	FilePath string
	// DebounceDelay 防抖延迟
	DebounceDelay time.Duration
}

// ConfigWatcher 配置文件监听器
//
// 监听文件所在目录而不是文件本身，编辑器以 rename 方式保存时也能收到事件。
type ConfigWatcher struct {
	config   WatchConfig
	target   string
	eventBus events.EventBus
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	// 防抖相关
	debounceTimer *time.Timer
	debounceMu    sync.Mutex

	// 控制
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewConfigWatcher 创建配置文件监听器
func NewConfigWatcher(config WatchConfig, eventBus events.EventBus) (*ConfigWatcher, error) {
	if config.FilePath == "" {
		return nil, errors.New("config watcher requires a file path")
	}
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = DefaultDebounceDelay
	}

	target, err := filepath.Abs(config.FilePath)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &ConfigWatcher{
		config:   config,
		target:   target,
		eventBus: eventBus,
		watcher:  watcher,
		logger:   log.NewModuleLogger("watcher", "config_watcher"),
		stopCh:   make(chan struct{}),
	}, nil
}

// Start 启动监听
func (cw *ConfigWatcher) Start() error {
	dir := filepath.Dir(cw.target)
	if err := cw.watcher.Add(dir); err != nil {
		return err
	}

	cw.logger.Info("Watching config file", "path", cw.target)

	// 启动事件处理循环
	cw.wg.Add(1)
	go cw.watchLoop()
	return nil
}

// Stop 停止监听
func (cw *ConfigWatcher) Stop() {
	cw.stopOnce.Do(func() {
		close(cw.stopCh)
		cw.watcher.Close()
		cw.wg.Wait()

		// 取消防抖定时器
		cw.debounceMu.Lock()
		if cw.debounceTimer != nil {
			cw.debounceTimer.Stop()
		}
		cw.debounceMu.Unlock()

		cw.logger.Info("Config watcher stopped")
	})
}

// watchLoop 事件监听循环
func (cw *ConfigWatcher) watchLoop() {
	defer cw.wg.Done()

	for {
		select {
		case <-cw.stopCh:
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			cw.handleFsEvent(event)

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Error("Watcher error", "error", err)
		}
	}
}

// handleFsEvent 只处理目标文件的写入和创建
func (cw *ConfigWatcher) handleFsEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != cw.target {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	cw.debounceMu.Lock()
	defer cw.debounceMu.Unlock()

	// 取消之前的定时器
	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	cw.debounceTimer = time.AfterFunc(cw.config.DebounceDelay, cw.emit)
}

// emit 发布配置变更事件
func (cw *ConfigWatcher) emit() {
	select {
	case <-cw.stopCh:
		return
	default:
	}

	cw.eventBus.Publish(&events.ConfigEvent{
		FilePath:  cw.target,
		EventTime: time.Now(),
	})
	cw.logger.Debug("Config change event emitted", "path", cw.target)
}
