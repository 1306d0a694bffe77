package watcher

import (
	"github.com/google/wire"
	"github.com/todokit/backend/internal/domain/events"
	"github.com/todokit/backend/internal/infrastructure/config"
)

// ProvideConfigWatcher 提供配置文件监听器，未使用配置文件时返回 nil
func ProvideConfigWatcher(cfg *config.Config, eventBus events.EventBus) (*ConfigWatcher, error) {
	if cfg.File == "" {
		return nil, nil
	}
	return NewConfigWatcher(WatchConfig{FilePath: cfg.File}, eventBus)
}

// ProviderSet 文件监听 ProviderSet
var ProviderSet = wire.NewSet(ProvideConfigWatcher)
