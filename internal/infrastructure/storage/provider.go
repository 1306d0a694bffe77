package storage

import (
	"fmt"

	"github.com/todokit/backend/internal/domain/todo"
	"github.com/todokit/backend/internal/infrastructure/config"
	"github.com/todokit/backend/internal/infrastructure/log"
)

// ProvideTodoRepository 按配置创建仓储，返回的 cleanup 负责关闭数据库
func ProvideTodoRepository(cfg *config.Config) (todo.Repository, func(), error) {
	logger := log.NewModuleLogger("storage", "provider")

	switch cfg.Database.Driver {
	case "memory":
		logger.Info("Using in-memory todo store")
		return NewMemoryTodoRepository(), func() {}, nil
	case "sqlite", "":
		db, err := OpenDB(cfg.DBPath())
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := db.Close(); err != nil {
				logger.Warn("Failed to close database", "error", err)
			}
		}
		return NewTodoRepository(db), cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}
