package infrastructure

import (
	"github.com/google/wire"
	"github.com/todokit/backend/internal/infrastructure/config"
	"github.com/todokit/backend/internal/infrastructure/discovery"
	"github.com/todokit/backend/internal/infrastructure/eventbus"
	"github.com/todokit/backend/internal/infrastructure/metrics"
	"github.com/todokit/backend/internal/infrastructure/storage"
	"github.com/todokit/backend/internal/infrastructure/watcher"
	"github.com/todokit/backend/internal/infrastructure/websocket"
)

// ProviderSet Infrastructure 层总 ProviderSet
var ProviderSet = wire.NewSet(
	config.ProviderSet,
	eventbus.ProviderSet,
	storage.ProviderSet,
	websocket.ProviderSet,
	metrics.ProviderSet,
	discovery.ProviderSet,
	watcher.ProviderSet,
)
