package eventbus

import (
	"github.com/google/wire"
	"github.com/todokit/backend/internal/domain/events"
)

// ProvideEventBus 提供事件总线实例，cleanup 等待处理中的事件
func ProvideEventBus() (events.EventBus, func()) {
	bus := NewEventBus()
	return bus, bus.Close
}

// ProviderSet 事件总线 ProviderSet
var ProviderSet = wire.NewSet(ProvideEventBus)
