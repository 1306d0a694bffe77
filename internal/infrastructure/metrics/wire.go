package metrics

import (
	"github.com/google/wire"
	"github.com/todokit/backend/internal/domain/events"
)

// ProvideMetrics 创建指标集合并订阅待办事件，cleanup 取消订阅
func ProvideMetrics(bus events.EventBus) (*Metrics, func()) {
	m := NewMetrics()
	unsubscribe := bus.SubscribeMultiple(events.TodoEventTypes, m)
	return m, unsubscribe
}

// ProviderSet 指标 ProviderSet
var ProviderSet = wire.NewSet(ProvideMetrics)
