package events

// Handler 事件处理器
//
// 返回的 error 只记录日志，不会重试。
type Handler interface {
	HandleEvent(event Event) error
}

// HandlerFunc 把普通函数适配为 Handler
type HandlerFunc func(event Event) error

// HandleEvent 实现 Handler 接口
func (f HandlerFunc) HandleEvent(event Event) error {
	return f(event)
}

// Publisher 事件发布方（待办服务、配置监听器）
type Publisher interface {
	// Publish 异步分发给所有订阅者，不阻塞调用方
	Publish(event Event)
}

// Subscriber 事件订阅方（WebSocket 推送、指标、配置热更新）
type Subscriber interface {
	// Subscribe 订阅一种事件，返回取消订阅函数（可重复调用）
	Subscribe(eventType EventType, handler Handler) (unsubscribe func())
	// SubscribeMultiple 用同一个处理器订阅多种事件
	SubscribeMultiple(eventTypes []EventType, handler Handler) (unsubscribe func())
}

// EventBus 进程内事件总线
type EventBus interface {
	Publisher
	Subscriber

	// Close 拒绝新事件并等待已分发的处理器返回
	Close()
}
