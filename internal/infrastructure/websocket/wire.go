package websocket

import "github.com/google/wire"

// ProvideHub 提供已启动的 Hub，cleanup 关闭所有连接
func ProvideHub() (*Hub, func()) {
	hub := NewHub()
	hub.Start()
	return hub, hub.Stop
}

// ProviderSet WebSocket ProviderSet
var ProviderSet = wire.NewSet(ProvideHub)
