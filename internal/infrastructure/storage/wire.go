package storage

import "github.com/google/wire"

// ProviderSet Storage 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideTodoRepository, // 待办事项仓储（sqlite / memory）
)
