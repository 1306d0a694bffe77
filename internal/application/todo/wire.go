package todo

import "github.com/google/wire"

// ProviderSet 待办应用服务 ProviderSet
var ProviderSet = wire.NewSet(
	NewService,
)
