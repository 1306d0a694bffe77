package handler

import (
	"github.com/google/wire"
	appTodo "github.com/todokit/backend/internal/application/todo"
)

// ProviderSet Handler ProviderSet
var ProviderSet = wire.NewSet(
	NewTodoHandler,
	NewStreamHandler,
	NewSystemHandler,
	wire.Bind(new(Pinger), new(*appTodo.Service)),
)
