package handler

import (
	"skillswap/internal/app/chat"
	"skillswap/internal/app/identity"
	"skillswap/internal/app/views"
	"skillswap/internal/configs"
	"skillswap/internal/pkg/metrics"
)

// AppDeps carries everything the handlers need. The identity store is the only
// holder of session state; handlers read it and call its mutating operations.
type AppDeps struct {
	Config   *configs.AppConfig
	Identity *identity.Store
	Views    *views.Set
	Chat     *chat.Channel
	Metrics  *metrics.Metrics
}
