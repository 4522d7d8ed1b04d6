package common

import (
	"fedforum/internal/pkg/common"
	"fedforum/internal/pkg/registry"
)

// CommonModule registers the instance-level routes.
type CommonModule struct{}

func init() {
	registry.Register(&CommonModule{})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 100
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	handler := common.NewHandler(ctx.DB, ctx.Redis)

	ctx.Router.GET("/health", handler.Health)
	ctx.Router.GET("/.well-known/nodeinfo", handler.WellKnownNodeInfo)
	ctx.Router.GET("/nodeinfo/2.0.json", handler.NodeInfo)
	return nil
}
