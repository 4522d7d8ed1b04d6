package apub

import (
	"fedforum/internal/domain/apub/fetcher"
	"fedforum/internal/domain/apub/handler"
	"fedforum/internal/domain/apub/service"
	communityrepository "fedforum/internal/domain/community/repository"
	personrepository "fedforum/internal/domain/person/repository"
	postrepository "fedforum/internal/domain/post/repository"
	"fedforum/internal/pkg/config"
	"fedforum/internal/pkg/middleware"
	"fedforum/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// ApubModule wires the inbound federation surface.
type ApubModule struct{}

func init() {
	registry.Register(&ApubModule{})
}

func (m *ApubModule) Name() string {
	return "apub"
}

func (m *ApubModule) Priority() int {
	return 20
}

func (m *ApubModule) Init(ctx *registry.ModuleContext) error {
	fedCfg := config.GlobalConfig.Federation

	communities := communityrepository.NewCommunityRepository(ctx.DB)
	persons := personrepository.NewPersonRepository(ctx.DB)
	posts := postrepository.NewPostRepository(ctx.DB)

	deref := fetcher.NewHTTPDereferencer(ctx.Cache, communities, persons, fedCfg.ActorCacheTTL)
	resolver := service.NewCommunityResolver(deref, fedCfg.DereferenceTimeout, ctx.Metrics)
	pages := service.NewPageService(posts, resolver, deref)
	dispatcher := service.NewDispatcher(pages)

	inbox := handler.NewInboxHandler(dispatcher, ctx.Metrics)

	setupRoutes(ctx.Router, inbox)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.InboxHandler) {
	// Remote peers push here unauthenticated, so keep a rate limit on it.
	limiter := middleware.NewIPRateLimiter(10, 20)

	g := r.Group("")
	g.Use(middleware.RateLimitMiddleware(limiter))
	{
		g.POST("/inbox", h.Receive)
		g.POST("/c/:name/inbox", h.Receive)
	}
}
