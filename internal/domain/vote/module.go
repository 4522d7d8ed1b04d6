package vote

import (
	communityrepository "fedforum/internal/domain/community/repository"
	communityservice "fedforum/internal/domain/community/service"
	personrepository "fedforum/internal/domain/person/repository"
	postrepository "fedforum/internal/domain/post/repository"
	"fedforum/internal/domain/vote/handler"
	"fedforum/internal/domain/vote/repository"
	"fedforum/internal/domain/vote/service"
	"fedforum/internal/pkg/middleware"
	"fedforum/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// VoteModule wires vote submission for local users.
type VoteModule struct{}

func init() {
	registry.Register(&VoteModule{})
}

func (m *VoteModule) Name() string {
	return "vote"
}

func (m *VoteModule) Priority() int {
	return 10
}

func (m *VoteModule) Init(ctx *registry.ModuleContext) error {
	votes := repository.NewVoteRepository(ctx.DB)
	posts := postrepository.NewPostRepository(ctx.DB)
	persons := personrepository.NewPersonRepository(ctx.DB)
	communities := communityservice.NewCommunityService(communityrepository.NewCommunityRepository(ctx.DB))

	voteService := service.NewVoteService(votes, posts, persons, communities, ctx.Delivery, ctx.Metrics)
	voteHandler := handler.NewVoteHandler(voteService)

	setupRoutes(ctx.Router, voteHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.VoteHandler) {
	g := r.Group("/post")
	g.Use(middleware.AuthMiddleware())
	{
		g.POST("/like", h.LikePost)
	}
}
