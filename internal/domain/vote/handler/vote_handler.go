package handler

import (
	"errors"
	"net/http"

	communityservice "fedforum/internal/domain/community/service"
	"fedforum/internal/domain/vote/service"
	"fedforum/internal/pkg/config"
	"fedforum/internal/pkg/middleware"
	"fedforum/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type VoteHandler struct {
	service service.VoteService
}

func NewVoteHandler(s service.VoteService) *VoteHandler {
	return &VoteHandler{service: s}
}

// LikeInput is a vote submission.
type LikeInput struct {
	PostID string `json:"postId" binding:"required"`
	Score  int16  `json:"score"`
}

// LikePost applies a like, dislike, or retraction to a post.
func (h *VoteHandler) LikePost(c *gin.Context) {
	var input LikeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	personID := c.GetString(middleware.CtxPersonID)
	site := config.GlobalConfig.Site

	err := h.service.ApplyVote(c.Request.Context(), personID, input.PostID, input.Score, site)
	switch {
	case err == nil:
		response.Success(c, nil)
	case errors.Is(err, service.ErrDownvotesDisabled):
		response.Fail(c, response.ErrDownvotesDisabled, err.Error())
	case errors.Is(err, service.ErrPostNotFound):
		response.Error(c, http.StatusNotFound, response.ErrPostNotFound, err.Error())
	case errors.Is(err, communityservice.ErrActorBanned):
		response.Error(c, http.StatusForbidden, response.ErrActorBanned, err.Error())
	case errors.Is(err, communityservice.ErrCommunityUnavailable):
		response.Error(c, http.StatusForbidden, response.ErrCommunityUnavailable, err.Error())
	case errors.Is(err, service.ErrVoteWriteFailed):
		response.Error(c, http.StatusInternalServerError, response.ErrVoteWriteFailed, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.Error(c, http.StatusNotFound, response.ErrInvalidParam, "unknown person or community")
	default:
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
	}
}
