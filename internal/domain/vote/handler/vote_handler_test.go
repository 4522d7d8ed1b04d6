package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fedforum/internal/domain/vote/service"
	"fedforum/internal/pkg/config"
	"fedforum/internal/pkg/middleware"
	"fedforum/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockVoteService struct {
	mock.Mock
}

func (m *MockVoteService) ApplyVote(ctx context.Context, personID, postID string, score int16, site config.SiteConfig) error {
	args := m.Called(ctx, personID, postID, score, site)
	return args.Error(0)
}

func setupRouter(svc service.VoteService, personID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/post/like", func(c *gin.Context) {
		c.Set(middleware.CtxPersonID, personID)
	}, NewVoteHandler(svc).LikePost)
	return r
}

func performLike(r *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/post/like", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLikePost(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockVoteService)
		svc.On("ApplyVote", mock.Anything, "person-1", "post-1", int16(1), mock.Anything).Return(nil)
		r := setupRouter(svc, "person-1")

		w := performLike(r, LikeInput{PostID: "post-1", Score: 1})

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Missing post ID", func(t *testing.T) {
		svc := new(MockVoteService)
		r := setupRouter(svc, "person-1")

		w := performLike(r, map[string]interface{}{"score": 1})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "ApplyVote",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Downvotes disabled maps to business code", func(t *testing.T) {
		svc := new(MockVoteService)
		svc.On("ApplyVote", mock.Anything, "person-1", "post-1", int16(-1), mock.Anything).
			Return(service.ErrDownvotesDisabled)
		r := setupRouter(svc, "person-1")

		w := performLike(r, LikeInput{PostID: "post-1", Score: -1})

		assert.Equal(t, http.StatusOK, w.Code)
		var envelope response.Response
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.Equal(t, response.ErrDownvotesDisabled, envelope.Code)
	})

	t.Run("Unknown post is 404", func(t *testing.T) {
		svc := new(MockVoteService)
		svc.On("ApplyVote", mock.Anything, "person-1", "missing", int16(1), mock.Anything).
			Return(service.ErrPostNotFound)
		r := setupRouter(svc, "person-1")

		w := performLike(r, LikeInput{PostID: "missing", Score: 1})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
