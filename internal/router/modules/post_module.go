package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"socialite/internal/container"
	handlers "socialite/internal/interface/http"
	"socialite/internal/interface/middleware"
	"socialite/pkg/helpers"
)

// PostModule wires the post aggregate routes and the new-post event stream.
// Public: GET /api/posts, GET /api/posts/:id, GET /api/posts/stream,
// GET /api/posts/search
// Protected: POST /api/posts, DELETE /api/posts/:id, comment and like routes
type PostModule struct {
	Handler *handlers.PostHandler
	Tokens  *helpers.TokenManager
}

func NewPostModule(h *handlers.PostHandler, tokens *helpers.TokenManager) *PostModule {
	return &PostModule{Handler: h, Tokens: tokens}
}

func (m *PostModule) Register(rg *gin.RouterGroup) {
	readLimiter := middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	rg.GET("/posts", readLimiter, m.Handler.List)
	rg.GET("/posts/stream", m.Handler.Stream)
	rg.GET("/posts/search", readLimiter, m.Handler.Search)
	rg.GET("/posts/:id", readLimiter, m.Handler.Get)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/posts", m.Handler.Create)
		auth.DELETE("/posts/:id", m.Handler.Delete)
		auth.POST("/posts/:id/comments", m.Handler.AddComment)
		auth.DELETE("/posts/:id/comments/:commentId", m.Handler.DeleteComment)
		auth.POST("/posts/:id/like", m.Handler.Like)
	}
}
