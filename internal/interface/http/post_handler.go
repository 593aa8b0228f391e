package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"socialite/internal/application"
	"socialite/internal/domain/entity"
	"socialite/internal/notify"
	"socialite/pkg/apperr"
	"socialite/pkg/response"
)

type PostHandler struct {
	Svc    *application.PostService
	Broker notify.Broker
	Logger *logrus.Logger
}

func NewPostHandler(svc *application.PostService, broker notify.Broker, logger *logrus.Logger) *PostHandler {
	return &PostHandler{Svc: svc, Broker: broker, Logger: logger}
}

type createPostRequest struct {
	Body string `json:"body"`
}

type addCommentRequest struct {
	Body string `json:"body"`
}

// identity rebuilds the authenticated actor from the context keys the auth
// middleware sets.
func identity(c *gin.Context) application.Identity {
	return application.Identity{
		ID:       c.GetString("userID"),
		Username: c.GetString("userName"),
		Email:    c.GetString("userEmail"),
	}
}

func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.logInternal(err, "list posts failed")
		response.Fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(posts))
	for _, p := range posts {
		out = append(out, postPayload(p))
	}
	response.OK(c, http.StatusOK, out, "posts")
}

func (h *PostHandler) Get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, postPayload(p), "post")
}

func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperr.WithDetails(apperr.InvalidInput, "invalid payload", map[string]string{"payload": "invalid json"}))
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), req.Body, identity(c))
	if err != nil {
		h.logInternal(err, "create post failed")
		response.Fail(c, err)
		return
	}
	response.OK(c, http.StatusCreated, postPayload(p), "post created")
}

func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id"), identity(c)); err != nil {
		h.logInternal(err, "delete post failed")
		response.Fail(c, err)
		return
	}
	response.OK[any](c, http.StatusOK, nil, "post deleted successfully")
}

func (h *PostHandler) AddComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperr.WithDetails(apperr.InvalidInput, "invalid payload", map[string]string{"payload": "invalid json"}))
		return
	}
	p, err := h.Svc.AddComment(c.Request.Context(), c.Param("id"), req.Body, identity(c))
	if err != nil {
		h.logInternal(err, "add comment failed")
		response.Fail(c, err)
		return
	}
	response.OK(c, http.StatusCreated, postPayload(p), "comment added")
}

func (h *PostHandler) DeleteComment(c *gin.Context) {
	p, err := h.Svc.DeleteComment(c.Request.Context(), c.Param("id"), c.Param("commentId"), identity(c))
	if err != nil {
		h.logInternal(err, "delete comment failed")
		response.Fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, postPayload(p), "comment deleted")
}

func (h *PostHandler) Like(c *gin.Context) {
	p, err := h.Svc.ToggleLike(c.Request.Context(), c.Param("id"), identity(c))
	if err != nil {
		h.logInternal(err, "toggle like failed")
		response.Fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, postPayload(p), "like toggled")
}

func (h *PostHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		h.logInternal(err, "search posts failed")
		response.Fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, hits, "search results")
}

// Stream delivers new posts to the client as server-sent events. Each
// connection gets its own subscription starting at the moment of connect;
// there is no replay.
func (h *PostHandler) Stream(c *gin.Context) {
	ch, cancel, err := h.Broker.Subscribe(c.Request.Context(), notify.TopicNewPost)
	if err != nil {
		h.logInternal(err, "subscribe failed")
		response.Fail(c, apperr.Wrap(err, "subscribing to new posts"))
		return
	}
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case p, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("new_post", postPayload(p))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *PostHandler) logInternal(err error, msg string) {
	if h.Logger != nil && apperr.KindOf(err) == apperr.Internal {
		h.Logger.WithError(err).Error(msg)
	}
}

func postPayload(p *entity.Post) gin.H {
	return gin.H{
		"id":           p.ID,
		"body":         p.Body,
		"username":     p.Username,
		"user":         p.UserID,
		"createdAt":    p.CreatedAt,
		"comments":     p.Comments,
		"likes":        p.Likes,
		"likeCount":    p.LikeCount(),
		"commentCount": p.CommentCount(),
	}
}
