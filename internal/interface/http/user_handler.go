package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"socialite/internal/application"
	"socialite/pkg/apperr"
	"socialite/pkg/response"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// Input validation happens in the service via the pure validators, so the
// request structs bind without constraints and all field errors accumulate.
type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperr.WithDetails(apperr.InvalidInput, "invalid payload", map[string]string{"payload": "invalid json"}))
		return
	}
	out, err := h.Svc.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		h.logInternal(err, "register failed")
		response.Fail(c, err)
		return
	}
	response.OK(c, http.StatusCreated, authPayload(out), "user registered")
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apperr.WithDetails(apperr.InvalidInput, "invalid payload", map[string]string{"payload": "invalid json"}))
		return
	}
	out, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		// Never reveal whether the username exists: unknown user and bad
		// password both surface the same generic 401.
		switch apperr.KindOf(err) {
		case apperr.NotFound, apperr.Unauthenticated:
			response.Fail(c, apperr.New(apperr.Unauthenticated, "wrong credentials"))
		default:
			h.logInternal(err, "login failed")
			response.Fail(c, err)
		}
		return
	}
	response.OK(c, http.StatusOK, authPayload(out), "login successful")
}

func (h *UserHandler) logInternal(err error, msg string) {
	if h.Logger != nil && apperr.KindOf(err) == apperr.Internal {
		h.Logger.WithError(err).Error(msg)
	}
}

func authPayload(out *application.AuthPayload) gin.H {
	return gin.H{
		"id":        out.User.ID,
		"username":  out.User.Username,
		"email":     out.User.Email,
		"token":     out.Token,
		"createdAt": out.User.CreatedAt,
	}
}
