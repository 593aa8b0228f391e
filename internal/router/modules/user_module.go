package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"socialite/internal/container"
	handlers "socialite/internal/interface/http"
	"socialite/internal/interface/middleware"
)

// UserModule wires registration and login.
// Public: POST /api/register, POST /api/login
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	// Both endpoints run bcrypt; keep limits tight per IP and path.
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)
}
