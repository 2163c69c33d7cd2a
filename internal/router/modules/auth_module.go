package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/course-subscription-api/internal/interface/http"
	"github.com/oksasatya/course-subscription-api/internal/interface/middleware"
)

// AuthModule wires the public credential endpoints.
// POST /api/user/signup, POST /api/user/signin, POST /api/user/logout
type AuthModule struct {
	Handler *handlers.AuthHandler
	Redis   *redis.Client
	Logger  *logrus.Logger
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client, logger *logrus.Logger) *AuthModule {
	return &AuthModule{Handler: h, Redis: rdb, Logger: logger}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	signupLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), nil, m.Logger)  // 5 req/min per IP
	signinLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil, m.Logger) // 10 req/min per IP

	user := rg.Group("/user")
	user.POST("/signup", signupLimiter, m.Handler.Signup)
	user.POST("/signin", signinLimiter, m.Handler.Signin)
	user.POST("/logout", m.Handler.Logout)
}
