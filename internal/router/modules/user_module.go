package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/course-subscription-api/internal/interface/http"
	"github.com/oksasatya/course-subscription-api/internal/interface/middleware"
	"github.com/oksasatya/course-subscription-api/pkg/helpers"
)

// UserModule wires the authenticated account endpoints.
// POST /api/user/subscribe, GET /api/user/me
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
	Logger  *logrus.Logger
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *UserModule {
	return &UserModule{Handler: h, JWT: jwt, Redis: rdb, Logger: logger}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/user")
	auth.Use(middleware.Auth(m.JWT, m.Logger))
	auth.Use(middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByUserID(), nil, m.Logger))
	{
		auth.POST("/subscribe", m.Handler.Subscribe)
		auth.GET("/me", m.Handler.Me)
	}
}
