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

// CourseModule wires the catalog and enrollment endpoints. Every route needs
// a valid token and an active subscription.
type CourseModule struct {
	Handler *handlers.CourseHandler
	JWT     *helpers.JWTManager
	Users   middleware.UserFinder
	Redis   *redis.Client
	Logger  *logrus.Logger
}

func NewCourseModule(h *handlers.CourseHandler, jwt *helpers.JWTManager, users middleware.UserFinder, rdb *redis.Client, logger *logrus.Logger) *CourseModule {
	return &CourseModule{Handler: h, JWT: jwt, Users: users, Redis: rdb, Logger: logger}
}

func (m *CourseModule) Register(rg *gin.RouterGroup) {
	courses := rg.Group("/courses")
	courses.Use(
		middleware.Auth(m.JWT, m.Logger),
		middleware.RequireSubscription(m.Users, m.Logger),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil, m.Logger),
	)
	{
		courses.GET("", m.Handler.List)
		courses.GET("/user", m.Handler.UserCourses)
		courses.GET("/search", m.Handler.Search)
		courses.POST("/add", m.Handler.Add)
		courses.POST("", m.Handler.Create)
		courses.GET("/:id", m.Handler.Get)
		courses.POST("/:id/cover", m.Handler.UploadCover)
	}
}
