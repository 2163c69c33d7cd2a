package router

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-subscription-api/config"
	"github.com/oksasatya/course-subscription-api/internal/application"
	"github.com/oksasatya/course-subscription-api/internal/container"
	repo "github.com/oksasatya/course-subscription-api/internal/domain/repository"
	"github.com/oksasatya/course-subscription-api/internal/infrastructure/search"
	"github.com/oksasatya/course-subscription-api/internal/infrastructure/storage"
	handlers "github.com/oksasatya/course-subscription-api/internal/interface/http"
	"github.com/oksasatya/course-subscription-api/internal/router/modules"
	"github.com/oksasatya/course-subscription-api/pkg/helpers"
)

// Deps is everything the modules need. Optional collaborators stay nil when
// their infrastructure is not configured.
type Deps struct {
	Config  *config.Config
	Logger  *logrus.Logger
	JWT     *helpers.JWTManager
	Users   repo.UserRepository
	Courses repo.CourseRepository

	Cache   *redis.Client // course list cache
	Limiter *redis.Client // rate limiting

	Publisher application.Publisher
	Index     application.CourseIndex
	Covers    application.CoverStore
}

// DepsFromContainer collects the singletons set up in main.
func DepsFromContainer() Deps {
	cfg := container.GetConfig()
	d := Deps{
		Config:  cfg,
		Logger:  container.GetLogger(),
		JWT:     container.GetJWT(),
		Users:   container.GetUserRepo(),
		Courses: container.GetCourseRepo(),
		Cache:   container.GetRedis(),
	}
	if cfg.RateLimitEnabled {
		d.Limiter = container.GetRedis()
	}
	if pub := container.GetRabbitPub(); pub != nil && cfg.MailSendEnabled {
		d.Publisher = pub
	}
	if es := container.GetES(); es != nil {
		d.Index = search.NewCourseIndex(es, cfg.ESCoursesIndex)
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		d.Covers = storage.NewGCSCoverStore(gcs, cfg.GCSBucket)
	}
	return d
}

// InitModules builds services and handlers from d and registers every module.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, d Deps) {
	if d.Logger == nil {
		d.Logger = helpers.NewNopLogger()
	}
	notifier := application.NewNotifier(d.Publisher, d.Config.AppName, d.Logger)
	creds := application.NewCredentialStore(d.Users)
	auth := application.NewAuthService(creds, d.JWT, notifier, d.Logger)
	enroll := application.NewEnrollmentService(creds, d.Courses, notifier, d.Logger)
	courses := application.NewCourseService(d.Courses, d.Cache, d.Config.CourseCacheTTL, d.Index, d.Covers, d.Logger)

	authHandler := handlers.NewAuthHandler(auth, d.Logger, d.Config.CookieDomain, d.Config.CookieSecure)
	userHandler := handlers.NewUserHandler(creds, enroll, d.Logger)
	courseHandler := handlers.NewCourseHandler(courses, enroll, d.Logger)

	r.Add(modules.NewHealthModule())
	r.Add(modules.NewAuthModule(authHandler, d.Limiter, d.Logger))
	r.Add(modules.NewUserModule(userHandler, d.JWT, d.Limiter, d.Logger))
	r.Add(modules.NewCourseModule(courseHandler, d.JWT, creds, d.Limiter, d.Logger))
	if d.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(d.Limiter, d.Logger))
	}
}
