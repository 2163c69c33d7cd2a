package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/course-subscription-api/config"
	"github.com/oksasatya/course-subscription-api/internal/application"
	"github.com/oksasatya/course-subscription-api/internal/domain/entity"
	pginfra "github.com/oksasatya/course-subscription-api/internal/infrastructure/postgres"
	"github.com/oksasatya/course-subscription-api/internal/infrastructure/search"
	"github.com/oksasatya/course-subscription-api/pkg/helpers"
)

func strptr(s string) *string { return &s }
func intptr(i int) *int       { return &i }

var demoCourses = []entity.Course{
	{Title: "Go Fundamentals", Description: "Types, slices, maps and the standard toolchain.", Instructor: strptr("Rob Case"), Duration: intptr(180)},
	{Title: "Concurrency in Go", Description: "Goroutines, channels, context and the sync package.", Instructor: strptr("Ana Pike"), Duration: intptr(240)},
	{Title: "Building HTTP APIs", Description: "Routing, middleware, validation and JSON envelopes with Gin.", Instructor: strptr("Rob Case"), Duration: intptr(200)},
	{Title: "PostgreSQL for Backend Developers", Description: "Schema design, indexes and transactions with pgx.", Duration: intptr(150)},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	courses := pginfra.NewCourseRepository(pool)

	var index application.CourseIndex
	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch unavailable, courses will not be indexed")
	} else if es != nil {
		index = search.NewCourseIndex(es, cfg.ESCoursesIndex)
	}

	existing, err := courses.List(ctx)
	if err != nil {
		logger.Fatalf("failed to list courses: %v", err)
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c.Title] = true
	}
	for _, c := range demoCourses {
		if have[c.Title] {
			continue
		}
		if err := courses.Create(ctx, &c); err != nil {
			logger.Fatalf("failed to seed course %q: %v", c.Title, err)
		}
		if index != nil {
			if err := index.Index(ctx, &c); err != nil {
				logger.WithError(err).WithField("course_id", c.ID).Warn("index course failed")
			}
		}
		logger.WithFields(map[string]any{"course_id": c.ID, "title": c.Title}).Info("seeded course")
	}

	const email, password = "demo@courses.local", "Passw0rd#"
	creds := application.NewCredentialStore(users)
	u, err := creds.FindByEmail(ctx, email)
	if err != nil {
		logger.Fatalf("failed to look up demo user: %v", err)
	}
	if u == nil {
		u, err = creds.Create(ctx, application.NewUser{FirstName: "Demo", Email: email, Password: password})
		if err != nil {
			logger.Fatalf("failed to seed demo user: %v", err)
		}
	}
	if err := users.SetSubscribed(ctx, u.ID); err != nil {
		logger.Fatalf("failed to subscribe demo user: %v", err)
	}
	logger.WithFields(map[string]any{"user_id": u.ID, "email": email}).Infof("demo user ready (password %s)", password)
}
