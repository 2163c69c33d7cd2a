package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-subscription-api/internal/domain/entity"
	repo "github.com/oksasatya/course-subscription-api/internal/domain/repository"
	"github.com/oksasatya/course-subscription-api/pkg/apperr"
	"github.com/oksasatya/course-subscription-api/pkg/helpers"
)

// The catalog is cached under courses:all:<generation>. Writers bump the
// generation, so a List that read the database before a write can only
// repopulate a generation nobody reads anymore.
const (
	courseListGenerationKey = "courses:all:generation"
	courseListCacheKeyFmt   = "courses:all:%d"
)

// CourseIndex is a full-text index over the catalog.
type CourseIndex interface {
	Index(ctx context.Context, c *entity.Course) error
	Search(ctx context.Context, q string, size int) ([]entity.Course, error)
}

// CoverStore keeps course cover images and returns their public URL.
type CoverStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

type CourseService struct {
	Repo     repo.CourseRepository
	Redis    *redis.Client
	CacheTTL time.Duration
	Index    CourseIndex
	Covers   CoverStore
	Logger   *logrus.Logger
}

func NewCourseService(r repo.CourseRepository, rdb *redis.Client, cacheTTL time.Duration, index CourseIndex, covers CoverStore, logger *logrus.Logger) *CourseService {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &CourseService{Repo: r, Redis: rdb, CacheTTL: cacheTTL, Index: index, Covers: covers, Logger: logger}
}

type CreateCourseInput struct {
	Title       string
	Description string
	Instructor  *string
	Duration    *int
}

// List returns the whole catalog, newest first, through the Redis cache when configured.
func (s *CourseService) List(ctx context.Context) ([]entity.Course, error) {
	key, err := s.listCacheKey(ctx)
	if err != nil {
		s.Logger.WithError(err).Warn("course cache generation read failed")
	}
	if key != "" {
		var cached []entity.Course
		ok, err := helpers.RedisGetJSON(ctx, s.Redis, key, &cached)
		if err != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("course cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	courses, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list courses", err)
	}

	if key != "" {
		if err := helpers.RedisSetJSON(ctx, s.Redis, key, courses, s.CacheTTL); err != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("course cache write failed")
		}
	}
	return courses, nil
}

func (s *CourseService) Get(ctx context.Context, id string) (*entity.Course, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrCourseNotFound
	}
	c, err := s.Repo.GetByID(ctx, parsed.String())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, apperr.Internal("get course", err)
	}
	return c, nil
}

func (s *CourseService) Create(ctx context.Context, in CreateCourseInput) (*entity.Course, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	c := &entity.Course{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Instructor:  in.Instructor,
		Duration:    in.Duration,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, apperr.Internal("create course", err)
	}
	coursesCreated.Add(1)
	s.invalidateList(ctx)
	s.index(ctx, c)
	s.Logger.WithFields(logrus.Fields{"course_id": c.ID, "title": c.Title}).Info("course created")
	return c, nil
}

// Search uses the full-text index when available and falls back to the store.
func (s *CourseService) Search(ctx context.Context, q string, size int) ([]entity.Course, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperr.Validation("query is required")
	}
	if s.Index != nil {
		hits, err := s.Index.Search(ctx, q, size)
		if err == nil {
			return hits, nil
		}
		s.Logger.WithError(err).Warn("course index search failed, falling back to store")
	}
	courses, err := s.Repo.Search(ctx, q, size)
	if err != nil {
		return nil, apperr.Internal("search courses", err)
	}
	return courses, nil
}

// UploadCover stores an image under courses/<id>/ and records its URL on the course.
func (s *CourseService) UploadCover(ctx context.Context, id string, r io.Reader, filename, contentType string) (*entity.Course, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Covers == nil {
		return nil, ErrCoverStorageDisabled
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperr.Validation("cover must be an image")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("courses", c.ID, uuid.NewString()+ext))
	url, err := s.Covers.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		return nil, apperr.Internal("upload cover", err)
	}
	if err := s.Repo.UpdateCoverURL(ctx, c.ID, url); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, apperr.Internal("save cover url", err)
	}
	c.CoverURL = url
	s.invalidateList(ctx)
	s.index(ctx, c)
	return c, nil
}

// listCacheKey returns "" when caching is off or the generation is unreadable.
func (s *CourseService) listCacheKey(ctx context.Context) (string, error) {
	if s.Redis == nil {
		return "", nil
	}
	gen, err := s.Redis.Get(ctx, courseListGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		gen, err = 0, nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(courseListCacheKeyFmt, gen), nil
}

func (s *CourseService) invalidateList(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	prev, _ := s.listCacheKey(ctx)
	if err := s.Redis.Incr(ctx, courseListGenerationKey).Err(); err != nil {
		s.Logger.WithError(err).WithField("key", courseListGenerationKey).Warn("course cache invalidation failed")
		return
	}
	if prev != "" {
		if err := helpers.RedisDel(ctx, s.Redis, prev); err != nil {
			s.Logger.WithError(err).WithField("key", prev).Warn("course cache cleanup failed")
		}
	}
}

func (s *CourseService) index(ctx context.Context, c *entity.Course) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, c); err != nil {
		s.Logger.WithError(err).WithField("course_id", c.ID).Warn("course index failed")
	}
}
