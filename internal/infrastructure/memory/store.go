// Package memory implements the domain repositories on top of process memory.
// It backs STORE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/course-subscription-api/internal/domain/entity"
	"github.com/oksasatya/course-subscription-api/internal/domain/repository"
)

// Store holds users and courses behind a single mutex; every read and
// read-modify-write happens under it, so AddCourse is atomic per user.
type Store struct {
	mu      sync.Mutex
	users   map[string]*entity.User
	byEmail map[string]string
	courses map[string]*entity.Course
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:   map[string]*entity.User{},
		byEmail: map[string]string{},
		courses: map[string]*entity.Course{},
		now:     time.Now,
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Courses returns the course repository view of the store.
func (s *Store) Courses() *CourseRepository { return &CourseRepository{s: s} }

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[u.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	now := s.now()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.CourseIDs == nil {
		u.CourseIDs = []string{}
	}
	s.users[u.ID] = cloneUser(u)
	s.byEmail[u.Email] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	id, ok := r.s.byEmail[email]
	r.s.mu.Unlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) SetSubscribed(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Subscribed = true
	u.UpdatedAt = r.s.now()
	return nil
}

func (r *UserRepository) AddCourse(_ context.Context, userID, courseID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if u.HasCourse(courseID) {
		return false, nil
	}
	u.CourseIDs = append(u.CourseIDs, courseID)
	u.UpdatedAt = r.s.now()
	return true, nil
}

type CourseRepository struct{ s *Store }

func (r *CourseRepository) Create(_ context.Context, c *entity.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = uuid.NewString()
	c.CreatedAt = r.s.now()
	cp := *c
	r.s.courses[c.ID] = &cp
	return nil
}

func (r *CourseRepository) GetByID(_ context.Context, id string) (*entity.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CourseRepository) GetByIDs(_ context.Context, ids []string) ([]entity.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entity.Course, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.s.courses[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *CourseRepository) List(_ context.Context) ([]entity.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.sortedCourses(func(entity.Course) bool { return true }, 0), nil
}

func (r *CourseRepository) Search(_ context.Context, q string, limit int) ([]entity.Course, error) {
	needle := strings.ToLower(q)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.sortedCourses(func(c entity.Course) bool {
		if strings.Contains(strings.ToLower(c.Title), needle) || strings.Contains(strings.ToLower(c.Description), needle) {
			return true
		}
		return c.Instructor != nil && strings.Contains(strings.ToLower(*c.Instructor), needle)
	}, limit), nil
}

func (r *CourseRepository) UpdateCoverURL(_ context.Context, id, url string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.CoverURL = url
	return nil
}

// sortedCourses must be called with mu held. Newest first, ties by id.
func (s *Store) sortedCourses(keep func(entity.Course) bool, limit int) []entity.Course {
	out := make([]entity.Course, 0, len(s.courses))
	for _, c := range s.courses {
		if keep(*c) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func cloneUser(u *entity.User) *entity.User {
	cp := *u
	cp.CourseIDs = slices.Clone(u.CourseIDs)
	if cp.CourseIDs == nil {
		cp.CourseIDs = []string{}
	}
	return &cp
}

var (
	_ repository.UserRepository   = (*UserRepository)(nil)
	_ repository.CourseRepository = (*CourseRepository)(nil)
)
