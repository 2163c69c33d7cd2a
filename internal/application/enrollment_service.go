package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-subscription-api/internal/domain/entity"
	repo "github.com/oksasatya/course-subscription-api/internal/domain/repository"
	"github.com/oksasatya/course-subscription-api/pkg/apperr"
	"github.com/oksasatya/course-subscription-api/pkg/helpers"
)

// EnrollmentService manages the subscription flag and the user's course set.
type EnrollmentService struct {
	Store    *CredentialStore
	Courses  repo.CourseRepository
	Notifier *Notifier
	Logger   *logrus.Logger
}

func NewEnrollmentService(store *CredentialStore, courses repo.CourseRepository, notifier *Notifier, logger *logrus.Logger) *EnrollmentService {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &EnrollmentService{Store: store, Courses: courses, Notifier: notifier, Logger: logger}
}

// SubscribeUser sets the subscription flag. Calling it again is a no-op.
func (s *EnrollmentService) SubscribeUser(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if u.Subscribed {
		return u, nil
	}
	if err := s.Store.Repo.SetSubscribed(ctx, u.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Internal("subscribe user", err)
	}
	u.Subscribed = true
	subscriptionsTotal.Add(1)
	s.Logger.WithField("user_id", u.ID).Info("subscription activated")
	s.Notifier.SubscriptionActivated(ctx, u)
	return u, nil
}

// AddCourseToUser appends courseID to the user's course set unless it is
// already there. The course itself is not looked up before the write.
func (s *EnrollmentService) AddCourseToUser(ctx context.Context, userID, courseID string) (*entity.User, error) {
	parsed, err := uuid.Parse(courseID)
	if err != nil {
		return nil, ErrInvalidCourseID
	}
	courseID = parsed.String()

	u, err := s.Store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if u.HasCourse(courseID) {
		return u, nil
	}

	added, err := s.Store.Repo.AddCourse(ctx, u.ID, courseID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Internal("add course to user", err)
	}
	// A concurrent request may have won the insert; the set already holds the id either way.
	if !u.HasCourse(courseID) {
		u.CourseIDs = append(u.CourseIDs, courseID)
	}
	if added {
		enrollmentsTotal.Add(1)
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "course_id": courseID}).Info("course added to user")
		s.Notifier.CourseEnrolled(ctx, u, courseID, s.courseTitle(ctx, courseID))
	}
	return u, nil
}

func (s *EnrollmentService) courseTitle(ctx context.Context, id string) string {
	if s.Courses == nil {
		return ""
	}
	c, err := s.Courses.GetByID(ctx, id)
	if err != nil {
		return ""
	}
	return c.Title
}

// FindUserWithCourses resolves the user's course references into full course
// records, keeping enrollment order. References to missing courses are dropped.
func (s *EnrollmentService) FindUserWithCourses(ctx context.Context, userID string) (*entity.UserWithCourses, error) {
	u, err := s.Store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	found, err := s.Courses.GetByIDs(ctx, u.CourseIDs)
	if err != nil {
		return nil, apperr.Internal("load user courses", err)
	}
	byID := make(map[string]entity.Course, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	courses := make([]entity.Course, 0, len(u.CourseIDs))
	for _, id := range u.CourseIDs {
		if c, ok := byID[id]; ok {
			courses = append(courses, c)
		}
	}
	return &entity.UserWithCourses{User: u.Public(), Courses: courses}, nil
}
