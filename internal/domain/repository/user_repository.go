package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/course-subscription-api/internal/domain/entity"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository defines the interface for user-related storage operations.
// Implementations return ErrNotFound for missing rows and ErrDuplicateEmail on
// unique email violations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// SetSubscribed flips the subscription flag on.
	SetSubscribed(ctx context.Context, id string) error
	// AddCourse atomically appends courseID to the user's course set.
	// It reports false when the reference was already present.
	AddCourse(ctx context.Context, userID, courseID string) (bool, error)
}
