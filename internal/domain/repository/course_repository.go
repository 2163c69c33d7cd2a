package repository

import (
	"context"

	"github.com/oksasatya/course-subscription-api/internal/domain/entity"
)

// CourseRepository defines the storage operations for the course catalog.
type CourseRepository interface {
	Create(ctx context.Context, c *entity.Course) error
	GetByID(ctx context.Context, id string) (*entity.Course, error)
	// GetByIDs returns the stored courses among ids, in no particular order.
	GetByIDs(ctx context.Context, ids []string) ([]entity.Course, error)
	List(ctx context.Context) ([]entity.Course, error)
	// Search matches q case-insensitively against title, description and instructor.
	Search(ctx context.Context, q string, limit int) ([]entity.Course, error)
	UpdateCoverURL(ctx context.Context, id, url string) error
}
