package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/course-subscription-api/internal/domain/entity"
	"github.com/oksasatya/course-subscription-api/internal/domain/repository"
)

const courseColumns = `id::text, title, description, instructor, duration, cover_url, created_at`

type CourseRepository struct {
	db DBTX
}

func NewCourseRepository(db DBTX) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, c *entity.Course) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO courses (title, description, instructor, duration)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, cover_url, created_at
	`, c.Title, c.Description, c.Instructor, c.Duration)
	if err := row.Scan(&c.ID, &c.CoverURL, &c.CreatedAt); err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*entity.Course, error) {
	c := &entity.Course{}
	row := r.db.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
	if err := scanCourse(row, c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select course: %w", err)
	}
	return c, nil
}

func (r *CourseRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Course, error) {
	if len(ids) == 0 {
		return []entity.Course{}, nil
	}
	return r.list(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = ANY($1::uuid[])`, ids)
}

func (r *CourseRepository) List(ctx context.Context) ([]entity.Course, error) {
	return r.list(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY created_at DESC`)
}

func (r *CourseRepository) Search(ctx context.Context, q string, limit int) ([]entity.Course, error) {
	pattern := "%" + escapeLike(q) + "%"
	return r.list(ctx, `
		SELECT `+courseColumns+`
		FROM courses
		WHERE title ILIKE $1 OR description ILIKE $1 OR instructor ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2
	`, pattern, limit)
}

func (r *CourseRepository) UpdateCoverURL(ctx context.Context, id, url string) error {
	res, err := r.db.Exec(ctx, `UPDATE courses SET cover_url = $1 WHERE id = $2`, url, id)
	if err != nil {
		return fmt.Errorf("update cover: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CourseRepository) list(ctx context.Context, query string, args ...any) ([]entity.Course, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	out := make([]entity.Course, 0)
	for rows.Next() {
		var c entity.Course
		if err := scanCourse(rows, &c); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}
	return out, nil
}

func scanCourse(row scanner, c *entity.Course) error {
	return row.Scan(&c.ID, &c.Title, &c.Description, &c.Instructor, &c.Duration, &c.CoverURL, &c.CreatedAt)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var _ repository.CourseRepository = (*CourseRepository)(nil)
