package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/course-subscription-api/internal/domain/entity"
	"github.com/oksasatya/course-subscription-api/internal/domain/repository"
)

const selectUser = `
		SELECT u.id::text, u.first_name, u.last_name, u.age, u.email, u.password_hash,
		       u.subscribed, u.created_at, u.updated_at,
		       COALESCE(array_agg(uc.course_id::text ORDER BY uc.position)
		                FILTER (WHERE uc.course_id IS NOT NULL), '{}') AS courses
		FROM users u
		LEFT JOIN user_courses uc ON uc.user_id = u.id
	`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, age, email, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, subscribed, created_at, updated_at
	`, u.FirstName, u.LastName, u.Age, u.Email, u.Password)

	if err := row.Scan(&u.ID, &u.Subscribed, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if pgCode(err) == codeUniqueViolation {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	if u.CourseIDs == nil {
		u.CourseIDs = []string{}
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, selectUser+`WHERE u.id = $1 GROUP BY u.id`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, selectUser+`WHERE u.email = $1 GROUP BY u.id`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	u := &entity.User{}
	row := r.db.QueryRow(ctx, query, arg)
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func scanUser(row scanner, u *entity.User) error {
	return row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Age, &u.Email, &u.Password,
		&u.Subscribed, &u.CreatedAt, &u.UpdatedAt, &u.CourseIDs)
}

func (r *UserRepository) SetSubscribed(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET subscribed = true, updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddCourse relies on the (user_id, course_id) primary key, so concurrent
// enrollments of the same course collapse into one row.
func (r *UserRepository) AddCourse(ctx context.Context, userID, courseID string) (bool, error) {
	res, err := r.db.Exec(ctx, `
		WITH ins AS (
			INSERT INTO user_courses (user_id, course_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, course_id) DO NOTHING
			RETURNING user_id
		)
		UPDATE users SET updated_at = now()
		WHERE id = $1 AND EXISTS (SELECT 1 FROM ins)
	`, userID, courseID)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return false, repository.ErrNotFound
		}
		return false, fmt.Errorf("add course: %w", err)
	}
	return res.RowsAffected() == 1, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
