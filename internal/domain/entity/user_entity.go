package entity

import (
	"slices"
	"time"
)

// User is the aggregate root for the learner domain.
// Password always holds a bcrypt hash once persisted; it is never serialized.
// CourseIDs is an insertion-ordered set of course references.
type User struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   *string   `json:"last_name,omitempty"`
	Age        *int      `json:"age,omitempty"`
	Email      string    `json:"email"`
	Password   string    `json:"-"`
	CourseIDs  []string  `json:"courses"`
	Subscribed bool      `json:"subscribed"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasCourse reports whether courseID is already referenced.
func (u *User) HasCourse(courseID string) bool {
	return slices.Contains(u.CourseIDs, courseID)
}

// Public returns a copy safe to hand to callers: no password hash, own course slice.
func (u *User) Public() *User {
	cp := *u
	cp.Password = ""
	cp.CourseIDs = slices.Clone(u.CourseIDs)
	if cp.CourseIDs == nil {
		cp.CourseIDs = []string{}
	}
	return &cp
}

// UserWithCourses is a user whose course references were resolved to full records.
type UserWithCourses struct {
	*User
	Courses []Course `json:"enrolled_courses"`
}
