package application

import "github.com/oksasatya/course-subscription-api/pkg/apperr"

var (
	ErrEmailExists        = apperr.Conflict("email already exists")
	ErrInvalidCredentials = apperr.Unauthorized("invalid credentials")
	ErrUserNotFound       = apperr.NotFound("user not found")
	ErrCourseNotFound     = apperr.NotFound("course not found")
	ErrInvalidCourseID    = apperr.NotFound("course id is invalid")
	ErrPasswordTooLong    = apperr.Validation("password must be at most 72 bytes")

	ErrCoverStorageDisabled = apperr.Internal("cover storage is not configured", nil)
)
