package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-subscription-api/internal/application"
	"github.com/oksasatya/course-subscription-api/internal/interface/middleware"
	"github.com/oksasatya/course-subscription-api/pkg/helpers"
	"github.com/oksasatya/course-subscription-api/pkg/response"
)

const maxCoverBytes = 5 << 20

type CourseHandler struct {
	Courses *application.CourseService
	Enroll  *application.EnrollmentService
	Logger  *logrus.Logger
}

func NewCourseHandler(courses *application.CourseService, enroll *application.EnrollmentService, logger *logrus.Logger) *CourseHandler {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &CourseHandler{Courses: courses, Enroll: enroll, Logger: logger}
}

type addCourseRequest struct {
	CourseID string `json:"course_id" binding:"required"`
}

type searchQuery struct {
	Q    string `form:"q" binding:"required,max=200"`
	Size int    `form:"size" binding:"omitempty,gte=1,lte=50"`
}

type createCourseRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description" binding:"max=5000"`
	Instructor  *string `json:"instructor" binding:"omitempty,max=200"`
	Duration    *int    `json:"duration" binding:"omitempty,gt=0"`
}

// List GET /api/courses
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.Courses.List(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, "list courses", err, nil)
		return
	}
	response.Success(c, http.StatusOK, courses, "courses", map[string]any{"count": len(courses)})
}

// UserCourses GET /api/courses/user
func (h *CourseHandler) UserCourses(c *gin.Context) {
	uwc, err := h.Enroll.FindUserWithCourses(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		fail(c, h.Logger, "user courses", err, nil)
		return
	}
	response.Success(c, http.StatusOK, uwc.Courses, "user courses", map[string]any{"course_ids": uwc.CourseIDs})
}

// Add POST /api/courses/add {course_id}
func (h *CourseHandler) Add(c *gin.Context) {
	var req addCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, h.Logger, "add course", err)
		return
	}
	u, err := h.Enroll.AddCourseToUser(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req.CourseID)
	if err != nil {
		fail(c, h.Logger, "add course", err, logrus.Fields{"course_id": req.CourseID})
		return
	}
	response.Success(c, http.StatusOK, u.Public(), "course added", nil)
}

// Search GET /api/courses/search?q=&size=
func (h *CourseHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badPayload(c, h.Logger, "search courses", err)
		return
	}
	courses, err := h.Courses.Search(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		fail(c, h.Logger, "search courses", err, logrus.Fields{"q": q.Q})
		return
	}
	response.Success(c, http.StatusOK, courses, "search results", map[string]any{"count": len(courses)})
}

// Get GET /api/courses/:id
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.Courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, "get course", err, logrus.Fields{"course_id": c.Param("id")})
		return
	}
	response.Success(c, http.StatusOK, course, "course", nil)
}

// Create POST /api/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, h.Logger, "create course", err)
		return
	}
	course, err := h.Courses.Create(c.Request.Context(), application.CreateCourseInput{
		Title:       req.Title,
		Description: req.Description,
		Instructor:  req.Instructor,
		Duration:    req.Duration,
	})
	if err != nil {
		fail(c, h.Logger, "create course", err, nil)
		return
	}
	response.Success(c, http.StatusCreated, course, "course created", nil)
}

// UploadCover POST /api/courses/:id/cover (multipart field "file")
func (h *CourseHandler) UploadCover(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCoverBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "file is required", map[string]string{"file": "is required"})
		return
	}
	if fh.Size > maxCoverBytes {
		response.Error[any](c, http.StatusBadRequest, "file too large", map[string]string{"file": "must be at most 5MB"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, h.Logger, "upload cover", err, nil)
		return
	}
	defer func() { _ = f.Close() }()

	course, err := h.Courses.UploadCover(c.Request.Context(), c.Param("id"), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		fail(c, h.Logger, "upload cover", err, logrus.Fields{"course_id": c.Param("id")})
		return
	}
	response.Success(c, http.StatusOK, course, "cover uploaded", nil)
}
