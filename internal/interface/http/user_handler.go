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

type UserHandler struct {
	Store  *application.CredentialStore
	Enroll *application.EnrollmentService
	Logger *logrus.Logger
}

func NewUserHandler(store *application.CredentialStore, enroll *application.EnrollmentService, logger *logrus.Logger) *UserHandler {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &UserHandler{Store: store, Enroll: enroll, Logger: logger}
}

// Subscribe POST /api/user/subscribe
func (h *UserHandler) Subscribe(c *gin.Context) {
	u, err := h.Enroll.SubscribeUser(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		fail(c, h.Logger, "subscribe", err, nil)
		return
	}
	response.Success(c, http.StatusOK, u.Public(), "subscription active", nil)
}

// Me GET /api/user/me
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.Store.FindByID(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err == nil && u == nil {
		err = application.ErrUserNotFound
	}
	if err != nil {
		fail(c, h.Logger, "profile", err, nil)
		return
	}
	response.Success(c, http.StatusOK, u.Public(), "profile", nil)
}
