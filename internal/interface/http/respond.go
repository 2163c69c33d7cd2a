package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-subscription-api/internal/interface/middleware"
	"github.com/oksasatya/course-subscription-api/pkg/apperr"
	"github.com/oksasatya/course-subscription-api/pkg/helpers"
	"github.com/oksasatya/course-subscription-api/pkg/response"
	"github.com/oksasatya/course-subscription-api/pkg/validation"
)

func logFields(c *gin.Context, op string) logrus.Fields {
	f := logrus.Fields{
		"op":         op,
		"request_id": c.GetString(middleware.CtxRequestIDKey),
		"path":       c.Request.URL.Path,
	}
	if uid := c.GetString(middleware.CtxUserIDKey); uid != "" {
		f["user_id"] = uid
	}
	return f
}

// fail logs err with request context and writes the mapped envelope.
// Internal causes go to the log only.
func fail(c *gin.Context, logger *logrus.Logger, op string, err error, extra logrus.Fields) {
	fields := logFields(c, op)
	for k, v := range extra {
		fields[k] = v
	}
	if apperr.KindOf(err) == apperr.KindInternal {
		helpers.LogError(logger, op+" failed", err, fields)
	} else {
		logger.WithFields(fields).WithField("reason", apperr.MessageOf(err)).Info(op + " rejected")
	}
	response.FromError(c, err)
}

func badPayload(c *gin.Context, logger *logrus.Logger, op string, err error) {
	details := validation.ToDetails(err)
	logger.WithFields(logFields(c, op)).WithField("fields", details).Info(op + " invalid payload")
	response.Error[any](c, http.StatusBadRequest, "invalid payload", details)
}
