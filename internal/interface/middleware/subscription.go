package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-subscription-api/internal/domain/entity"
	"github.com/oksasatya/course-subscription-api/pkg/helpers"
	"github.com/oksasatya/course-subscription-api/pkg/response"
)

// UserFinder resolves a user id to its record, or nil when unknown.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

const (
	reasonAuthRequired         = "authentication required"
	reasonSubscriptionRequired = "subscription required"
)

// RequireSubscription lets the request through only when the identity set by
// Auth belongs to a subscribed user. The flag is re-read on every request.
// Both denials answer 403; only the log line tells them apart.
func RequireSubscription(finder UserFinder, logger *logrus.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return func(c *gin.Context) {
		uid := c.GetString(CtxUserIDKey)
		if uid == "" {
			logger.WithFields(requestFields(c)).Warn("access denied: no identity on request")
			response.Error[any](c, http.StatusForbidden, reasonAuthRequired, nil)
			return
		}

		u, err := finder.FindByID(c.Request.Context(), uid)
		if err != nil {
			helpers.LogError(logger, "subscription check failed", err, requestFields(c))
			response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
			return
		}
		if u == nil || !u.Subscribed {
			logger.WithFields(requestFields(c)).WithField("user_found", u != nil).Warn("access denied: user not subscribed")
			response.Error[any](c, http.StatusForbidden, reasonSubscriptionRequired, nil)
			return
		}
		c.Next()
	}
}
