package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-subscription-api/pkg/helpers"
	"github.com/oksasatya/course-subscription-api/pkg/response"
)

// Gin context keys set by Auth.
const (
	CtxUserIDKey    = "userID"
	CtxUserEmailKey = "userEmail"
)

// Auth validates the access token from the Authorization header, falling back
// to the access_token cookie. It sets userID and userEmail in the Gin context
// on success and answers 401 otherwise.
func Auth(jwt *helpers.JWTManager, logger *logrus.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			logger.WithFields(requestFields(c)).Info("missing access token")
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			logger.WithFields(requestFields(c)).WithError(err).Info("invalid access token")
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}

		c.Set(CtxUserIDKey, claims.UserID())
		c.Set(CtxUserEmailKey, claims.Email)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	token, err := c.Cookie(helpers.AccessCookie)
	if err != nil {
		return ""
	}
	return token
}

func requestFields(c *gin.Context) logrus.Fields {
	f := logrus.Fields{
		"request_id": c.GetString(CtxRequestIDKey),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}
	if uid := c.GetString(CtxUserIDKey); uid != "" {
		f["user_id"] = uid
	}
	return f
}
