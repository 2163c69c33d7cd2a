package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-subscription-api/internal/application"
	"github.com/oksasatya/course-subscription-api/pkg/helpers"
	"github.com/oksasatya/course-subscription-api/pkg/response"
)

type AuthHandler struct {
	Auth    *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
}

func NewAuthHandler(auth *application.AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &AuthHandler{Auth: auth, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type signupRequest struct {
	FirstName string  `json:"first_name" binding:"required,min=3,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	Age       *int    `json:"age" binding:"omitempty,gt=0,lte=150"`
	Email     string  `json:"email" binding:"required,email,max=254"`
	Password  string  `json:"password" binding:"required,max=72,coursepwd"`
}

type signinRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Signup POST /api/user/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, h.Logger, "signup", err)
		return
	}
	u, err := h.Auth.Signup(c.Request.Context(), application.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Age:       req.Age,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		fail(c, h.Logger, "signup", err, logrus.Fields{"email": req.Email})
		return
	}
	response.Success(c, http.StatusCreated, u.Public(), "user created", nil)
}

// Signin POST /api/user/signin
// The token is returned in the body and also set as an HttpOnly cookie.
func (h *AuthHandler) Signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, h.Logger, "signin", err)
		return
	}
	sess, err := h.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, h.Logger, "signin", err, logrus.Fields{"email": req.Email})
		return
	}
	h.Cookies.SetAccess(c, sess.AccessToken, sess.ExpiresAt)
	response.Success(c, http.StatusOK, sess, "signin successful", nil)
}

// Logout POST /api/user/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}
