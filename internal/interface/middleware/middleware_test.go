package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/course-subscription-api/internal/domain/entity"
	"github.com/oksasatya/course-subscription-api/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

type envelope struct {
	Status    int    `json:"status"`
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type finderFunc func(ctx context.Context, id string) (*entity.User, error)

func (f finderFunc) FindByID(ctx context.Context, id string) (*entity.User, error) { return f(ctx, id) }

func newAuthRouter(jwt *helpers.JWTManager) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/me", Auth(jwt, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetString(CtxUserIDKey), "email": c.GetString(CtxUserEmailKey)})
	})
	return r
}

func TestAuth_BearerToken(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	token, _, err := jwt.GenerateAccessToken("u1", "a@b.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := serve(newAuthRouter(jwt), req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"u1","email":"a@b.com"}`, w.Body.String())
}

func TestAuth_CookieFallback(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	token, _, err := jwt.GenerateAccessToken("u1", "a@b.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: helpers.AccessCookie, Value: token})
	w := serve(newAuthRouter(jwt), req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_Rejects(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	otherKey, _, _ := helpers.NewJWTManager("other", time.Hour).GenerateAccessToken("u1", "a@b.com")
	expired, _, _ := helpers.NewJWTManager("secret", -time.Minute).GenerateAccessToken("u1", "a@b.com")

	cases := map[string]string{
		"missing":      "",
		"wrong key":    "Bearer " + otherKey,
		"expired":      "Bearer " + expired,
		"garbage":      "Bearer not.a.token",
		"wrong scheme": "Basic dXNlcjpwYXNz",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := serve(newAuthRouter(jwt), req)
			require.Equal(t, http.StatusUnauthorized, w.Code)
			env := decode(t, w)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.RequestID)
		})
	}
}

func newGuardRouter(finder UserFinder, uid string) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if uid != "" {
			c.Set(CtxUserIDKey, uid)
		}
		c.Next()
	})
	r.GET("/courses", RequireSubscription(finder, nil), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestRequireSubscription(t *testing.T) {
	users := map[string]*entity.User{
		"sub":   {ID: "sub", Subscribed: true},
		"unsub": {ID: "unsub"},
	}
	finder := finderFunc(func(_ context.Context, id string) (*entity.User, error) {
		return users[id], nil
	})

	cases := []struct {
		name    string
		uid     string
		code    int
		message string
	}{
		{"subscribed", "sub", http.StatusOK, ""},
		{"not subscribed", "unsub", http.StatusForbidden, "subscription required"},
		{"unknown user", "ghost", http.StatusForbidden, "subscription required"},
		{"no identity", "", http.StatusForbidden, "authentication required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(newGuardRouter(finder, tc.uid), httptest.NewRequest(http.MethodGet, "/courses", nil))
			require.Equal(t, tc.code, w.Code)
			if tc.message != "" {
				assert.Equal(t, tc.message, decode(t, w).Message)
			}
		})
	}
}

func TestRequireSubscription_StoreError(t *testing.T) {
	finder := finderFunc(func(context.Context, string) (*entity.User, error) {
		return nil, errors.New("connection reset")
	})
	w := serve(newGuardRouter(finder, "u1"), httptest.NewRequest(http.MethodGet, "/courses", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestIDKey)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(HeaderRequestID))

	incoming := "7f1b3c1e-59d4-4c43-9a3b-64c7c1b1a001"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, incoming)
	assert.Equal(t, incoming, serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "<script>")
	assert.NotEqual(t, "<script>", serve(r, req).Body.String())
}

func TestRealIP(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRealIPKey)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-Connecting-IP", "198.51.100.2")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "198.51.100.2", serve(r, req).Body.String())
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.Use(RealIP())
	r.POST("/signin", RateLimit(rdb, 2, time.Minute, KeyByIPAndPath(), nil, nil), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	call := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/signin", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		return serve(r, req)
	}

	first := call()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, call().Code)

	third := call()
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "0", third.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, third.Header().Get("Retry-After"))

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, call().Code)
}

func TestRateLimit_AllowAndFailOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.Use(RealIP())
	r.GET("/", RateLimit(rdb, 1, time.Minute, KeyByIP(), AllowAny(AllowPrivateIP()), nil), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "10.1.2.3")
		assert.Equal(t, http.StatusOK, serve(r, req).Code)
	}

	mr.Close()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestRateLimit_NilClientDisabled(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimit(nil, 1, time.Minute, KeyByIP(), nil, nil), func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}
