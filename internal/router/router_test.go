package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeroclasses/zero-backend/internal/config"
	"github.com/zeroclasses/zero-backend/internal/handler"
	"github.com/zeroclasses/zero-backend/internal/middleware"
	"github.com/zeroclasses/zero-backend/internal/service"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		GinMode:   "test",
		UploadDir: t.TempDir(),
		JWTSecret: "router-test-secret",
		JWTExpiry: time.Hour,
	}
	auth := service.NewAuthService(cfg, nil, nil)
	handlers := &Handlers{
		Auth:       handler.NewAuthHandler(auth, nil),
		AdminUser:  handler.NewAdminUserHandler(nil),
		Course:     handler.NewCourseHandler(nil),
		Quiz:       handler.NewQuizHandler(nil),
		Attempt:    handler.NewAttemptHandler(nil),
		Assignment: handler.NewAssignmentHandler(nil),
		Media:      handler.NewMediaHandler(nil),
		Setting:    handler.NewSettingHandler(nil),
		Dashboard:  handler.NewDashboardHandler(nil),
		WS:         handler.NewWSHandler(nil, zerolog.Nop(), nil),
	}
	return SetupRouter(auth, handlers, cfg, middleware.NewRateLimiter(2, time.Minute), zerolog.Nop())
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodGet, "/api/v1/courses"},
		{http.MethodPost, "/api/v1/quizzes/0b9c1f7e-2f4e-4c55-9a57-3f2f4a6d2b10/attempts"},
		{http.MethodPut, "/api/v1/attempts/0b9c1f7e-2f4e-4c55-9a57-3f2f4a6d2b10/answers/0"},
		{http.MethodGet, "/api/v1/admin/users"},
		{http.MethodGet, "/ws/v1/attempts/0b9c1f7e-2f4e-4c55-9a57-3f2f4a6d2b10/stream"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_RejectsForgedToken(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_INVALID")
}

func TestRouter_AuthRoutesAreRateLimited(t *testing.T) {
	r := newTestRouter(t)

	var last int
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
		last = w.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
