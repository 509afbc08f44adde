package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeroclasses/zero-backend/internal/middleware"
	"github.com/zeroclasses/zero-backend/internal/model"
	"github.com/zeroclasses/zero-backend/internal/response"
	"github.com/zeroclasses/zero-backend/internal/service"
)

type stubQuizzes struct{ quiz *model.Quiz }

func (s stubQuizzes) GetForAttempt(_ context.Context, id uuid.UUID) (*model.Quiz, error) {
	if s.quiz.ID != id {
		return nil, service.ErrQuizNotFound
	}
	q := *s.quiz
	return &q, nil
}

type stubEnrollments struct{}

func (stubEnrollments) IsEnrolled(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return true, nil
}

type flakyRecorder struct {
	mu   sync.Mutex
	down bool
}

func (r *flakyRecorder) Create(context.Context, model.QuizResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down {
		return errors.New("database unavailable")
	}
	return nil
}

func (r *flakyRecorder) setDown(v bool) {
	r.mu.Lock()
	r.down = v
	r.mu.Unlock()
}

type attemptEnvelope struct {
	Data struct {
		Attempt *service.AttemptView `json:"attempt"`
	} `json:"data"`
	Error *response.ErrorBody `json:"error"`
}

func newAttemptRouter(t *testing.T, recorder *flakyRecorder) (*gin.Engine, *service.AttemptService, service.Actor, *model.Quiz) {
	t.Helper()
	quiz := &model.Quiz{
		ID:        uuid.New(),
		CourseID:  uuid.New(),
		Title:     "Go basics",
		TimeLimit: 1,
		Questions: []model.Question{
			{ID: uuid.New(), Text: "q1", Options: []string{"a", "b"}, CorrectIndex: 1},
			{ID: uuid.New(), Text: "q2", Options: []string{"a", "b"}, CorrectIndex: 0},
		},
	}
	svc := service.NewAttemptService(
		service.AttemptConfig{TickInterval: time.Hour, Retention: time.Hour},
		stubQuizzes{quiz: quiz},
		stubEnrollments{},
		recorder,
		nil,
		zerolog.Nop(),
	)
	t.Cleanup(svc.Shutdown)

	student := service.Actor{ID: uuid.New(), Name: "Sam", Role: model.RoleStudent}
	h := NewAttemptHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyClaims, &service.Claims{UserID: student.ID, Name: student.Name, Role: student.Role})
		c.Next()
	})
	r.POST("/attempts/:id/submit", h.Submit)
	r.POST("/attempts/:id/save", h.SaveResult)
	return r, svc, student, quiz
}

func postAttempt(t *testing.T, r *gin.Engine, path string) (int, attemptEnvelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
	var body attemptEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestAttemptHandler_UnsavedResultStillReturnsAttempt(t *testing.T) {
	recorder := &flakyRecorder{down: true}
	r, svc, student, quiz := newAttemptRouter(t, recorder)

	view, _, err := svc.Start(context.Background(), student, quiz.ID)
	require.NoError(t, err)
	base := "/attempts/" + view.ID.String()

	code, body := postAttempt(t, r, base+"/submit")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	require.NotNil(t, body.Error)
	assert.Equal(t, response.ErrResultNotSaved, body.Error.Code)
	require.NotNil(t, body.Data.Attempt)
	require.NotNil(t, body.Data.Attempt.Result)
	assert.False(t, body.Data.Attempt.ResultSaved)
	resultID := body.Data.Attempt.Result.ID

	code, body = postAttempt(t, r, base+"/save")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	require.NotNil(t, body.Data.Attempt)
	assert.Equal(t, resultID, body.Data.Attempt.Result.ID)

	recorder.setDown(false)
	code, body = postAttempt(t, r, base+"/save")
	assert.Equal(t, http.StatusOK, code)
	assert.Nil(t, body.Error)
	require.NotNil(t, body.Data.Attempt)
	assert.True(t, body.Data.Attempt.ResultSaved)
}

func TestAttemptHandler_OtherErrorsCarryNoData(t *testing.T) {
	r, _, _, _ := newAttemptRouter(t, &flakyRecorder{})

	code, body := postAttempt(t, r, "/attempts/"+uuid.New().String()+"/submit")
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, body.Error)
	assert.Equal(t, response.ErrNotFound, body.Error.Code)
	assert.Nil(t, body.Data.Attempt)
}
