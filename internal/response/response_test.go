package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		page, perPage, total int
		wantPages            int
	}{
		{1, 10, 0, 0},
		{1, 10, 10, 1},
		{2, 10, 11, 2},
		{1, 0, 5, 0},
	}
	for _, tt := range tests {
		p := NewPagination(tt.page, tt.perPage, tt.total)
		assert.Equal(t, tt.wantPages, p.TotalPages)
		assert.Equal(t, tt.total, p.TotalItems)
	}
}

func TestFail_UsesEnvelopeAndRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		Fail(c, http.StatusServiceUnavailable, ErrResultNotSaved)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrResultNotSaved, body.Error.Code)
	assert.Equal(t, GetMessage(ErrResultNotSaved), body.Error.Message)
	assert.Equal(t, "req-123", body.Metadata.RequestID)
	assert.Nil(t, body.Data)
}

func TestFailWithData_KeepsPayload(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		FailWithData(c, http.StatusServiceUnavailable, ErrResultNotSaved, gin.H{"score": 2})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body struct {
		Data  map[string]int `json:"data"`
		Error *ErrorBody     `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrResultNotSaved, body.Error.Code)
	assert.Equal(t, 2, body.Data["score"])
}

func TestSuccess_GeneratesRequestID(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		Success(c, http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Metadata.RequestID)
	assert.Nil(t, body.Error)
}

func TestGetMessage_KnownCodesHaveMessages(t *testing.T) {
	fallback := GetMessage("SOMETHING_ELSE")
	for _, code := range []ErrCode{
		ErrNoQuestions, ErrAttemptSubmitted, ErrResultNotSaved, ErrEmailTaken,
		ErrOTPInvalid, ErrNotEnrolled, ErrValidation, ErrInternal,
	} {
		assert.NotEqual(t, fallback, GetMessage(code), code)
	}
}
