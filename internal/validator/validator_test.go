package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeroclasses/zero-backend/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
	Setup()
}

func bindBody(t *testing.T, body string, dst interface{}) map[string]string {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return Bind(c, dst)
}

func TestBind_QuizCorrectIndex(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{
			name: "valid",
			body: `{"title":"Algebra","time_limit_minutes":10,"questions":[
				{"text":"1+1","options":["1","2","3","4"],"correct_index":1}]}`,
		},
		{
			name: "correct index past options",
			body: `{"title":"Algebra","time_limit_minutes":10,"questions":[
				{"text":"1+1","options":["1","2","3","4"],"correct_index":1},
				{"text":"2+2","options":["1","2","3","4"],"correct_index":4}]}`,
			wantField: "questions[1].correct_index",
		},
		{
			name:      "no questions",
			body:      `{"title":"Algebra","time_limit_minutes":10,"questions":[]}`,
			wantField: "questions",
		},
		{
			name: "three options",
			body: `{"title":"Algebra","time_limit_minutes":10,"questions":[
				{"text":"1+1","options":["1","2","3"],"correct_index":0}]}`,
			wantField: "questions[0].options",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req model.SaveQuizRequest
			fields := bindBody(t, tt.body, &req)
			if tt.wantField == "" {
				assert.Nil(t, fields)
				return
			}
			require.NotNil(t, fields)
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestBind_TranslatedMessage(t *testing.T) {
	var req model.LoginRequest
	fields := bindBody(t, `{"email":"not-an-email","password":"x"}`, &req)
	require.NotNil(t, fields)
	assert.Equal(t, "email must be a valid email address", fields["email"])
}

func TestBind_MalformedJSON(t *testing.T) {
	var req model.LoginRequest
	fields := bindBody(t, `{"email":`, &req)
	require.NotNil(t, fields)
	assert.Contains(t, fields, "detail")
}
