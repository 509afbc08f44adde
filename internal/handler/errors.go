package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zeroclasses/zero-backend/internal/assessment"
	"github.com/zeroclasses/zero-backend/internal/response"
	"github.com/zeroclasses/zero-backend/internal/service"
)

type errMapping struct {
	target error
	status int
	code   response.ErrCode
}

// serviceErrors maps service sentinels to HTTP responses. First match wins.
var serviceErrors = []errMapping{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
	{service.ErrSessionRevoked, http.StatusUnauthorized, response.ErrSessionInvalidated},
	{service.ErrOTPInvalid, http.StatusBadRequest, response.ErrOTPInvalid},
	{service.ErrOTPNotVerified, http.StatusForbidden, response.ErrOTPRequired},
	{service.ErrInvalidAdminSecret, http.StatusForbidden, response.ErrInvalidAdminSecret},
	{service.ErrEmailTaken, http.StatusConflict, response.ErrEmailTaken},
	{service.ErrInvalidRole, http.StatusBadRequest, response.ErrValidation},
	{service.ErrSelfModification, http.StatusForbidden, response.ErrActionForbidden},

	{service.ErrUserNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrCourseNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrMaterialNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrScheduleNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrQuizNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrAttemptNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrAssignmentNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrSubmissionNotFound, http.StatusNotFound, response.ErrNotFound},

	{service.ErrNotCourseOwner, http.StatusForbidden, response.ErrNotCourseOwner},
	{service.ErrNotSubmissionOwner, http.StatusForbidden, response.ErrForbidden},
	{service.ErrStudentsOnly, http.StatusForbidden, response.ErrStudentAccessOnly},
	{service.ErrNotEnrolled, http.StatusForbidden, response.ErrNotEnrolled},
	{service.ErrCourseNotPublished, http.StatusConflict, response.ErrCourseNotPublished},
	{service.ErrInvalidTransition, http.StatusConflict, response.ErrInvalidTransition},
	{service.ErrNotGraded, http.StatusConflict, response.ErrActionForbidden},

	{service.ErrInvalidQuestion, http.StatusBadRequest, response.ErrValidation},
	{assessment.ErrNoQuestions, http.StatusBadRequest, response.ErrNoQuestions},
	{assessment.ErrQuestionOutOfRange, http.StatusBadRequest, response.ErrValidation},
	{assessment.ErrOptionOutOfRange, http.StatusBadRequest, response.ErrValidation},
	{assessment.ErrSubmitted, http.StatusConflict, response.ErrAttemptSubmitted},
	{service.ErrAttemptInProgress, http.StatusConflict, response.ErrAttemptActive},
	{service.ErrResultNotSaved, http.StatusServiceUnavailable, response.ErrResultNotSaved},

	{service.ErrUnsupportedFileType, http.StatusBadRequest, response.ErrUnsupportedFile},
	{service.ErrFileTooLarge, http.StatusBadRequest, response.ErrFileTooLarge},
}

// statusFor resolves a service error to its HTTP status and code. Unknown
// errors are 500s.
func statusFor(err error) (int, response.ErrCode) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, response.ErrInternal
}

// failWith writes the response for a service error. Unknown errors are
// attached to the context for the request logger.
func failWith(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	response.Fail(c, status, code)
}

// failWithAttempt is failWith for attempt actions that finished but could
// not store their result: the client still gets the attempt, score included.
func failWithAttempt(c *gin.Context, err error, view *service.AttemptView) {
	if view == nil || !errors.Is(err, service.ErrResultNotSaved) {
		failWith(c, err)
		return
	}
	status, code := statusFor(err)
	response.FailWithData(c, status, code, gin.H{"attempt": view})
}

// paramUUID parses a UUID path parameter, writing a 400 when it is malformed.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
