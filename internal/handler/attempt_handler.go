package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zeroclasses/zero-backend/internal/middleware"
	"github.com/zeroclasses/zero-backend/internal/model"
	"github.com/zeroclasses/zero-backend/internal/response"
	"github.com/zeroclasses/zero-backend/internal/service"
	"github.com/zeroclasses/zero-backend/internal/validator"
)

// AttemptHandler exposes the live quiz attempt over HTTP.
type AttemptHandler struct {
	attempts *service.AttemptService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attempts *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attempts: attempts}
}

// Start godoc
// POST /api/v1/quizzes/:id/attempts
// Starts an attempt, or returns the one already in progress with 200.
func (h *AttemptHandler) Start(c *gin.Context) {
	quizID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	view, created, err := h.attempts.Start(c.Request.Context(), middleware.GetActor(c), quizID)
	if err != nil {
		failWith(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{"attempt": view})
}

// Get godoc
// GET /api/v1/attempts/:id
func (h *AttemptHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	view, err := h.attempts.Get(middleware.GetActor(c), id)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": view})
}

// Answer godoc
// PUT /api/v1/attempts/:id/answers/:index
func (h *AttemptHandler) Answer(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	index, ok := paramIndex(c)
	if !ok {
		return
	}
	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.attempts.Answer(middleware.GetActor(c), id, index, *req.Option)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": view})
}

// ToggleFlag godoc
// POST /api/v1/attempts/:id/flags/:index
func (h *AttemptHandler) ToggleFlag(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	index, ok := paramIndex(c)
	if !ok {
		return
	}

	view, err := h.attempts.ToggleFlag(middleware.GetActor(c), id, index)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": view})
}

// Navigate godoc
// POST /api/v1/attempts/:id/navigate
// Body is {"index": n} or {"step": "next"|"prev"}.
func (h *AttemptHandler) Navigate(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.attempts.Navigate(middleware.GetActor(c), id, req)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": view})
}

// Submit godoc
// POST /api/v1/attempts/:id/submit
func (h *AttemptHandler) Submit(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	view, err := h.attempts.Submit(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		failWithAttempt(c, err, view)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": view})
}

// SaveResult godoc
// POST /api/v1/attempts/:id/save
// Retries storing the result of a submitted attempt.
func (h *AttemptHandler) SaveResult(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	view, err := h.attempts.SaveResult(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		failWithAttempt(c, err, view)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": view})
}

// Review godoc
// GET /api/v1/attempts/:id/review
func (h *AttemptHandler) Review(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	items, err := h.attempts.Review(middleware.GetActor(c), id)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"review": items})
}

// Abandon godoc
// DELETE /api/v1/attempts/:id
func (h *AttemptHandler) Abandon(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.attempts.Abandon(middleware.GetActor(c), id); err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "attempt abandoned"})
}

func paramIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"index": "index must be a number"})
		return 0, false
	}
	return index, true
}
