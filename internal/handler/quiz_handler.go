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

// QuizHandler handles quiz authoring and results.
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// ListByCourse godoc
// GET /api/v1/courses/:id/quizzes
func (h *QuizHandler) ListByCourse(c *gin.Context) {
	courseID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	quizzes, err := h.quizService.ListByCourse(c.Request.Context(), middleware.GetActor(c), courseID)
	if err != nil {
		failWith(c, err)
		return
	}
	if quizzes == nil {
		quizzes = []model.QuizSummary{}
	}
	response.Success(c, http.StatusOK, gin.H{"quizzes": quizzes})
}

// Create godoc
// POST /api/v1/courses/:id/quizzes
func (h *QuizHandler) Create(c *gin.Context) {
	courseID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req model.SaveQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), middleware.GetActor(c), courseID, req)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"quiz": quiz})
}

// Get godoc
// GET /api/v1/quizzes/:id
// Students receive the quiz without the answer key.
func (h *QuizHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	actor := middleware.GetActor(c)

	if actor.IsStudent() {
		quiz, err := h.quizService.GetForStudent(c.Request.Context(), actor, id)
		if err != nil {
			failWith(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
		return
	}

	quiz, err := h.quizService.Get(c.Request.Context(), actor, id)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// Update godoc
// PUT /api/v1/quizzes/:id
func (h *QuizHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req model.SaveQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// Delete godoc
// DELETE /api/v1/quizzes/:id
func (h *QuizHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.quizService.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "quiz deleted"})
}

// MyResults godoc
// GET /api/v1/me/results
func (h *QuizHandler) MyResults(c *gin.Context) {
	results, err := h.quizService.MyResults(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// QuizResults godoc
// GET /api/v1/quizzes/:id/results?page=&per_page=
func (h *QuizHandler) QuizResults(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	results, pagination, err := h.quizService.QuizResults(c.Request.Context(), middleware.GetActor(c), id, page, perPage)
	if err != nil {
		failWith(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, pagination)
}
