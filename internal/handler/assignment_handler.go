package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zeroclasses/zero-backend/internal/middleware"
	"github.com/zeroclasses/zero-backend/internal/model"
	"github.com/zeroclasses/zero-backend/internal/response"
	"github.com/zeroclasses/zero-backend/internal/service"
	"github.com/zeroclasses/zero-backend/internal/validator"
)

// AssignmentHandler handles assignments and submissions.
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentService *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// ListByCourse godoc
// GET /api/v1/courses/:id/assignments
func (h *AssignmentHandler) ListByCourse(c *gin.Context) {
	courseID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	assignments, err := h.assignmentService.ListByCourse(c.Request.Context(), middleware.GetActor(c), courseID)
	if err != nil {
		failWith(c, err)
		return
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	response.Success(c, http.StatusOK, gin.H{"assignments": assignments})
}

// Create godoc
// POST /api/v1/courses/:id/assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	courseID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req model.CreateAssignmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	a, err := h.assignmentService.Create(c.Request.Context(), middleware.GetActor(c), courseID, req)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"assignment": a})
}

// Delete godoc
// DELETE /api/v1/assignments/:id
func (h *AssignmentHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.assignmentService.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "assignment deleted"})
}

// Submit godoc
// POST /api/v1/assignments/:id/submissions
func (h *AssignmentHandler) Submit(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req model.SubmitAssignmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.assignmentService.Submit(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"submission": sub})
}

// ListSubmissions godoc
// GET /api/v1/assignments/:id/submissions
func (h *AssignmentHandler) ListSubmissions(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	subs, err := h.assignmentService.ListSubmissions(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"submissions": subs})
}

// Grade godoc
// PUT /api/v1/submissions/:id/grade
func (h *AssignmentHandler) Grade(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req model.GradeSubmissionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.assignmentService.Grade(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}

// React godoc
// PUT /api/v1/submissions/:id/reaction
func (h *AssignmentHandler) React(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req model.ReactionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.assignmentService.React(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}
