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

// CourseHandler handles the catalog, enrollment, materials and live classes.
type CourseHandler struct {
	courseService *service.CourseService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// List godoc
// GET /api/v1/courses?status=&page=&per_page=
func (h *CourseHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	status := model.CourseStatus(c.Query("status"))

	courses, pagination, err := h.courseService.List(c.Request.Context(), middleware.GetActor(c), status, page, perPage)
	if err != nil {
		failWith(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"courses": courses}, pagination)
}

// Get godoc
// GET /api/v1/courses/:id
func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	course, err := h.courseService.Get(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// Create godoc
// POST /api/v1/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var req model.CreateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// Update godoc
// PUT /api/v1/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// Delete godoc
// DELETE /api/v1/courses/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.courseService.Delete(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "course deleted"})
}

// SubmitForReview godoc
// POST /api/v1/courses/:id/submit
func (h *CourseHandler) SubmitForReview(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.courseService.SubmitForReview(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": model.CourseStatusPending})
}

// Publish godoc
// POST /api/v1/courses/:id/publish
func (h *CourseHandler) Publish(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.courseService.Publish(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": model.CourseStatusPublished})
}

// Enroll godoc
// POST /api/v1/courses/:id/enroll
func (h *CourseHandler) Enroll(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.courseService.Enroll(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"enrolled": true})
}

// MyCourses godoc
// GET /api/v1/me/courses
func (h *CourseHandler) MyCourses(c *gin.Context) {
	courses, err := h.courseService.MyCourses(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		failWith(c, err)
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}
	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// ─── Materials ─────────────────────────────────────────────────────────

// AddMaterial godoc
// POST /api/v1/courses/:id/materials
func (h *CourseHandler) AddMaterial(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req model.AddMaterialRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	m, err := h.courseService.AddMaterial(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"material": m})
}

// DeleteMaterial godoc
// DELETE /api/v1/courses/:id/materials/:material_id
func (h *CourseHandler) DeleteMaterial(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	materialID, ok := paramUUID(c, "material_id")
	if !ok {
		return
	}
	if err := h.courseService.DeleteMaterial(c.Request.Context(), middleware.GetActor(c), id, materialID); err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "material deleted"})
}

// ─── Schedules ─────────────────────────────────────────────────────────

// CreateSchedule godoc
// POST /api/v1/courses/:id/schedules
func (h *CourseHandler) CreateSchedule(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req model.ScheduleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sch, err := h.courseService.CreateSchedule(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"schedule": sch})
}

// UpdateSchedule godoc
// PUT /api/v1/courses/:id/schedules/:schedule_id
func (h *CourseHandler) UpdateSchedule(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	scheduleID, ok := paramUUID(c, "schedule_id")
	if !ok {
		return
	}
	var req model.ScheduleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sch, err := h.courseService.UpdateSchedule(c.Request.Context(), middleware.GetActor(c), id, scheduleID, req)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"schedule": sch})
}

// DeleteSchedule godoc
// DELETE /api/v1/courses/:id/schedules/:schedule_id
func (h *CourseHandler) DeleteSchedule(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	scheduleID, ok := paramUUID(c, "schedule_id")
	if !ok {
		return
	}
	if err := h.courseService.DeleteSchedule(c.Request.Context(), middleware.GetActor(c), id, scheduleID); err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "schedule deleted"})
}

// Attend godoc
// POST /api/v1/courses/:id/schedules/:schedule_id/attend
// Records attendance and hands back the meeting link.
func (h *CourseHandler) Attend(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	scheduleID, ok := paramUUID(c, "schedule_id")
	if !ok {
		return
	}

	sch, rec, err := h.courseService.Attend(c.Request.Context(), middleware.GetActor(c), id, scheduleID)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"meeting_url": sch.MeetingURL,
		"attendance":  rec,
	})
}
