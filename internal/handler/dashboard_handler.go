package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zeroclasses/zero-backend/internal/middleware"
	"github.com/zeroclasses/zero-backend/internal/response"
	"github.com/zeroclasses/zero-backend/internal/service"
)

// DashboardHandler serves the role-specific home screen.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Get godoc
// GET /api/v1/dashboard
// Students get their courses, recent results and upcoming classes;
// instructors their courses and grading backlog; staff the platform summary.
func (h *DashboardHandler) Get(c *gin.Context) {
	data, err := h.dashboardService.Get(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, data)
}
