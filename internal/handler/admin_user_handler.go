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

// AdminUserHandler handles user administration.
type AdminUserHandler struct {
	userService *service.UserService
}

// NewAdminUserHandler creates a new AdminUserHandler.
func NewAdminUserHandler(userService *service.UserService) *AdminUserHandler {
	return &AdminUserHandler{userService: userService}
}

// List godoc
// GET /api/v1/admin/users?role=&page=&per_page=
func (h *AdminUserHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	role := model.Role(c.Query("role"))
	if role != "" && !role.Valid() {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"role": "unknown role"})
		return
	}

	users, pagination, err := h.userService.List(c.Request.Context(), role, page, perPage)
	if err != nil {
		failWith(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"users": users}, pagination)
}

// UpdateRole godoc
// PATCH /api/v1/admin/users/:id/role
func (h *AdminUserHandler) UpdateRole(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateRoleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.userService.UpdateRole(c.Request.Context(), middleware.GetActor(c).ID, id, req.Role); err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "role updated"})
}

// Delete godoc
// DELETE /api/v1/admin/users/:id
func (h *AdminUserHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), middleware.GetActor(c).ID, id); err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "user deleted"})
}
