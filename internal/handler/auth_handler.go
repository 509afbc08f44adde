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

// AuthHandler handles authentication and self-service profile endpoints.
type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// SendOTP godoc
// POST /api/v1/auth/otp/send
// Issues a 4-digit code to an email address or mobile number.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req model.SendOTPRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.authService.SendOTP(c.Request.Context(), req.Type, req.Target); err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "code sent"})
}

// VerifyOTP godoc
// POST /api/v1/auth/otp/verify
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req model.VerifyOTPRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.authService.VerifyOTP(c.Request.Context(), req.Target, req.Code); err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"verified": true})
}

// Register godoc
// POST /api/v1/auth/register
// Creates a STUDENT, INSTRUCTOR or (with the admin secret) ADMIN account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// Login godoc
// POST /api/v1/auth/login
// Validates email + password, returns a JWT carrying role and permissions.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, user, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":       token,
		"user":        user,
		"permissions": user.Role.Permissions(),
		"dashboard":   user.Role.Dashboard(),
	})
}

// Logout godoc
// POST /api/v1/auth/logout
// Revokes every token issued to the caller so far.
func (h *AuthHandler) Logout(c *gin.Context) {
	actor := middleware.GetActor(c)
	if err := h.authService.RevokeSessions(c.Request.Context(), actor.ID); err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	actor := middleware.GetActor(c)
	user, err := h.userService.GetByID(c.Request.Context(), actor.ID)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"user":        user,
		"permissions": user.Role.Permissions(),
		"dashboard":   user.Role.Dashboard(),
	})
}

// UpdateMe godoc
// PATCH /api/v1/auth/me
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req model.UpdateProfileRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), middleware.GetActor(c).ID, req)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// ChangePassword godoc
// PUT /api/v1/auth/me/password
// Other sessions are signed out; the client must log in again.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req model.ChangePasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.userService.ChangePassword(c.Request.Context(), middleware.GetActor(c).ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		failWith(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "password changed"})
}
