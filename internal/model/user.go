package model

import (
	"time"

	"github.com/google/uuid"
)

// Theme is the UI theme preference stored on a user.
type Theme string

const (
	ThemeBright      Theme = "bright"
	ThemeLightBright Theme = "light-bright"
	ThemeDark        Theme = "dark"
)

// InstructorProfile holds the public profile of an instructor.
type InstructorProfile struct {
	Qualification string `json:"qualification"`
	Experience    string `json:"experience"`
	Bio           string `json:"bio"`
}

// User is an account of any role.
type User struct {
	ID                uuid.UUID          `json:"id"`
	Name              string             `json:"name"`
	Email             string             `json:"email"`
	PasswordHash      string             `json:"-"`
	Mobile            string             `json:"mobile,omitempty"`
	Role              Role               `json:"role"`
	ProfileImage      string             `json:"profile_image,omitempty"`
	Theme             Theme              `json:"theme"`
	CountryCode       string             `json:"country_code,omitempty"`
	InstructorProfile *InstructorProfile `json:"instructor_profile,omitempty"`
	LastLogin         *time.Time         `json:"last_login,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// RegisterRequest is the payload for self sign-up.
type RegisterRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=120"`
	Email       string `json:"email" binding:"required,email,max=255"`
	Password    string `json:"password" binding:"required,min=6,max=72"`
	Mobile      string `json:"mobile" binding:"omitempty,max=20"`
	Role        Role   `json:"role" binding:"omitempty,oneof=STUDENT INSTRUCTOR ADMIN"`
	AdminSecret string `json:"admin_secret" binding:"omitempty,max=255"`
}

// LoginRequest is the payload for email + password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SendOTPRequest asks for a one-time code to be delivered to target.
type SendOTPRequest struct {
	Target string `json:"target" binding:"required,max=255"`
	Type   string `json:"type" binding:"required,oneof=email mobile"`
}

// VerifyOTPRequest checks a previously issued one-time code.
type VerifyOTPRequest struct {
	Target string `json:"target" binding:"required,max=255"`
	Code   string `json:"code" binding:"required,len=4,numeric"`
}

// UpdateProfileRequest is the payload for editing the caller's own profile.
type UpdateProfileRequest struct {
	Name              *string            `json:"name" binding:"omitempty,min=2,max=120"`
	Mobile            *string            `json:"mobile" binding:"omitempty,max=20"`
	CountryCode       *string            `json:"country_code" binding:"omitempty,max=8"`
	ProfileImage      *string            `json:"profile_image" binding:"omitempty,max=1024"`
	Theme             *Theme             `json:"theme" binding:"omitempty,oneof=bright light-bright dark"`
	InstructorProfile *InstructorProfile `json:"instructor_profile" binding:"omitempty"`
}

// ChangePasswordRequest is the payload for changing the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=72"`
}

// UpdateRoleRequest is the payload for an admin changing a user's role.
type UpdateRoleRequest struct {
	Role Role `json:"role" binding:"required,oneof=STUDENT INSTRUCTOR SUPER_ADMIN ADMIN CONTENT_MGR FINANCE SUPPORT ANALYTICS"`
}
