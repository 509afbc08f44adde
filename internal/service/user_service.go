package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/zeroclasses/zero-backend/internal/config"
	"github.com/zeroclasses/zero-backend/internal/model"
	"github.com/zeroclasses/zero-backend/internal/repository"
	"github.com/zeroclasses/zero-backend/internal/response"
)

// User errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidAdminSecret = errors.New("invalid admin secret")
	ErrOTPNotVerified     = errors.New("email not verified")
	ErrInvalidRole        = errors.New("invalid role")
	ErrSelfModification   = errors.New("cannot change own account")
)

// UserService handles registration, login, profiles and user administration.
type UserService struct {
	cfg  *config.Config
	repo *repository.UserRepository
	auth *AuthService
	log  zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(cfg *config.Config, repo *repository.UserRepository, auth *AuthService, log zerolog.Logger) *UserService {
	return &UserService{
		cfg:  cfg,
		repo: repo,
		auth: auth,
		log:  log.With().Str("component", "user_service").Logger(),
	}
}

// Register creates an account. Role defaults to STUDENT; ADMIN requires the
// admin secret. When OTP is required the email must have been verified.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	role := req.Role
	if role == "" {
		role = model.RoleStudent
	}
	if !selfRegistrable(role) {
		return nil, ErrInvalidRole
	}
	if role == model.RoleAdmin && !s.auth.CheckAdminSecret(req.AdminSecret) {
		return nil, ErrInvalidAdminSecret
	}

	if s.cfg.RequireOTP {
		verified, err := s.auth.IsVerified(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("check otp: %w", err)
		}
		if !verified {
			return nil, ErrOTPNotVerified
		}
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Mobile:       req.Mobile,
		Role:         role,
		Theme:        model.ThemeBright,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID.String()).Str("role", string(role)).Msg("User registered")
	return user, nil
}

func selfRegistrable(role model.Role) bool {
	for _, r := range model.SelfRegistrable {
		if r == role {
			return true
		}
	}
	return false
}

// Login checks credentials and returns a token with the user.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := s.auth.CheckPassword(user.PasswordHash, password); err != nil {
		return "", nil, err
	}

	token, err := s.auth.GenerateToken(user)
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("Failed to record last login")
	} else {
		user.LastLogin = &now
	}
	return token, user, nil
}

// GetByID retrieves a user.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of req to the user's profile.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Mobile != nil {
		user.Mobile = *req.Mobile
	}
	if req.CountryCode != nil {
		user.CountryCode = *req.CountryCode
	}
	if req.ProfileImage != nil {
		user.ProfileImage = *req.ProfileImage
	}
	if req.Theme != nil {
		user.Theme = *req.Theme
	}
	if req.InstructorProfile != nil && user.Role == model.RoleInstructor {
		user.InstructorProfile = req.InstructorProfile
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one, then
// revokes every other session.
func (s *UserService) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.auth.CheckPassword(user.PasswordHash, current); err != nil {
		return err
	}
	hash, err := s.auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}
	return s.auth.RevokeSessions(ctx, id)
}

// List returns users page by page, optionally filtered by role.
func (s *UserService) List(ctx context.Context, role model.Role, page, perPage int) ([]model.User, *response.Pagination, error) {
	page, perPage = normalizePage(page, perPage)

	users, total, err := s.repo.ListPaginated(ctx, role, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, response.NewPagination(page, perPage, total), nil
}

// UpdateRole changes another user's role and ends their sessions so the new
// permissions take effect.
func (s *UserService) UpdateRole(ctx context.Context, actorID, id uuid.UUID, role model.Role) error {
	if actorID == id {
		return ErrSelfModification
	}
	if !role.Valid() {
		return ErrInvalidRole
	}
	ok, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	if err := s.auth.RevokeSessions(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("user_id", id.String()).Msg("Failed to revoke sessions after role change")
	}
	s.log.Info().Str("user_id", id.String()).Str("role", string(role)).Str("by", actorID.String()).Msg("Role changed")
	return nil
}

// Delete removes another user's account.
func (s *UserService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return ErrSelfModification
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	if err := s.auth.RevokeSessions(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("user_id", id.String()).Msg("Failed to revoke sessions after delete")
	}
	return nil
}

// normalizePage clamps pagination input the same way for every list.
func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
