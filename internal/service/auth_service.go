package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/zeroclasses/zero-backend/internal/config"
	"github.com/zeroclasses/zero-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrOTPInvalid         = errors.New("otp invalid or expired")
)

// otpVerifiedTTL is how long a verified email may be used to register.
const otpVerifiedTTL = 30 * time.Minute

func init() {
	// iat must order tokens against a revocation in the same second.
	jwt.TimePrecision = time.Millisecond
}

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID      uuid.UUID  `json:"user_id"`
	Name        string     `json:"name"`
	Role        model.Role `json:"role"`
	Permissions []string   `json:"permissions,omitempty"`
}

// HasPermission reports whether the token carries p.
func (c *Claims) HasPermission(p model.Permission) bool {
	for _, granted := range c.Permissions {
		if granted == string(p) {
			return true
		}
	}
	return false
}

// Actor returns the caller identity carried by the token.
func (c *Claims) Actor() Actor {
	return Actor{ID: c.UserID, Name: c.Name, Role: c.Role}
}

// OTPNotifier delivers one-time codes to users.
type OTPNotifier interface {
	SendOTP(ctx context.Context, channel, target, code string) error
}

// LogNotifier writes codes to the log instead of sending them. It stands in
// for an email or SMS provider.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "otp_notifier").Logger()}
}

// SendOTP logs the code at info level.
func (n *LogNotifier) SendOTP(_ context.Context, channel, target, code string) error {
	n.log.Info().Str("channel", channel).Str("target", target).Str("code", code).Msg("OTP issued")
	return nil
}

// AuthService handles passwords, JWTs, session revocation and OTP codes.
type AuthService struct {
	cfg      *config.Config
	rdb      *redis.Client
	notifier OTPNotifier
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client, notifier OTPNotifier) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb, notifier: notifier}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// CheckAdminSecret reports whether secret matches ADMIN_SECRET. An unset
// secret never matches.
func (s *AuthService) CheckAdminSecret(secret string) bool {
	if s.cfg.AdminSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(s.cfg.AdminSecret)) == 1
}

// GenerateToken creates a JWT carrying the user's role and its permissions.
func (s *AuthService) GenerateToken(user *model.User) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID:      user.ID,
		Name:        user.Name,
		Role:        user.Role,
		Permissions: user.Role.Permissions(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// RevokeSessions invalidates every token issued to the user up to now.
// Used on logout, role change and account deletion.
func (s *AuthService) RevokeSessions(ctx context.Context, userID uuid.UUID) error {
	key := config.CacheKey.UserRevokedAtKey(userID.String())
	return s.rdb.Set(ctx, key, time.Now().UnixMilli(), s.cfg.JWTExpiry).Err()
}

// ValidateSession rejects tokens issued before the user's last revocation.
func (s *AuthService) ValidateSession(ctx context.Context, claims *Claims) error {
	key := config.CacheKey.UserRevokedAtKey(claims.UserID.String())
	revokedAt, err := s.rdb.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("check session: %w", err)
	}
	if issuedBy(claims, revokedAt) {
		return ErrSessionRevoked
	}
	return nil
}

// issuedBy reports whether the token was issued at or before revokedAtMs.
// A token without iat counts as revoked.
func issuedBy(claims *Claims, revokedAtMs int64) bool {
	return claims.IssuedAt == nil || claims.IssuedAt.Time.UnixMilli() <= revokedAtMs
}

// ─── One-time codes ────────────────────────────────────────────────────

// SendOTP issues a fresh 4-digit code for target, replacing any pending one.
func (s *AuthService) SendOTP(ctx context.Context, channel, target string) error {
	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.OTPKey(target), code, s.cfg.OTPTTL).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return s.notifier.SendOTP(ctx, channel, target, code)
}

// VerifyOTP checks code against the pending one for target. A match consumes
// the code and marks target verified.
func (s *AuthService) VerifyOTP(ctx context.Context, target, code string) error {
	key := config.CacheKey.OTPKey(target)
	stored, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrOTPInvalid
		}
		return fmt.Errorf("load otp: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrOTPInvalid
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.Set(ctx, config.CacheKey.OTPVerifiedKey(target), "1", otpVerifiedTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

// IsVerified reports whether target passed OTP verification recently.
func (s *AuthService) IsVerified(ctx context.Context, target string) (bool, error) {
	n, err := s.rdb.Exists(ctx, config.CacheKey.OTPVerifiedKey(target)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
