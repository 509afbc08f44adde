package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeroclasses/zero-backend/internal/config"
	"github.com/zeroclasses/zero-backend/internal/model"
)

func testAuthService(adminSecret string) *AuthService {
	cfg := &config.Config{
		JWTSecret:   "test-secret",
		JWTExpiry:   time.Hour,
		BcryptCost:  4,
		AdminSecret: adminSecret,
	}
	return NewAuthService(cfg, nil, NewLogNotifier(zerolog.Nop()))
}

func TestAuthService_Password(t *testing.T) {
	s := testAuthService("")

	hash, err := s.HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, s.CheckPassword(hash, "hunter22"))
	assert.ErrorIs(t, s.CheckPassword(hash, "hunter23"), ErrInvalidCredentials)
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	s := testAuthService("")
	user := &model.User{ID: uuid.New(), Role: model.RoleContentMgr}

	token, err := s.GenerateToken(user)
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, model.RoleContentMgr, claims.Role)
	assert.True(t, claims.HasPermission(model.PermCoursesApprove))
	assert.False(t, claims.HasPermission(model.PermSettingsEdit))
}

func TestAuthService_RejectsForeignTokens(t *testing.T) {
	s := testAuthService("")
	user := &model.User{ID: uuid.New(), Role: model.RoleStudent}

	other := NewAuthService(&config.Config{JWTSecret: "other", JWTExpiry: time.Hour}, nil, nil)
	forged, err := other.GenerateToken(user)
	require.NoError(t, err)
	_, err = s.ValidateToken(forged)
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		UserID: user.ID,
		Role:   user.Role,
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = s.ValidateToken(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: user.ID})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.ValidateToken(unsigned)
	assert.Error(t, err)
}

func TestAuthService_TokenKeepsMillisecondIssuedAt(t *testing.T) {
	s := testAuthService("")

	before := time.Now().UnixMilli()
	token, err := s.GenerateToken(&model.User{ID: uuid.New(), Role: model.RoleStudent})
	require.NoError(t, err)
	after := time.Now().UnixMilli()

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	require.NotNil(t, claims.IssuedAt)
	iat := claims.IssuedAt.Time.UnixMilli()
	assert.GreaterOrEqual(t, iat, before)
	assert.LessOrEqual(t, iat, after)
}

func TestIssuedBy(t *testing.T) {
	second := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	revokedAt := second.Add(500 * time.Millisecond).UnixMilli()
	at := func(d time.Duration) *Claims {
		return &Claims{RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(second.Add(d))}}
	}

	assert.True(t, issuedBy(at(100*time.Millisecond), revokedAt), "same second, earlier")
	assert.True(t, issuedBy(at(500*time.Millisecond), revokedAt), "same millisecond")
	assert.False(t, issuedBy(at(501*time.Millisecond), revokedAt), "after revocation")
	assert.False(t, issuedBy(at(2*time.Second), revokedAt))
	assert.True(t, issuedBy(&Claims{}, revokedAt), "missing iat")
}

func TestAuthService_CheckAdminSecret(t *testing.T) {
	assert.False(t, testAuthService("").CheckAdminSecret(""))
	assert.False(t, testAuthService("").CheckAdminSecret("anything"))

	s := testAuthService("s3cret")
	assert.True(t, s.CheckAdminSecret("s3cret"))
	assert.False(t, s.CheckAdminSecret("s3cre"))
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateOTP()
		require.NoError(t, err)
		assert.Len(t, code, 4)
		assert.Regexp(t, `^[0-9]{4}$`, code)
	}
}
