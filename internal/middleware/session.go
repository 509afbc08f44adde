package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zeroclasses/zero-backend/internal/response"
	"github.com/zeroclasses/zero-backend/internal/service"
)

// SessionValidator checks a token against server-side revocations.
type SessionValidator interface {
	ValidateSession(ctx context.Context, claims *service.Claims) error
}

// CheckSessionRevocation rejects tokens issued before the user logged out,
// changed password or lost their role. A Redis outage lets the request
// through; the token signature has already been checked.
func CheckSessionRevocation(sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if err := sessions.ValidateSession(c.Request.Context(), claims); err != nil {
			if errors.Is(err, service.ErrSessionRevoked) {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
				return
			}
			_ = c.Error(err)
		}

		c.Next()
	}
}
