package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medalert/ice-api/pkg/auth"
	apperrors "github.com/medalert/ice-api/pkg/errors"
	"github.com/medalert/ice-api/pkg/httputil"
)

const (
	ctxUserID = "user_id"
	ctxEmail  = "user_email"
)

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	validator TokenValidator
}

func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// Authenticate verifies the bearer token and stores the session
// identity in the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "invalid authorization format")
			return
		}

		claims, err := m.validator.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(ctxUserID, claims.UserID.String())
		c.Set(ctxEmail, claims.Email)
		c.Next()
	}
}

// UserIDFromContext returns the authenticated user id set by
// Authenticate.
func UserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.GetString(ctxUserID))
	if err != nil {
		return uuid.Nil, errors.New("no authenticated user in context")
	}
	return id, nil
}

func abortUnauthorized(c *gin.Context, message string) {
	httputil.RespondWithError(c, apperrors.Unauthorized(message, nil))
	c.Abort()
}
