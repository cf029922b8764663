package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/marcos-nsantos/asset-pipeline/internal/pkg/httputil"
)

const (
	SubjectKey   = "subject"
	BearerScheme = "Bearer"
)

// TokenValidator resolves a bearer token to the subject it was issued for.
type TokenValidator interface {
	ValidateAccessToken(token string) (string, error)
}

type AuthMiddleware struct {
	tokens TokenValidator
}

func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth guards the admin API. The token subject is stored under
// SubjectKey for handlers and the request logger.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		switch {
		case !ok && scheme == "":
			unauthorized(c, "authorization header required")
			return
		case !ok || !strings.EqualFold(scheme, BearerScheme) || strings.TrimSpace(token) == "":
			unauthorized(c, "invalid authorization format")
			return
		}

		subject, err := m.tokens.ValidateAccessToken(strings.TrimSpace(token))
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(SubjectKey, subject)
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", BearerScheme)
	httputil.ErrorWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
	c.Abort()
}
