package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/medbook/booking-api/internal/handler"
	"github.com/medbook/booking-api/internal/model"
	"github.com/medbook/booking-api/internal/repository"
	"github.com/medbook/booking-api/pkg/token"
)

const (
	// ContextPrincipal is the gin context key the gate stores the
	// authenticated principal under.
	ContextPrincipal = "principal"

	// TokenCookie is the cookie fallback for the bearer header.
	TokenCookie = "jwt"

	principalCacheTTL = 30 * time.Second
)

// AuthMiddleware is the access gate: it verifies the signed token,
// loads the acting principal, and enforces role membership.
type AuthMiddleware struct {
	tokens *token.Issuer
	users  repository.UserRepository
	cache  *gocache.Cache
}

func NewAuthMiddleware(tokens *token.Issuer, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
		cache:  gocache.New(principalCacheTTL, time.Minute),
	}
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, handler.NewErrorResponse(message))
	c.Abort()
}

// extractToken takes the bearer token from the Authorization header,
// falling back to the jwt cookie.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	cookie, err := c.Cookie(TokenCookie)
	if err != nil {
		return ""
	}
	return cookie
}

// Authenticate verifies the request token and attaches the principal.
// All token failures collapse to the same 401 response.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw == "" {
			abortUnauthenticated(c, "protected path, please log in to get access")
			return
		}

		claims, err := m.tokens.Verify(raw)
		if err != nil {
			abortUnauthenticated(c, "protected path, please log in to get access")
			return
		}

		principal, err := m.loadPrincipal(c, claims.PrincipalID)
		if err != nil {
			// The token may outlive the account it was issued for.
			abortUnauthenticated(c, "protected path, please log in to get access")
			return
		}

		c.Set(ContextPrincipal, principal)
		c.Next()
	}
}

func (m *AuthMiddleware) loadPrincipal(c *gin.Context, id uuid.UUID) (model.Principal, error) {
	key := id.String()
	if cached, ok := m.cache.Get(key); ok {
		return cached.(model.Principal), nil
	}

	user, err := m.users.Get(c.Request.Context(), id)
	if err != nil {
		return model.Principal{}, err
	}

	principal := user.Principal()
	m.cache.Set(key, principal, principalCacheTTL)
	return principal, nil
}

// RequireRoles gates a route group to the given roles. Authenticate
// must run first.
func (m *AuthMiddleware) RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			abortUnauthenticated(c, "protected path, please log in to get access")
			return
		}

		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden,
			handler.NewErrorResponse("you don't have the permission to perform this action"))
		c.Abort()
	}
}

// PrincipalFromContext returns the authenticated principal set by
// Authenticate.
func PrincipalFromContext(c *gin.Context) (model.Principal, bool) {
	value, exists := c.Get(ContextPrincipal)
	if !exists {
		return model.Principal{}, false
	}
	principal, ok := value.(model.Principal)
	return principal, ok
}
