package middleware

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"catering-backend/internal/model"
	"catering-backend/internal/policy"
	"catering-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by the auth middleware
const (
	CtxUserID   = "userID"
	CtxUserRole = "userRole"
	CtxUsername = "username"
	CtxEmail    = "userEmail"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// Principal carries the identity-provider claims for one request.
type Principal struct {
	Subject  string
	Email    string
	Username string
	Phone    string
	Role     string
}

// IdentityProvisioner resolves a token principal to the local user record,
// creating it on first sign-in (accounts are owned by the identity provider;
// the directory here is a synced copy).
type IdentityProvisioner interface {
	EnsureUser(ctx context.Context, p Principal) (*model.User, error)
}

// identityCacheEntry caches the resolved local user for a subject with TTL,
// so the directory is not hit on every request.
type identityCacheEntry struct {
	userID    string
	role      string
	username  string
	email     string
	expiresAt time.Time
}

var (
	identityCache    sync.Map // subject -> identityCacheEntry
	identityCacheTTL = 5 * time.Minute
	provisioner      IdentityProvisioner
)

// InitIdentityMiddleware sets the provisioner used to sync users on sign-in.
func InitIdentityMiddleware(p IdentityProvisioner) {
	provisioner = p
}

// ClearIdentityCache drops the cached resolution for a subject (or all when
// empty); called after an admin changes a user's role.
func ClearIdentityCache(subject string) {
	if subject == "" {
		identityCache.Range(func(key, _ interface{}) bool {
			identityCache.Delete(key)
			return true
		})
	} else {
		identityCache.Delete(subject)
	}
}

// RequireAuth validates the bearer token and resolves the local user without
// any role restriction.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// Require validates the bearer token and checks the central authorization
// policy for the given action. Role-per-action lists live in the policy
// package, not in route wiring.
func Require(action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry, ok := authenticate(c)
		if !ok {
			return
		}
		if !policy.Allow(entry.role, action) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}
		c.Next()
	}
}

// authenticate parses the token, syncs/resolves the local user and stores the
// identity on the gin context. On failure it aborts with 401.
func authenticate(c *gin.Context) (identityCacheEntry, bool) {
	// Try cookie first, fallback to Authorization header
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return identityCacheEntry{}, false
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
			return identityCacheEntry{}, false
		}
		tokenString = parts[1]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return identityCacheEntry{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
		return identityCacheEntry{}, false
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Token missing subject"))
		return identityCacheEntry{}, false
	}

	entry, err := resolveSubject(c.Request.Context(), subject, claims)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to resolve user"))
		return identityCacheEntry{}, false
	}

	c.Set(CtxUserID, entry.userID)
	c.Set(CtxUserRole, entry.role)
	c.Set(CtxUsername, entry.username)
	c.Set(CtxEmail, entry.email)
	return entry, true
}

// resolveSubject returns the cached local user for a subject, provisioning it
// through the identity provisioner on a miss.
func resolveSubject(ctx context.Context, subject string, claims jwt.MapClaims) (identityCacheEntry, error) {
	if cached, ok := identityCache.Load(subject); ok {
		entry := cached.(identityCacheEntry)
		if time.Now().Before(entry.expiresAt) {
			return entry, nil
		}
	}

	p := Principal{Subject: subject}
	p.Email, _ = claims["email"].(string)
	p.Username, _ = claims["name"].(string)
	p.Phone, _ = claims["phone"].(string)
	p.Role, _ = claims["role"].(string)

	user, err := provisioner.EnsureUser(ctx, p)
	if err != nil {
		return identityCacheEntry{}, err
	}

	entry := identityCacheEntry{
		userID:    user.ID.String(),
		role:      user.Role,
		username:  user.Username,
		email:     user.Email,
		expiresAt: time.Now().Add(identityCacheTTL),
	}
	identityCache.Store(subject, entry)
	return entry, nil
}
