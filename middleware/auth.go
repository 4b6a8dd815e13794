package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/abaevpavel/pdfer-base/config"
	"github.com/abaevpavel/pdfer-base/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims
type Claims struct {
	Username string `json:"username"`
	Tenant   string `json:"tenant"`
	jwt.RegisteredClaims
}

// GenerateToken generates a new JWT token for a user
func GenerateToken(username, tenant string, cfg *config.AuthConfig) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(cfg.TokenExpireHours) * time.Hour)

	claims := Claims{
		Username: username,
		Tenant:   tenant,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// AuthMiddleware validates JWT token and extracts user info
func AuthMiddleware(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := parts[1]

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		setIdentity(c, claims.Username, claims.Tenant)

		c.Next()
	}
}

// AnonymousTenant owns every report when authentication is disabled.
const AnonymousTenant = "default"

// Anonymous stands in for AuthMiddleware when no JWT secret is configured:
// every caller shares AnonymousTenant.
func Anonymous() gin.HandlerFunc {
	return func(c *gin.Context) {
		setIdentity(c, "", AnonymousTenant)
		c.Next()
	}
}

// Authenticate picks AuthMiddleware or Anonymous depending on cfg.
func Authenticate(cfg *config.AuthConfig) gin.HandlerFunc {
	if cfg.Enabled() {
		return AuthMiddleware(cfg)
	}
	return Anonymous()
}

// setIdentity stores the caller in the gin context and in the request
// context for the logger.
func setIdentity(c *gin.Context, username, tenant string) {
	c.Set("username", username)
	c.Set("tenant", tenant)

	ctx := logger.With(c.Request.Context(), logger.UsernameKey, username)
	ctx = logger.With(ctx, logger.TenantKey, tenant)
	c.Request = c.Request.WithContext(ctx)
}

// GetUsername gets the username from context
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get("username"); exists {
		return username.(string)
	}
	return ""
}

// GetTenant gets the tenant from context
func GetTenant(c *gin.Context) string {
	if tenant, exists := c.Get("tenant"); exists {
		return tenant.(string)
	}
	return ""
}
