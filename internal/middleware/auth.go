package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DanieleMarcon/lasoluzione-backend/pkg/jwt"
)

// AdminEmailKey is the gin context key carrying the authenticated admin email
const AdminEmailKey = "admin_email"

// AdminAuth validates the Bearer token and checks the email against the
// back-office allow-list. Requests fail with 401 on a bad token and 403
// when the email is not allowed.
func AdminAuth(jwtService *jwt.Service, allowedEmails []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedEmails))
	for _, email := range allowedEmails {
		allowed[strings.ToLower(email)] = true
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "Invalid authorization header format")
			return
		}

		claims, err := jwtService.ValidateAccessToken(strings.TrimSpace(parts[1]))
		if err != nil {
			abort(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired access token")
			return
		}

		if !allowed[strings.ToLower(claims.Email)] {
			abort(c, http.StatusForbidden, "forbidden", "This account cannot access the back-office")
			return
		}

		c.Set(AdminEmailKey, claims.Email)
		c.Next()
	}
}

// GetAdminEmail retrieves the authenticated admin email from the context
func GetAdminEmail(c *gin.Context) (string, bool) {
	value, exists := c.Get(AdminEmailKey)
	if !exists {
		return "", false
	}
	email, ok := value.(string)
	return email, ok
}

func abort(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"ok": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
	c.Abort()
}
