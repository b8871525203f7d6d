// Package middleware provides HTTP middleware functions.
package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/festy23/teammatch/internal/httpresp"
	"github.com/festy23/teammatch/pkg/apperror"
)

const userIDKey = "user_id"

// Claims are the JWT claims accepted by Auth. The subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
}

// Auth returns a middleware that requires a valid HS256 bearer token and
// stores its subject as the caller's user id.
func Auth(secret string, logger *zap.SugaredLogger) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			httpresp.Error(c, string(apperror.Unauthorized), "missing bearer token", http.StatusUnauthorized)
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			logger.Debugw("rejected bearer token", "path", c.Request.URL.Path, "error", err)
			httpresp.Error(c, string(apperror.Unauthorized), "invalid or expired token", http.StatusUnauthorized)
			return
		}

		SetUserID(c, claims.Subject)
		c.Next()
	}
}

// SetUserID records the authenticated caller on the context.
func SetUserID(c *gin.Context, userID string) {
	c.Set(userIDKey, userID)
}

// UserID returns the authenticated caller, or "" when none was set.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
