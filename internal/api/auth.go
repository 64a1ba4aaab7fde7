package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"

	roleAdmin = "admin"
)

// AuthMiddleware validates JWT bearer tokens issued by the auth service and
// exposes the caller's identity to handlers
type AuthMiddleware struct {
	secret []byte
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret)}
}

// RequireUser rejects requests without a valid bearer token. On success the
// user id and role from the token claims are stored on the request context.
func (a *AuthMiddleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "invalid token claims")
			return
		}

		sub, _ := claims["sub"].(string)
		userID, err := primitive.ObjectIDFromHex(sub)
		if err != nil {
			abortUnauthorized(c, "invalid subject claim")
			return
		}

		role, _ := claims["role"].(string)

		c.Set(ctxUserID, userID)
		c.Set(ctxRole, role)
		c.Next()
	}
}

// RequireAdmin rejects callers whose token role is not admin. Must run after
// RequireUser.
func (a *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ctxRole)
		if role != roleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "admin access required",
			})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated caller's id from the request context
func UserID(c *gin.Context) (primitive.ObjectID, bool) {
	val, ok := c.Get(ctxUserID)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, ok := val.(primitive.ObjectID)
	return id, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
}
